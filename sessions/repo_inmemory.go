package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/jrsteele09/go-sso-gateway/internal/errors"
)

// tokenBytes gives 256 bits of entropy per token.
const tokenBytes = 32

// InMemoryRepo is a thread-safe in-memory implementation of Repo. All
// critical sections are O(1) map operations; DeleteExpired collects
// candidates under the read lock and deletes them in a single short write
// lock, so sweeping never stalls concurrent Lookup calls for long.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new session and returns its token
func (r *InMemoryRepo) Create(identity, email, name string, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", errors.Wrapf(errors.ErrInternal, "[sessions Create] identity is required")
	}

	now := time.Now()
	token := newToken()
	session := &Session{
		Token:     token,
		Identity:  identity,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[token] = session
	return token, nil
}

// Lookup returns the session for token if it is live
func (r *InMemoryRepo) Lookup(token string) (*Session, error) {
	if token == "" {
		return nil, errors.ErrSessionNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok || session.Revoked || !session.ExpiresAt.After(time.Now()) {
		return nil, errors.ErrSessionNotFound
	}

	// Return a copy to prevent external modifications
	copied := *session
	return &copied, nil
}

// Revoke marks a session invalid. The record itself is left for the sweeper.
func (r *InMemoryRepo) Revoke(token string) error {
	if token == "" {
		return errors.ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[token]
	if !ok || session.Revoked {
		return errors.ErrSessionNotFound
	}

	session.Revoked = true
	return nil
}

// DeleteExpired removes expired and revoked sessions as of now
func (r *InMemoryRepo) DeleteExpired(now time.Time) int {
	r.mu.RLock()
	candidates := make([]string, 0)
	for token, session := range r.sessions {
		if session.Revoked || !session.ExpiresAt.After(now) {
			candidates = append(candidates, token)
		}
	}
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, token := range candidates {
		session, ok := r.sessions[token]
		if !ok {
			continue
		}
		// Re-check under the write lock; a concurrent Revoke may have fired
		// but a session can never go from dead back to live.
		if session.Revoked || !session.ExpiresAt.After(now) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored records, live or not
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// newToken creates an opaque, unguessable session token
func newToken() string {
	b := make([]byte, tokenBytes)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
