package pendinglogin

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/jrsteele09/go-sso-gateway/internal/errors"
)

// stateBytes gives 256 bits of entropy per state value.
const stateBytes = 32

// DefaultCapacity bounds the number of live pending logins.
const DefaultCapacity = 10000

// InMemoryRepo is a thread-safe, capacity-capped in-memory implementation of
// the Repo interface.
type InMemoryRepo struct {
	mu       sync.RWMutex
	capacity int
	pending  map[string]*PendingLogin
}

// NewInMemoryRepo creates a new in-memory pending-login repository. A
// capacity <= 0 falls back to DefaultCapacity.
func NewInMemoryRepo(capacity int) *InMemoryRepo {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &InMemoryRepo{
		capacity: capacity,
		pending:  make(map[string]*PendingLogin),
	}
}

// Create stores a new pending login and returns its state value
func (r *InMemoryRepo) Create(nextURL, host, nonce string, ttl time.Duration) (string, error) {
	now := time.Now()
	state := newState()

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) >= r.capacity {
		return "", errors.ErrPendingCapacity
	}

	r.pending[state] = &PendingLogin{
		State:     state,
		Nonce:     nonce,
		NextURL:   nextURL,
		Host:      host,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return state, nil
}

// Consume returns and deletes the pending login for state, exactly once
func (r *InMemoryRepo) Consume(state string) (*PendingLogin, error) {
	if state == "" {
		return nil, errors.ErrStateNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending, ok := r.pending[state]
	if !ok {
		return nil, errors.ErrStateNotFound
	}
	delete(r.pending, state)

	if !pending.ExpiresAt.After(time.Now()) {
		return nil, errors.ErrStateNotFound
	}

	copied := *pending
	return &copied, nil
}

// DeleteExpired removes pending logins expired as of now
func (r *InMemoryRepo) DeleteExpired(now time.Time) int {
	r.mu.RLock()
	candidates := make([]string, 0)
	for state, pending := range r.pending {
		if !pending.ExpiresAt.After(now) {
			candidates = append(candidates, state)
		}
	}
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, state := range candidates {
		if pending, ok := r.pending[state]; ok && !pending.ExpiresAt.After(now) {
			delete(r.pending, state)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored pending logins
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending)
}

// newState creates an unpredictable state value
func newState() string {
	b := make([]byte, stateBytes)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
