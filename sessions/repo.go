package sessions

import "time"

// Repo defines session storage. Lookup is the hottest call in the gateway;
// implementations must keep it O(1) and safe under arbitrary concurrency.
type Repo interface {
	// Create stores a new session and returns its cookie token.
	Create(identity, email, name string, ttl time.Duration) (string, error)

	// Lookup returns the session only if it exists, is unexpired and is not
	// revoked. Every other case returns errors.ErrSessionNotFound so callers
	// cannot distinguish why authentication failed.
	Lookup(token string) (*Session, error)

	// Revoke invalidates a session immediately. Returns
	// errors.ErrSessionNotFound for unknown or already-revoked tokens.
	Revoke(token string) error

	// DeleteExpired removes sessions that are expired or revoked as of now
	// and returns how many were removed.
	DeleteExpired(now time.Time) int
}
