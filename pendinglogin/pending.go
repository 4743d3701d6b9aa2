package pendinglogin

import "time"

// PendingLogin tracks one in-flight login handshake. The State value doubles
// as the CSRF token sent to the identity provider; it is single-use and
// expires after a short TTL if the browser abandons the flow.
type PendingLogin struct {
	State     string
	Nonce     string
	NextURL   string // validated original URL to return the browser to
	Host      string // subdomain the flow started from
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Repo defines pending-login storage.
type Repo interface {
	// Create stores a new pending login and returns its state value.
	// Returns errors.ErrPendingCapacity when the store is full, which is the
	// cap that keeps hammering of /login from growing memory unboundedly.
	Create(nextURL, host, nonce string, ttl time.Duration) (string, error)

	// Consume returns the pending login for state and deletes it in the same
	// critical section. A second Consume of the same state returns
	// errors.ErrStateNotFound, closing the replay window.
	Consume(state string) (*PendingLogin, error)

	// DeleteExpired removes pending logins expired as of now and returns how
	// many were removed.
	DeleteExpired(now time.Time) int
}
