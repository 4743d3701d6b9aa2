package sessions

import "time"

// Session represents one authenticated browser. The Token is the opaque value
// carried in the base-domain cookie; it is generated from crypto/rand and is
// never derived from the user's identity.
type Session struct {
	Token     string
	Identity  string // stable external user id from the identity provider
	Email     string
	Name      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}
