// Package provider drives the external identity-provider handshake. The
// gateway only ever talks to the provider here; nothing in this package
// persists state.
package provider

import "context"

// Claim is the transient result of validating provider tokens. It is never
// persisted beyond session creation.
type Claim struct {
	Identity string // stable external user id ("sub")
	Email    string
	Name     string
	Nonce    string // echoed back for replay detection by the caller
}

// Client is the handshake surface the login/callback controller depends on.
// The production implementation is OIDCClient; tests substitute a fake.
type Client interface {
	// AuthCodeURL builds the provider's authorization URL embedding state as
	// the CSRF token and the gateway's fixed callback URL.
	AuthCodeURL(state, nonce string) string

	// Exchange performs the code-for-identity exchange. Failures map onto
	// errors.ErrProviderUnavailable (transient, retried once internally),
	// errors.ErrInvalidGrant (bad or expired code, not retried) and
	// errors.ErrMalformedResponse (fatal for the attempt).
	Exchange(ctx context.Context, code string) (*Claim, error)
}
