package errors

import (
	"errors"
	"fmt"
)

// Common error types for the SSO gateway
var (
	// Session errors. Absent, expired and revoked sessions all collapse to
	// ErrSessionNotFound so callers cannot learn why a lookup failed.
	ErrSessionNotFound = errors.New("session not found")

	// Login flow errors
	ErrStateNotFound   = errors.New("login state not found")
	ErrPendingCapacity = errors.New("pending login store at capacity")
	ErrInvalidNextURL  = errors.New("next_url outside allowed domains")

	// Identity provider errors
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrInvalidGrant        = errors.New("invalid grant")
	ErrMalformedResponse   = errors.New("malformed provider response")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
