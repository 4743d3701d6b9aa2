// Package assertion issues short-lived signed identity tokens alongside the
// plain identity headers, so backends that do not trust the proxy hop can
// verify who the gateway authenticated.
package assertion

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-sso-gateway/sessions"
	"golang.org/x/crypto/hkdf"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// hkdfInfo domain-separates the signing key from other uses of the secret.
const hkdfInfo = "gateway-identity-assertion"

// Signer creates HS256 identity assertions with a key derived from the
// configured shared secret.
type Signer struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewSigner derives the signing key from secret and returns a ready Signer.
func NewSigner(secret, issuer string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("[assertion NewSigner] secret is required")
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("[assertion NewSigner] key derivation failed: %w", err)
	}

	return &Signer{key: key, issuer: issuer, ttl: ttl}, nil
}

// Sign creates an assertion for the given session
func (s *Signer) Sign(session *sessions.Session) (string, error) {
	now := NowTimeFunc()
	ttl := s.ttl
	// Never outlive the session itself.
	if remaining := session.ExpiresAt.Sub(now); remaining < ttl {
		ttl = remaining
	}

	claims := jwtlib.MapClaims{
		"iss":   s.issuer,
		"sub":   session.Identity,
		"email": session.Email,
		"name":  session.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
		"jti":   uuid.New().String(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("[assertion Sign] failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates an assertion and returns its claims
func (s *Signer) Parse(raw string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.key, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("[assertion Parse] invalid token: %w", err)
	}
	return claims, nil
}
