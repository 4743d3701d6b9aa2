package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-sso-gateway/internal/config"
	"github.com/jrsteele09/go-sso-gateway/internal/errors"
	"github.com/jrsteele09/go-sso-gateway/sessions"
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// secureCookie decides the cookie's Secure attribute. Outside DEV it is
// always set, so a proxy hop that drops X-Forwarded-Proto cannot downgrade
// the cookie to plain-http transport. Local development over http still gets
// a cookie the browser will send back.
func (s *Server) secureCookie(r *http.Request) bool {
	return s.env != "DEV" || getScheme(r) == "https"
}

// setSessionCookie scopes the session cookie to the shared base domain so
// every protected subdomain presents the same cookie. This is the mechanism
// that makes the gateway a single-sign-on boundary.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetCookieName(),
		Value:    token,
		Domain:   s.config.GetBaseDomain(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetCookieName(),
		Value:    "",
		Domain:   s.config.GetBaseDomain(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// sessionFromRequest resolves the request's cookie to a live session. Any
// failure (no cookie, unknown token, expired, revoked) surfaces uniformly as
// errors.ErrSessionNotFound.
func (s *Server) sessionFromRequest(r *http.Request) (*sessions.Session, error) {
	cookie, err := r.Cookie(s.config.GetCookieName())
	if err != nil {
		return nil, errors.ErrSessionNotFound
	}
	return s.repos.Sessions.Lookup(cookie.Value)
}

// validateNextURL accepts a relative path or an absolute URL whose host is a
// subdomain of the configured base domain (and, when an explicit allowlist is
// configured, one of its entries). Everything else is rejected so the
// callback can never be abused as an open redirect.
func (s *Server) validateNextURL(raw string) (string, error) {
	if raw == "" {
		return "/", nil
	}

	// Relative paths stay on the current host. "//host/..." is
	// scheme-relative and must go through the absolute-URL checks.
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidNextURL, "[Server validateNextURL] unparseable next_url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.Wrapf(errors.ErrInvalidNextURL, "[Server validateNextURL] scheme %q not allowed", u.Scheme)
	}

	host := u.Hostname()
	if !config.HostWithinDomain(host, s.config.GetBaseDomain()) {
		return "", errors.Wrapf(errors.ErrInvalidNextURL, "[Server validateNextURL] host %q outside base domain", host)
	}

	if allowed := s.config.GetAllowedHosts(); len(allowed) > 0 {
		found := false
		for _, a := range allowed {
			if strings.EqualFold(a, host) {
				found = true
				break
			}
		}
		if !found {
			return "", errors.Wrapf(errors.ErrInvalidNextURL, "[Server validateNextURL] host %q not in allowed hosts", host)
		}
	}

	return u.String(), nil
}
