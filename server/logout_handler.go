package server

import (
	"net/http"

	"github.com/jrsteele09/go-sso-gateway/internal/errors"
	"github.com/rs/zerolog/log"
)

// LogoutHandler revokes the browser's session and clears the base-domain
// cookie. Logging out an already-invalid token is a no-op, not an error.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(s.config.GetCookieName()); err == nil {
			if err := s.repos.Sessions.Revoke(cookie.Value); err != nil && !errors.Is(err, errors.ErrSessionNotFound) {
				log.Error().Err(err).Msg("failed to revoke session")
			}
		}

		s.clearSessionCookie(w, r)
		http.Redirect(w, r, s.config.GetPostLogoutURL(), http.StatusFound)
	}
}
