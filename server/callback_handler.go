package server

import (
	"net/http"

	"github.com/jrsteele09/go-sso-gateway/internal/errors"
	"github.com/jrsteele09/go-sso-gateway/internal/metrics"
	"github.com/rs/zerolog/log"
)

// CallbackHandler completes the login flow when the identity provider
// redirects the browser back. Every failure redirects to the generic failure
// page; provider detail stays in the server log.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue works for both GET query params and the form_post
		// response mode.
		state := r.FormValue("state")
		code := r.FormValue("code")

		if errorParam := r.FormValue("error"); errorParam != "" {
			log.Warn().
				Str("error", errorParam).
				Str("error_description", r.FormValue("error_description")).
				Msg("provider returned authorization error")
			s.failLogin(w, r, "provider_error")
			return
		}

		if code == "" || state == "" {
			s.failLogin(w, r, "missing_params")
			return
		}

		// Exactly-once: a replayed state lands here again and fails closed.
		pending, err := s.repos.Pending.Consume(state)
		if err != nil {
			log.Warn().Str("host", r.Host).Msg("callback with unknown or already-consumed state")
			s.failLogin(w, r, "invalid_state")
			return
		}

		claim, err := s.provider.Exchange(r.Context(), code)
		if err != nil {
			log.Error().Err(err).Msg("code exchange failed")
			switch {
			case errors.Is(err, errors.ErrProviderUnavailable):
				s.failLogin(w, r, "provider_unavailable")
			case errors.Is(err, errors.ErrInvalidGrant):
				s.failLogin(w, r, "invalid_grant")
			default:
				s.failLogin(w, r, "malformed_response")
			}
			return
		}

		// The nonce travelled through the provider; a mismatch means the
		// response was not minted for this flow.
		if claim.Nonce != pending.Nonce {
			log.Warn().Msg("callback nonce mismatch")
			s.failLogin(w, r, "invalid_nonce")
			return
		}

		token, err := s.repos.Sessions.Create(claim.Identity, claim.Email, claim.Name, s.config.GetSessionTTL())
		if err != nil {
			log.Error().Err(err).Msg("failed to create session")
			s.failLogin(w, r, "internal")
			return
		}

		s.setSessionCookie(w, r, token, int(s.config.GetSessionTTL().Seconds()))

		// Stored next_url was validated at initiation; re-validate before
		// redirecting anyway and fall back to the root on any surprise.
		nextURL, err := s.validateNextURL(pending.NextURL)
		if err != nil {
			nextURL = "/"
		}

		metrics.LoginsCompleted.Inc()
		log.Info().
			Str("identity", claim.Identity).
			Str("host", pending.Host).
			Msg("login completed")
		http.Redirect(w, r, nextURL, http.StatusFound)
	}
}

func (s *Server) failLogin(w http.ResponseWriter, r *http.Request, reason string) {
	metrics.LoginsFailed.WithLabelValues(reason).Inc()
	http.Redirect(w, r, RouteLoginFailed, http.StatusFound)
}
