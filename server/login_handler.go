package server

import (
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-sso-gateway/internal/errors"
	"github.com/jrsteele09/go-sso-gateway/internal/metrics"
	"github.com/rs/zerolog/log"
)

// nonceBytes sizes the per-flow nonce embedded in the provider handshake.
const nonceBytes = 16

// LoginHandler initiates the login flow. The proxy lands browsers here after
// a denied verification, carrying the originally requested URL as next_url.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nextURL, err := s.validateNextURL(r.URL.Query().Get("next_url"))
		if err != nil {
			log.Warn().Err(err).Str("host", r.Host).Msg("login rejected: bad next_url")
			metrics.LoginsFailed.WithLabelValues("bad_next_url").Inc()
			http.Error(w, "invalid next_url", http.StatusBadRequest)
			return
		}

		// Already-authenticated browsers go straight back to where they were
		// headed; no second handshake.
		if _, err := s.sessionFromRequest(r); err == nil {
			http.Redirect(w, r, nextURL, http.StatusFound)
			return
		}

		nonce := generateRandomString(nonceBytes)
		state, err := s.repos.Pending.Create(nextURL, r.Host, nonce, s.config.GetPendingTTL())
		if err != nil {
			if errors.Is(err, errors.ErrPendingCapacity) {
				log.Warn().Str("host", r.Host).Msg("pending login store at capacity, rejecting login initiation")
				metrics.LoginsFailed.WithLabelValues("capacity").Inc()
				// The sweeper is what frees abandoned entries, so its interval
				// is the honest earliest time a retry can expect capacity.
				w.Header().Set("Retry-After", strconv.Itoa(int(s.config.GetSweepInterval().Seconds())))
				http.Error(w, "login temporarily unavailable, try again shortly", http.StatusServiceUnavailable)
				return
			}
			log.Error().Err(err).Msg("failed to create pending login")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		metrics.LoginsInitiated.Inc()
		http.Redirect(w, r, s.provider.AuthCodeURL(state, nonce), http.StatusFound)
	}
}

// LoginFailedHandler is the generic failure page every broken login flow
// lands on. It carries no detail about what went wrong.
func (s *Server) LoginFailedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Login failed. Please try again.\n"))
	}
}
