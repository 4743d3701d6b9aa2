package server

import (
	"net/http"

	"github.com/jrsteele09/go-sso-gateway/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Headers the proxy forwards on the auth_request subrequest.
const (
	HeaderOriginalURI  = "X-Original-URI"
	HeaderOriginalHost = "X-Original-Host"
	HeaderForwardedFor = "X-Forwarded-For"
)

// Headers the proxy copies onto the request it forwards to the backend.
const (
	HeaderUserEmail         = "X-User-Email"
	HeaderUserIdentity      = "X-User-Identity"
	HeaderAuthenticated     = "X-Authenticated"
	HeaderIdentityAssertion = "X-Identity-Assertion"
)

// VerifyHandler answers the proxy's per-request subrequest. It is read-only
// on both stores; the only state it touches is the metrics counters. A
// missing cookie, an unknown token and an expired or revoked session all
// produce the same bare 401.
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionFromRequest(r)
		if err != nil {
			metrics.VerifyRequests.WithLabelValues("denied").Inc()
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set(HeaderUserEmail, session.Email)
		w.Header().Set(HeaderUserIdentity, session.Identity)
		w.Header().Set(HeaderAuthenticated, "true")

		if s.signer != nil {
			if signed, err := s.signer.Sign(session); err == nil {
				w.Header().Set(HeaderIdentityAssertion, signed)
			} else {
				// Identity headers alone still authorize the request.
				log.Error().Err(err).Msg("failed to sign identity assertion")
			}
		}

		metrics.VerifyRequests.WithLabelValues("authorized").Inc()
		w.WriteHeader(http.StatusOK)
	}
}
