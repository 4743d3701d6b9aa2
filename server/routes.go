package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	// Browser-facing login flow
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.BrowserMiddleware()...)) // For form_post response mode
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.BrowserMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteLoginFailed, ChainMiddleware(s.LoginFailedHandler(), s.BrowserMiddleware()...))

	// Identity
	s.RegisterRouteFunc("GET "+RouteUser, ChainMiddleware(s.UserHandler(), s.BrowserMiddleware()...))

	// Hot path: one subrequest per proxied request. Deliberately bypasses the
	// logging/recover chain to keep per-request overhead minimal.
	s.RegisterRouteFunc("GET "+RouteVerifyAndInject, s.VerifyHandler())

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
}
