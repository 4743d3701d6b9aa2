package server

// Route path constants
// All gateway routes are defined here to ensure consistency and prevent typos
const (
	// Browser-facing login flow
	RouteLogin       = "/login"
	RouteCallback    = "/callback"
	RouteLogout      = "/logout"
	RouteLoginFailed = "/login/failed"

	// Identity endpoints
	RouteUser = "/user"

	// Internal: the reverse proxy's auth_request subrequest target
	RouteVerifyAndInject = "/verify-and-inject"

	// Operational
	RouteHealth  = "/health"
	RouteMetrics = "/metrics"
)
