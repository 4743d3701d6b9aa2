package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-sso-gateway/assertion"
	"github.com/jrsteele09/go-sso-gateway/internal/config"
	"github.com/jrsteele09/go-sso-gateway/pendinglogin"
	"github.com/jrsteele09/go-sso-gateway/provider"
	"github.com/jrsteele09/go-sso-gateway/sessions"
)

// Repos bundles the two stores the gateway owns. The session store backs the
// verification hot path; the pending store tracks in-flight login handshakes.
type Repos struct {
	Sessions sessions.Repo
	Pending  pendinglogin.Repo
}

type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	repos    Repos
	provider provider.Client
	signer   *assertion.Signer
}

func New(cfg config.Config, repos Repos, idp provider.Client, signer *assertion.Signer) (*Server, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("[Server New] invalid configuration: %w", err)
	}
	if repos.Sessions == nil || repos.Pending == nil {
		return nil, fmt.Errorf("[Server New] session and pending-login repos are required")
	}
	if idp == nil {
		return nil, fmt.Errorf("[Server New] identity provider client is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		repos:    repos,
		provider: idp,
		signer:   signer,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
