package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-sso-gateway/server"
	"github.com/stretchr/testify/require"
)

// TestFullSSOFlow walks the whole boundary the way the proxy drives it:
// a protected subdomain request with no cookie is denied, the browser is sent
// through the login handshake, lands back on the original URL with a
// base-domain cookie, and from then on every subdomain verifies.
func TestFullSSOFlow(t *testing.T) {
	f := newFixture(t)
	originalURL := "https://maas.example.com/MAAS/something"

	// 1. Proxy subrequest for the original request: no cookie, denied.
	resp := f.do(verifyRequest(nil))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// 2. The proxy turns the 401 into a redirect to
	//    https://example.com/login?next_url=<original URL>.
	resp = f.do(httptest.NewRequest("GET", testExternalURL+server.RouteLogin+"?next_url="+url.QueryEscape(originalURL), nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	authURL, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	// 3. Provider sends the browser back with code and state; the gateway
	//    mints a session and returns the browser to the original URL.
	resp = f.do(httptest.NewRequest("GET", testExternalURL+server.RouteCallback+"?state="+url.QueryEscape(state)+"&code=good-code", nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, originalURL, resp.Header.Get("Location"))

	cookie := sessionCookie(resp, f.config.GetCookieName())
	require.NotNil(t, cookie)
	require.Equal(t, testBaseDomain, cookie.Domain, "cookie must be scoped to the shared base domain")

	// 4. The retried subrequest now authorizes and carries the identity
	//    headers the proxy injects toward the backend.
	resp = f.do(verifyRequest(cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, testEmail, resp.Header.Get(server.HeaderUserEmail))
	require.Equal(t, testIdentity, resp.Header.Get(server.HeaderUserIdentity))
	require.Equal(t, "true", resp.Header.Get(server.HeaderAuthenticated))

	// 5. Any other subdomain under the base domain observes the same cookie,
	//    so a second application verifies without a new login.
	resp = f.do(verifyRequest(cookie))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 6. Logout ends the session everywhere at once.
	logout := httptest.NewRequest("GET", testExternalURL+server.RouteLogout, nil)
	logout.AddCookie(cookie)
	resp = f.do(logout)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = f.do(verifyRequest(cookie))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
