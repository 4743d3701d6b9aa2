package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-sso-gateway/assertion"
	"github.com/jrsteele09/go-sso-gateway/pendinglogin"
	"github.com/jrsteele09/go-sso-gateway/provider"
	"github.com/jrsteele09/go-sso-gateway/server"
	"github.com/jrsteele09/go-sso-gateway/sessions"
	"github.com/stretchr/testify/require"
)

const (
	testBaseDomain  = "example.com"
	testExternalURL = "https://example.com"
	testSecret      = "test-secret-key"
	testIdentity    = "https://login.example.net/+id/abc123"
	testEmail       = "john.doe@example.com"
	testUserName    = "John Doe"
	testNextURL     = "https://maas.example.com/MAAS/something"
)

// testConfig implements config.Config with plain fields
type testConfig struct {
	allowedHosts []string
	pendingCap   int
	sessionTTL   time.Duration
	env          string
}

func (c *testConfig) GetPort() string    { return ":8080" }
func (c *testConfig) GetAppName() string { return "test" }
func (c *testConfig) GetEnv() string {
	if c.env != "" {
		return c.env
	}
	return "TEST"
}
func (c *testConfig) GetBaseDomain() string     { return testBaseDomain }
func (c *testConfig) GetExternalURL() string    { return testExternalURL }
func (c *testConfig) GetAllowedHosts() []string { return c.allowedHosts }
func (c *testConfig) GetPostLogoutURL() string  { return "/" }
func (c *testConfig) GetSessionTTL() time.Duration {
	if c.sessionTTL > 0 {
		return c.sessionTTL
	}
	return time.Hour
}
func (c *testConfig) GetPendingTTL() time.Duration { return 10 * time.Minute }
func (c *testConfig) GetPendingCapacity() int {
	if c.pendingCap > 0 {
		return c.pendingCap
	}
	return 100
}
func (c *testConfig) GetSweepInterval() time.Duration   { return time.Minute }
func (c *testConfig) GetCookieName() string             { return "gateway_session" }
func (c *testConfig) GetSecret() string                 { return testSecret }
func (c *testConfig) GetIssuerURL() string              { return "https://login.example.net" }
func (c *testConfig) GetClientID() string               { return "demo-platform" }
func (c *testConfig) GetClientSecret() string           { return "" }
func (c *testConfig) GetProviderTimeout() time.Duration { return time.Second }

// fakeProvider implements provider.Client without any network traffic. It
// remembers the last issued nonce so Exchange can echo it back the way a real
// provider embeds the nonce in the ID token.
type fakeProvider struct {
	exchangeErr error
	claim       *provider.Claim
	lastState   string
	lastNonce   string
}

func (f *fakeProvider) AuthCodeURL(state, nonce string) string {
	f.lastState = state
	f.lastNonce = nonce
	return "https://login.example.net/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*provider.Claim, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	claim := provider.Claim{
		Identity: testIdentity,
		Email:    testEmail,
		Name:     testUserName,
		Nonce:    f.lastNonce,
	}
	if f.claim != nil {
		claim = *f.claim
	}
	return &claim, nil
}

type fixture struct {
	server   *server.Server
	sessions *sessions.InMemoryRepo
	pending  *pendinglogin.InMemoryRepo
	provider *fakeProvider
	signer   *assertion.Signer
	config   *testConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, &testConfig{})
}

func newFixtureWithConfig(t *testing.T, cfg *testConfig) *fixture {
	t.Helper()

	sessionRepo := sessions.NewInMemoryRepo()
	pendingRepo := pendinglogin.NewInMemoryRepo(cfg.GetPendingCapacity())
	fp := &fakeProvider{}

	signer, err := assertion.NewSigner(cfg.GetSecret(), cfg.GetExternalURL(), cfg.GetSessionTTL())
	require.NoError(t, err)

	srv, err := server.New(cfg, server.Repos{Sessions: sessionRepo, Pending: pendingRepo}, fp, signer)
	require.NoError(t, err)

	return &fixture{
		server:   srv,
		sessions: sessionRepo,
		pending:  pendingRepo,
		provider: fp,
		signer:   signer,
		config:   cfg,
	}
}

func (f *fixture) do(req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, req)
	return w.Result()
}

// login runs a full login flow and returns the issued session cookie
func (f *fixture) login(t *testing.T, nextURL string) *http.Cookie {
	t.Helper()

	resp := f.do(httptest.NewRequest("GET", testExternalURL+server.RouteLogin+"?next_url="+url.QueryEscape(nextURL), nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	authURL, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	resp = f.do(httptest.NewRequest("GET", testExternalURL+server.RouteCallback+"?state="+url.QueryEscape(state)+"&code=good-code", nil))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, nextURL, resp.Header.Get("Location"))

	cookie := sessionCookie(resp, f.config.GetCookieName())
	require.NotNil(t, cookie)
	require.NotEmpty(t, cookie.Value)
	return cookie
}

func sessionCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
