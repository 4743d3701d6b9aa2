package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	portEnvVar         = "PORT"
	appNameVar         = "APP_NAME"
	baseDomainVar      = "BASE_DOMAIN"
	externalURLVar     = "EXTERNAL_URL"
	allowedHostsVar    = "ALLOWED_HOSTS"
	postLogoutURLVar   = "POST_LOGOUT_URL"
	sessionTTLVar      = "SESSION_TTL"
	pendingTTLVar      = "PENDING_LOGIN_TTL"
	pendingCapVar      = "PENDING_LOGIN_CAPACITY"
	sweepIntervalVar   = "SWEEP_INTERVAL"
	cookieNameVar      = "COOKIE_NAME"
	secretKeyVar       = "SECRET_KEY"
	issuerURLVar       = "OIDC_ISSUER_URL"
	clientIDVar        = "OIDC_CLIENT_ID"
	clientSecretVar    = "OIDC_CLIENT_SECRET"
	providerTimeoutVar = "PROVIDER_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// processSecret backs SECRET_KEY when it is not set. Sessions are in-memory,
// so a per-process random secret loses nothing across restarts.
var processSecret = generateProcessSecret()

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}
}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "SSO Gateway")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetBaseDomain returns the shared root domain all protected subdomains live
// under. The session cookie is scoped to this domain.
func (EnvVars) GetBaseDomain() string {
	return GetEnv(baseDomainVar, "myapp.local")
}

// GetExternalURL returns the browser-facing URL of the gateway itself
// (e.g. "https://myapp.local"). Used for the provider callback URL.
func (EnvVars) GetExternalURL() string {
	return GetEnv(externalURLVar, "https://myapp.local")
}

// GetAllowedHosts returns an optional explicit allowlist of protected hosts.
// Empty means any subdomain of the base domain is accepted as a next_url
// target.
func (EnvVars) GetAllowedHosts() []string {
	raw := GetEnv(allowedHostsVar, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, p := range parts {
		if h := strings.TrimSpace(p); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func (EnvVars) GetPostLogoutURL() string {
	return GetEnv(postLogoutURLVar, "/")
}

func (EnvVars) GetSessionTTL() time.Duration {
	return getDuration(sessionTTLVar, 24*time.Hour)
}

func (EnvVars) GetPendingTTL() time.Duration {
	return getDuration(pendingTTLVar, 10*time.Minute)
}

func (EnvVars) GetPendingCapacity() int {
	raw := GetEnv(pendingCapVar, "10000")
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Warn().Str("value", raw).Msg("invalid pending login capacity, using default")
		return 10000
	}
	return n
}

func (EnvVars) GetSweepInterval() time.Duration {
	return getDuration(sweepIntervalVar, time.Minute)
}

func (EnvVars) GetCookieName() string {
	return GetEnv(cookieNameVar, "gateway_session")
}

func (EnvVars) GetSecret() string {
	return GetEnv(secretKeyVar, processSecret)
}

func (EnvVars) GetIssuerURL() string {
	return GetEnv(issuerURLVar, "https://login.ubuntu.com")
}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDVar, "demo-platform")
}

func (EnvVars) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (EnvVars) GetProviderTimeout() time.Duration {
	return getDuration(providerTimeoutVar, 10*time.Second)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn().Str("var", envVar).Str("value", raw).Msg("invalid duration, using default")
		return defaultValue
	}
	return d
}

func generateProcessSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
