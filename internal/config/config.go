package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config interface {
	EnvConfig
	CookieConfig
	ProviderConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseDomain() string
	GetExternalURL() string
	GetAllowedHosts() []string
	GetPostLogoutURL() string
	GetSessionTTL() time.Duration
	GetPendingTTL() time.Duration
	GetPendingCapacity() int
	GetSweepInterval() time.Duration
}

type CookieConfig interface {
	GetCookieName() string
	GetSecret() string
}

type ProviderConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetClientSecret() string
	GetProviderTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

var _ Config = mainConfig{}

func New() Config {
	loadDotEnv()
	return mainConfig{}
}

// Validate checks the cross-subdomain SSO invariants: every host the gateway
// vouches for must live under the one configured base domain, because the
// session cookie is scoped to that domain. Called once at startup before any
// request is served.
func Validate(c Config) error {
	base := c.GetBaseDomain()
	if base == "" {
		return fmt.Errorf("[config Validate] base domain must be configured")
	}
	if strings.Contains(base, "://") || strings.Contains(base, "/") {
		return fmt.Errorf("[config Validate] base domain %q must be a bare host name", base)
	}

	ext, err := url.Parse(c.GetExternalURL())
	if err != nil {
		return fmt.Errorf("[config Validate] invalid external URL: %w", err)
	}
	if ext.Scheme != "http" && ext.Scheme != "https" {
		return fmt.Errorf("[config Validate] external URL %q must be http or https", c.GetExternalURL())
	}
	if !HostWithinDomain(ext.Hostname(), base) {
		return fmt.Errorf("[config Validate] external URL host %q is not under base domain %q", ext.Hostname(), base)
	}

	for _, host := range c.GetAllowedHosts() {
		if !HostWithinDomain(host, base) {
			return fmt.Errorf("[config Validate] allowed host %q is not a subdomain of base domain %q", host, base)
		}
	}

	if c.GetSecret() == "" {
		return fmt.Errorf("[config Validate] secret key must be configured")
	}
	if c.GetSessionTTL() <= 0 {
		return fmt.Errorf("[config Validate] session TTL must be positive")
	}
	if c.GetPendingTTL() <= 0 {
		return fmt.Errorf("[config Validate] pending login TTL must be positive")
	}
	if c.GetPendingCapacity() <= 0 {
		return fmt.Errorf("[config Validate] pending login capacity must be positive")
	}
	return nil
}

// HostWithinDomain reports whether host equals domain or is a subdomain of it.
// Ports are not part of either argument.
func HostWithinDomain(host, domain string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
