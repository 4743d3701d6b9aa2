package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-sso-gateway/internal/config"
	"github.com/jrsteele09/go-sso-gateway/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// OIDCClient implements Client against a real OpenID Connect provider using
// discovery, the standard oauth2 exchange and go-oidc ID-token verification.
type OIDCClient struct {
	provider *oidc.Provider
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
	timeout  time.Duration
}

var _ Client = (*OIDCClient)(nil)

// New discovers the provider's endpoints and returns a ready client.
// callbackURL is the gateway's browser-facing /callback URL.
func New(ctx context.Context, cfg config.ProviderConfig, callbackURL string) (*OIDCClient, error) {
	discoveryCtx, cancel := context.WithTimeout(ctx, cfg.GetProviderTimeout())
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, cfg.GetIssuerURL())
	if err != nil {
		return nil, fmt.Errorf("[provider New] failed to discover OIDC provider: %w", err)
	}

	return &OIDCClient{
		provider: provider,
		oauth: &oauth2.Config{
			ClientID:     cfg.GetClientID(),
			ClientSecret: cfg.GetClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  callbackURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{
			ClientID: cfg.GetClientID(),
		}),
		timeout: cfg.GetProviderTimeout(),
	}, nil
}

// AuthCodeURL builds the authorization redirect for one login flow
func (c *OIDCClient) AuthCodeURL(state, nonce string) string {
	return c.oauth.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Exchange swaps an authorization code for a verified identity claim. A
// transient provider failure is retried exactly once; every attempt carries
// its own timeout so the call can never hang.
func (c *OIDCClient) Exchange(ctx context.Context, code string) (*Claim, error) {
	token, err := c.exchangeOnce(ctx, code)
	if err != nil && stderrors.Is(err, errors.ErrProviderUnavailable) {
		log.Warn().Err(err).Msg("provider exchange failed, retrying once")
		token, err = c.exchangeOnce(ctx, code)
	}
	if err != nil {
		return nil, err
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "[provider Exchange] no ID token in response")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	idToken, err := c.verifier.Verify(verifyCtx, rawIDToken)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "[provider Exchange] ID token verification failed (%v)", err)
	}

	var claims struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Nonce string `json:"nonce"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "[provider Exchange] failed to extract claims")
	}
	if claims.Sub == "" || claims.Email == "" {
		return nil, errors.Wrapf(errors.ErrMalformedResponse, "[provider Exchange] missing sub or email claim")
	}

	return &Claim{
		Identity: claims.Sub,
		Email:    claims.Email,
		Name:     claims.Name,
		Nonce:    claims.Nonce,
	}, nil
}

func (c *OIDCClient) exchangeOnce(ctx context.Context, code string) (*oauth2.Token, error) {
	exchangeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.oauth.Exchange(exchangeCtx, code)
	if err != nil {
		return nil, classifyExchangeError(err)
	}
	return token, nil
}

// classifyExchangeError maps transport and provider failures onto the
// gateway's error taxonomy. Provider 5xx and network failures are
// transient; 4xx means the code itself was rejected.
func classifyExchangeError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= 500 {
			return errors.Wrapf(errors.ErrProviderUnavailable, "[provider Exchange] provider returned %d", retrieveErr.Response.StatusCode)
		}
		return errors.Wrapf(errors.ErrInvalidGrant, "[provider Exchange] code rejected")
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(errors.ErrProviderUnavailable, "[provider Exchange] provider call timed out")
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return errors.Wrapf(errors.ErrProviderUnavailable, "[provider Exchange] network failure")
	}

	return errors.Wrapf(errors.ErrProviderUnavailable, "[provider Exchange] exchange failed (%v)", err)
}
