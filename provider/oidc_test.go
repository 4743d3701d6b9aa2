package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-sso-gateway/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "connection refused" }
func (fakeNetError) Timeout() bool   { return false }
func (fakeNetError) Temporary() bool { return true }

// tokenEndpointClient wires an OIDCClient straight at a stub token endpoint,
// skipping discovery. AuthStyleInHeader is set explicitly because the oauth2
// library's auth-style auto-detection re-sends the request once on its own,
// which would make attempt counts unreadable.
func tokenEndpointClient(tokenURL string) *OIDCClient {
	return &OIDCClient{
		oauth: &oauth2.Config{
			ClientID: "client",
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		timeout: time.Second,
	}
}

func TestExchangeRetriesOnceOnTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token","token_type":"bearer"}`))
	}))
	defer srv.Close()

	client := tokenEndpointClient(srv.URL)

	// The retried attempt succeeds at the transport level; a stub endpoint
	// carries no ID token, so the call still ends in ErrMalformedResponse.
	// What matters here is that the token endpoint saw exactly two attempts.
	_, err := client.Exchange(context.Background(), "some-code")
	require.ErrorIs(t, err, errors.ErrMalformedResponse)
	require.EqualValues(t, 2, hits.Load())
}

func TestExchangeDoesNotRetryRejectedCode(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	client := tokenEndpointClient(srv.URL)

	// A rejected code is not transient; retrying it would only burn a second
	// round trip on the same answer.
	_, err := client.Exchange(context.Background(), "bad-code")
	require.ErrorIs(t, err, errors.ErrInvalidGrant)
	require.EqualValues(t, 1, hits.Load())
}

func TestClassifyExchangeErrorProvider5xx(t *testing.T) {
	err := classifyExchangeError(&oauth2.RetrieveError{
		Response: &http.Response{StatusCode: http.StatusBadGateway},
	})
	require.ErrorIs(t, err, errors.ErrProviderUnavailable)
}

func TestClassifyExchangeErrorProvider4xx(t *testing.T) {
	err := classifyExchangeError(&oauth2.RetrieveError{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
	})
	require.ErrorIs(t, err, errors.ErrInvalidGrant)
}

func TestClassifyExchangeErrorTimeout(t *testing.T) {
	err := classifyExchangeError(fmt.Errorf("exchange: %w", context.DeadlineExceeded))
	require.ErrorIs(t, err, errors.ErrProviderUnavailable)
}

func TestClassifyExchangeErrorNetwork(t *testing.T) {
	err := classifyExchangeError(fmt.Errorf("exchange: %w", fakeNetError{}))
	require.ErrorIs(t, err, errors.ErrProviderUnavailable)
}

func TestClassifyExchangeErrorUnknown(t *testing.T) {
	// Anything unrecognised is treated as transient rather than leaking an
	// unclassified error to the login flow.
	err := classifyExchangeError(fmt.Errorf("something odd"))
	require.ErrorIs(t, err, errors.ErrProviderUnavailable)
}
