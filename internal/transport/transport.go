// Package transport attaches Industrial App Store bearer tokens to outgoing
// API requests.
package transport

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"iasctl/internal/tokenstore"
	"iasctl/pkg/logging"
	"iasctl/pkg/oauth"
)

const subsystem = "Transport"

// ErrNoToken is returned by TokenSource when no session is available.
var ErrNoToken = errors.New("not signed in")

// BearerTokenProvider yields the access token for the next request. An
// empty token means "send the request unauthenticated".
// *session.Manager satisfies it.
type BearerTokenProvider interface {
	GetBearerToken(ctx context.Context) (string, error)
}

// RoundTripper adds an Authorization header from Provider to each request.
type RoundTripper struct {
	// Base defaults to http.DefaultTransport.
	Base     http.RoundTripper
	Provider BearerTokenProvider
}

// NewClient wraps base so every request carries the provider's token.
func NewClient(base *http.Client, provider BearerTokenProvider) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	return &http.Client{
		Transport: &RoundTripper{
			Base:     base.Transport,
			Provider: provider,
		},
		Timeout: base.Timeout,
	}
}

// RoundTrip implements http.RoundTripper.
//
// A failed refresh is treated like having no token: the request goes out
// unauthenticated and the server decides. Cancellation aborts the request.
func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.Provider.GetBearerToken(req.Context())
	if err != nil {
		if !tokenstore.IsRefreshError(err) {
			return nil, err
		}
		logging.Warn(subsystem, "Sending %s %s unauthenticated: %v", req.Method, req.URL.Path, err)
		token = ""
	}

	// Clone the request to avoid modifying the original
	reqCopy := req.Clone(req.Context())
	if token != "" {
		reqCopy.Header.Set("Authorization", oauth.DefaultTokenType+" "+token)
	}

	return t.base().RoundTrip(reqCopy)
}

func (t *RoundTripper) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// TokenSource adapts a provider to golang.org/x/oauth2.
func TokenSource(ctx context.Context, provider BearerTokenProvider) oauth2.TokenSource {
	return &providerTokenSource{ctx: ctx, provider: provider}
}

type providerTokenSource struct {
	ctx      context.Context
	provider BearerTokenProvider
}

// Token implements oauth2.TokenSource.
func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.provider.GetBearerToken(s.ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}
	return (&oauth.Token{TokenType: oauth.DefaultTokenType, AccessToken: token}).ToOAuth2Token(), nil
}
