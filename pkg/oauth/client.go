package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"k8s.io/utils/clock"
)

const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of an OAuth response is read.
	maxResponseBytes = 1 << 20
)

// Client performs the OAuth operations a device-code client needs:
// starting a device authorization, polling for its token, and exchanging
// refresh tokens.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	clock      clock.PassiveClock
}

// ClientOption configures the OAuth client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithClock sets the clock used to turn expires_in into absolute instants.
func WithClock(clk clock.PassiveClock) ClientOption {
	return func(c *Client) {
		c.clock = clk
	}
}

// NewClient creates a new OAuth client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
		logger:     slog.Default(),
		clock:      clock.RealClock{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// StartDeviceAuthorization begins an RFC 8628 device authorization.
func (c *Client) StartDeviceAuthorization(ctx context.Context) (*DeviceAuthorization, error) {
	data := url.Values{
		"client_id": {c.config.ClientID},
	}
	if secret := c.config.secretToSend(); secret != "" {
		data.Set("client_secret", secret)
	}
	if scope := c.config.scope(); scope != "" {
		data.Set("scope", scope)
	}

	status, body, err := c.postForm(ctx, c.config.DeviceAuthorizationURL, data)
	if err != nil {
		return nil, fmt.Errorf("device authorization request failed: %w", err)
	}
	if !isSuccess(status) {
		c.logger.Debug("Device authorization request failed",
			"status", status,
			"endpoint", c.config.DeviceAuthorizationURL)
		return nil, newProtocolError(c.config.DeviceAuthorizationURL, status, body)
	}

	var resp deviceAuthorizationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse device authorization response: %w", err)
	}
	if resp.DeviceCode == "" {
		return nil, errors.New("device authorization response has no device_code")
	}

	verificationURI := resp.VerificationURI
	if verificationURI == "" {
		verificationURI = resp.VerificationURL
	}

	authResp := &oauth2.DeviceAuthResponse{
		DeviceCode:              resp.DeviceCode,
		UserCode:                resp.UserCode,
		VerificationURI:         verificationURI,
		VerificationURIComplete: resp.VerificationURIComplete,
		Interval:                int64(resp.Interval),
	}
	if resp.ExpiresIn > 0 {
		authResp.Expiry = c.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return newDeviceAuthorization(authResp), nil
}

// PollDeviceToken asks the token endpoint whether the device code has been
// approved. While the user has not decided yet the returned error matches
// ErrAuthorizationPending or ErrSlowDown; a decline matches ErrAccessDenied
// and an expired code matches ErrExpiredToken.
func (c *Client) PollDeviceToken(ctx context.Context, deviceCode string) (*Token, error) {
	data := url.Values{
		"grant_type":  {DeviceCodeGrantType},
		"device_code": {deviceCode},
		"client_id":   {c.config.ClientID},
	}
	if secret := c.config.secretToSend(); secret != "" {
		data.Set("client_secret", secret)
	}

	return c.doTokenRequest(ctx, data)
}

// RefreshToken obtains a new access token using a refresh token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.config.ClientID},
	}
	if secret := c.config.secretToSend(); secret != "" {
		data.Set("client_secret", secret)
	}

	return c.doTokenRequest(ctx, data)
}

// doTokenRequest performs a token endpoint request.
func (c *Client) doTokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	status, body, err := c.postForm(ctx, c.config.TokenURL, data)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	if !isSuccess(status) {
		perr := newProtocolError(c.config.TokenURL, status, body)
		c.logger.Debug("Token request failed",
			"grant_type", data.Get("grant_type"),
			"status", status,
			"error_code", perr.Code)
		return nil, perr
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	return resp.toToken(c.clock.Now())
}

// postForm sends a form-encoded POST and returns the status and body.
func (c *Client) postForm(ctx context.Context, endpoint string, data url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// seconds decodes a JSON number of seconds that some servers send as a
// string. Values that cannot be parsed decode to zero, which callers treat
// as "unset".
type seconds int64

func (s *seconds) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil || n < 0 {
		*s = 0
		return nil
	}
	*s = seconds(n)
	return nil
}

type deviceAuthorizationResponse struct {
	DeviceCode              string  `json:"device_code"`
	UserCode                string  `json:"user_code"`
	VerificationURI         string  `json:"verification_uri"`
	VerificationURL         string  `json:"verification_url"`
	VerificationURIComplete string  `json:"verification_uri_complete"`
	ExpiresIn               seconds `json:"expires_in"`
	Interval                seconds `json:"interval"`
}

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    seconds `json:"expires_in"`
}

// toToken converts the wire response into a Token issued at now.
func (r tokenResponse) toToken(now time.Time) (*Token, error) {
	if r.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	token := &Token{
		TokenType:    r.TokenType,
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		CreatedAt:    now,
	}
	if token.TokenType == "" {
		token.TokenType = DefaultTokenType
	}
	if r.ExpiresIn > 0 {
		token.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}

	return token, nil
}
