package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	testingclock "k8s.io/utils/clock/testing"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(server *httptest.Server, cfg Config) (*Client, *testingclock.FakeClock) {
	clk := testingclock.NewFakeClock(testNow)
	cfg.DeviceAuthorizationURL = server.URL + "/device"
	cfg.TokenURL = server.URL + "/token"
	return NewClient(cfg, WithHTTPClient(server.Client()), WithClock(clk)), clk
}

func TestNewClient(t *testing.T) {
	t.Run("creates client with defaults", func(t *testing.T) {
		c := NewClient(Config{ClientID: "cli"})
		if c.httpClient == nil {
			t.Error("expected default HTTP client")
		}
		if c.httpClient.Timeout != DefaultHTTPTimeout {
			t.Errorf("expected timeout %v, got %v", DefaultHTTPTimeout, c.httpClient.Timeout)
		}
		if c.clock == nil {
			t.Error("expected default clock")
		}
		if c.Config().ClientID != "cli" {
			t.Errorf("expected client id cli, got %s", c.Config().ClientID)
		}
	})

	t.Run("applies custom HTTP client", func(t *testing.T) {
		custom := &http.Client{Timeout: 5 * time.Second}
		c := NewClient(Config{}, WithHTTPClient(custom))
		if c.httpClient != custom {
			t.Error("expected custom HTTP client to be used")
		}
	})
}

func TestStartDeviceAuthorization(t *testing.T) {
	t.Run("posts client and scope and converts expiry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/device" {
				t.Errorf("expected /device path, got %s", r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("expected form content type, got %s", ct)
			}
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.Form.Get("client_id") != "iasctl" {
				t.Errorf("expected client_id iasctl, got %s", r.Form.Get("client_id"))
			}
			if r.Form.Get("client_secret") != "s3cret" {
				t.Errorf("expected client_secret s3cret, got %s", r.Form.Get("client_secret"))
			}
			if r.Form.Get("scope") != "DataRead UserInfo" {
				t.Errorf("expected space-joined scope, got %q", r.Form.Get("scope"))
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"device_code":      "dev-code",
				"user_code":        "ABCD-EFGH",
				"verification_uri": "https://appstore.example.com/device",
				"expires_in":       600,
				"interval":         5,
			})
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{
			ClientID:     "iasctl",
			ClientSecret: "s3cret",
			Scopes:       []string{"DataRead", "UserInfo"},
		})

		auth, err := c.StartDeviceAuthorization(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth.DeviceCode != "dev-code" {
			t.Errorf("expected device code dev-code, got %s", auth.DeviceCode)
		}
		if auth.Pending.UserCode != "ABCD-EFGH" {
			t.Errorf("expected user code ABCD-EFGH, got %s", auth.Pending.UserCode)
		}
		if auth.Pending.VerificationURI != "https://appstore.example.com/device" {
			t.Errorf("unexpected verification uri %s", auth.Pending.VerificationURI)
		}
		if !auth.Pending.ExpiresAt.Equal(testNow.Add(600 * time.Second)) {
			t.Errorf("expected expiry %v, got %v", testNow.Add(600*time.Second), auth.Pending.ExpiresAt)
		}
		if auth.Interval != 5*time.Second {
			t.Errorf("expected interval 5s, got %v", auth.Interval)
		}
	})

	t.Run("omits placeholder secret and empty scope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if _, ok := r.Form["client_secret"]; ok {
				t.Error("client_secret must not be sent for the public client placeholder")
			}
			if _, ok := r.Form["scope"]; ok {
				t.Error("scope must not be sent when no scopes are configured")
			}
			w.Write([]byte(`{"device_code":"d","user_code":"u","verification_url":"https://v.example.com","expires_in":"300"}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl", ClientSecret: PublicClientSecret})

		auth, err := c.StartDeviceAuthorization(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if auth.Pending.VerificationURI != "https://v.example.com" {
			t.Errorf("expected verification_url fallback, got %s", auth.Pending.VerificationURI)
		}
		if !auth.Pending.ExpiresAt.Equal(testNow.Add(300 * time.Second)) {
			t.Errorf("expected string expires_in to be honoured, got %v", auth.Pending.ExpiresAt)
		}
		if auth.Interval != 0 {
			t.Errorf("expected zero interval when unspecified, got %v", auth.Interval)
		}
	})

	t.Run("returns protocol error on non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_client","error_description":"unknown client"}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "nope"})

		_, err := c.StartDeviceAuthorization(context.Background())
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProtocolError, got %T: %v", err, err)
		}
		if perr.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", perr.StatusCode)
		}
		if perr.Code != "invalid_client" {
			t.Errorf("expected code invalid_client, got %s", perr.Code)
		}
		if perr.Body == "" {
			t.Error("expected body to be preserved")
		}
	})

	t.Run("rejects response without device code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"user_code":"u"}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl"})
		if _, err := c.StartDeviceAuthorization(context.Background()); err == nil {
			t.Error("expected error for missing device_code")
		}
	})
}

func TestPollDeviceToken(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"pending", http.StatusBadRequest, `{"error":"authorization_pending"}`, ErrAuthorizationPending},
		{"slow down", http.StatusBadRequest, `{"error":"slow_down"}`, ErrSlowDown},
		{"denied", http.StatusBadRequest, `{"error":"access_denied"}`, ErrAccessDenied},
		{"expired", http.StatusBadRequest, `{"error":"expired_token"}`, ErrExpiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(server, Config{ClientID: "iasctl"})
			_, err := c.PollDeviceToken(context.Background(), "dev-code")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("pending helpers", func(t *testing.T) {
		if !IsPending(&ProtocolError{Code: ErrorCodeSlowDown}) {
			t.Error("slow_down should count as pending")
		}
		if IsPending(&ProtocolError{Code: ErrorCodeAccessDenied}) {
			t.Error("access_denied must not count as pending")
		}
	})

	t.Run("returns token on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if r.Form.Get("grant_type") != DeviceCodeGrantType {
				t.Errorf("expected device code grant, got %s", r.Form.Get("grant_type"))
			}
			if r.Form.Get("device_code") != "dev-code" {
				t.Errorf("expected device_code dev-code, got %s", r.Form.Get("device_code"))
			}
			if r.Form.Get("client_id") != "iasctl" {
				t.Errorf("expected client_id iasctl, got %s", r.Form.Get("client_id"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer","expires_in":3600}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl"})
		token, err := c.PollDeviceToken(context.Background(), "dev-code")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "at-1" || token.RefreshToken != "rt-1" || token.TokenType != "bearer" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.ExpiresAt.Equal(testNow.Add(time.Hour)) {
			t.Errorf("expected expiry %v, got %v", testNow.Add(time.Hour), token.ExpiresAt)
		}
		if !token.CreatedAt.Equal(testNow) {
			t.Errorf("expected created at %v, got %v", testNow, token.CreatedAt)
		}
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("refreshes token and sends secret", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("failed to parse form: %v", err)
			}
			if r.Form.Get("grant_type") != "refresh_token" {
				t.Errorf("expected grant_type refresh_token, got %s", r.Form.Get("grant_type"))
			}
			if r.Form.Get("refresh_token") != "old-refresh" {
				t.Errorf("expected refresh_token old-refresh, got %s", r.Form.Get("refresh_token"))
			}
			if r.Form.Get("client_secret") != "s3cret" {
				t.Errorf("expected client_secret s3cret, got %s", r.Form.Get("client_secret"))
			}
			w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","expires_in":60}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl", ClientSecret: "s3cret"})
		token, err := c.RefreshToken(context.Background(), "old-refresh")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.AccessToken != "new-access" {
			t.Errorf("expected new-access, got %s", token.AccessToken)
		}
		if token.TokenType != DefaultTokenType {
			t.Errorf("expected default token type, got %s", token.TokenType)
		}
	})

	for _, secret := range []string{"", PublicClientSecret} {
		t.Run("omits secret "+secret, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				r.ParseForm()
				if _, ok := r.Form["client_secret"]; ok {
					t.Errorf("client_secret must be omitted, got %q", r.Form.Get("client_secret"))
				}
				w.Write([]byte(`{"access_token":"a"}`))
			}))
			defer server.Close()

			c, _ := newTestClient(server, Config{ClientID: "iasctl", ClientSecret: secret})
			if _, err := c.RefreshToken(context.Background(), "r"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	t.Run("leaves expiry unset when expires_in is unparsable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"a","expires_in":"soon"}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl"})
		token, err := c.RefreshToken(context.Background(), "r")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if token.HasExpiry() {
			t.Errorf("expected no expiry, got %v", token.ExpiresAt)
		}
	})

	t.Run("returns protocol error on failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "invalid_grant"}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl"})
		_, err := c.RefreshToken(context.Background(), "revoked")

		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProtocolError, got %T: %v", err, err)
		}
		if perr.Code != "invalid_grant" {
			t.Errorf("expected invalid_grant, got %s", perr.Code)
		}
		if errors.Is(err, ErrAuthorizationPending) {
			t.Error("invalid_grant must not match a device flow sentinel")
		}
	})

	t.Run("rejects success without access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"refresh_token":"only-refresh"}`))
		}))
		defer server.Close()

		c, _ := newTestClient(server, Config{ClientID: "iasctl"})
		_, err := c.RefreshToken(context.Background(), "r")
		if !errors.Is(err, ErrMissingAccessToken) {
			t.Errorf("expected ErrMissingAccessToken, got %v", err)
		}
	})

	t.Run("honours context cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"access_token":"a"}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c, _ := newTestClient(server, Config{ClientID: "iasctl"})
		_, err := c.RefreshToken(ctx, "r")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
