package oauth

import (
	"net/http"
	"testing"
)

func TestParseWWWAuthenticate(t *testing.T) {
	t.Run("parses bearer challenge", func(t *testing.T) {
		c, err := ParseWWWAuthenticate(`Bearer realm="datacore", error="invalid_token", error_description="The access token expired"`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Scheme != "Bearer" {
			t.Errorf("expected scheme Bearer, got %s", c.Scheme)
		}
		if c.Realm != "datacore" {
			t.Errorf("expected realm datacore, got %s", c.Realm)
		}
		if !c.InvalidToken() {
			t.Error("expected invalid_token challenge")
		}
		if c.ErrorDescription != "The access token expired" {
			t.Errorf("unexpected description %q", c.ErrorDescription)
		}
	})

	t.Run("bare scheme", func(t *testing.T) {
		c, err := ParseWWWAuthenticate("Bearer")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.InvalidToken() {
			t.Error("bare challenge should not report invalid_token")
		}
	})

	t.Run("empty header", func(t *testing.T) {
		if _, err := ParseWWWAuthenticate("  "); err == nil {
			t.Error("expected error for empty header")
		}
	})
}

func TestChallengeFromResponse(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusUnauthorized, Header: http.Header{}}
	resp.Header.Set("WWW-Authenticate", `Bearer scope="DataRead"`)

	c := ChallengeFromResponse(resp)
	if c == nil || c.Scope != "DataRead" {
		t.Fatalf("expected scope DataRead, got %+v", c)
	}

	resp.StatusCode = http.StatusOK
	if ChallengeFromResponse(resp) != nil {
		t.Error("expected nil challenge for non-401 response")
	}
	if ChallengeFromResponse(nil) != nil {
		t.Error("expected nil challenge for nil response")
	}
}
