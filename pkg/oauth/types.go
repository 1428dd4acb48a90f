package oauth

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultTokenType is assumed when a token response omits token_type.
const DefaultTokenType = "Bearer"

// PublicClientSecret is the placeholder secret carried by PKCE-only clients
// that have no real secret. It is compared by value and never sent to the
// token endpoint.
const PublicClientSecret = "public-client-no-secret"

// DeviceCodeGrantType is the RFC 8628 grant type for device code polling.
const DeviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// Token is an OAuth token set as issued by the Industrial App Store.
//
// A Token is treated as immutable once created: refreshes produce a new
// Token that replaces the old one wholesale.
type Token struct {
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`

	// AccessToken is the bearer credential. A stored Token always has one.
	AccessToken string `json:"access_token"`

	// RefreshToken renews the access token. Empty means the session cannot
	// renew itself.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the absolute expiry of the access token. The zero value
	// means "assume valid until proven otherwise".
	ExpiresAt time.Time `json:"expires_at,omitempty"`

	// CreatedAt is when the token set was issued. Diagnostic only.
	CreatedAt time.Time `json:"created_at"`
}

// Validate reports whether the token can be stored or returned.
func (t *Token) Validate() error {
	if t == nil || t.AccessToken == "" {
		return ErrMissingAccessToken
	}
	return nil
}

// HasRefreshToken reports whether the token set can renew itself.
func (t *Token) HasRefreshToken() bool {
	return t != nil && t.RefreshToken != ""
}

// HasExpiry reports whether an absolute expiry is known.
func (t *Token) HasExpiry() bool {
	return t != nil && !t.ExpiresAt.IsZero()
}

// NeedsRefresh reports whether the access token must no longer be used at
// now, treating it as expired skew early. A token is valid only while
// ExpiresAt is strictly after now+skew; tokens without an expiry never need
// a refresh.
func (t *Token) NeedsRefresh(now time.Time, skew time.Duration) bool {
	if !t.HasExpiry() {
		return false
	}
	return !t.ExpiresAt.After(now.Add(skew))
}

// Equal reports whether two tokens carry the same values. Instants are
// compared with time.Time.Equal so monotonic readings and locations do not
// matter.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.TokenType == other.TokenType &&
		t.AccessToken == other.AccessToken &&
		t.RefreshToken == other.RefreshToken &&
		t.ExpiresAt.Equal(other.ExpiresAt) &&
		t.CreatedAt.Equal(other.CreatedAt)
}

// ToOAuth2Token converts the Token to an oauth2.Token for compatibility with golang.org/x/oauth2.
func (t *Token) ToOAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt,
	}
}

// Config identifies the OAuth client and the two endpoints it talks to.
type Config struct {
	// DeviceAuthorizationURL is the RFC 8628 device authorization endpoint.
	DeviceAuthorizationURL string

	// TokenURL is the token endpoint used for device code and refresh grants.
	TokenURL string

	// ClientID is the registered client identifier.
	ClientID string

	// ClientSecret is optional. Empty and PublicClientSecret are never sent.
	ClientSecret string

	// Scopes are requested at device authorization, space-joined.
	Scopes []string
}

// secretToSend returns the client secret to put on the wire, or "" when the
// configured value is empty or the public-client placeholder.
func (c Config) secretToSend() string {
	if c.ClientSecret == "" || c.ClientSecret == PublicClientSecret {
		return ""
	}
	return c.ClientSecret
}

func (c Config) scope() string {
	return strings.Join(c.Scopes, " ")
}

// PendingDeviceAuthorization is what the end user needs to approve a device
// sign-in. It exists only for the duration of one attempt and is never
// persisted.
type PendingDeviceAuthorization struct {
	// VerificationURI is where the user enters UserCode.
	VerificationURI string

	// VerificationURIComplete embeds the user code, when the server offers it.
	VerificationURIComplete string

	// UserCode is the short code shown to the user.
	UserCode string

	// ExpiresAt is when the device code stops being accepted.
	ExpiresAt time.Time
}

// DeviceAuthorization is the result of starting a device code flow.
type DeviceAuthorization struct {
	Pending PendingDeviceAuthorization

	// DeviceCode is the secret the client polls with. Never shown to users.
	DeviceCode string

	// Interval is the server-requested polling interval; zero when the
	// server did not specify one.
	Interval time.Duration
}

// newDeviceAuthorization converts the oauth2 representation of a device
// authorization response.
func newDeviceAuthorization(resp *oauth2.DeviceAuthResponse) *DeviceAuthorization {
	return &DeviceAuthorization{
		Pending: PendingDeviceAuthorization{
			VerificationURI:         resp.VerificationURI,
			VerificationURIComplete: resp.VerificationURIComplete,
			UserCode:                resp.UserCode,
			ExpiresAt:               resp.Expiry,
		},
		DeviceCode: resp.DeviceCode,
		Interval:   time.Duration(resp.Interval) * time.Second,
	}
}
