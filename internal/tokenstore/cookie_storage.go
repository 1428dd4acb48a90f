package tokenstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"iasctl/internal/tokencodec"
	"iasctl/pkg/oauth"
)

const (
	// DefaultTokenCookieName holds the encrypted token set.
	DefaultTokenCookieName = "iasctl.tokens"

	// SessionCookieName holds the opaque session id used as Key.SessionID.
	SessionCookieName = "iasctl.sid"
)

// CookieStorage keeps the encrypted token set in a cookie. It is bound to a
// single request/response pair: Load reads the request (or what this
// storage already wrote), Save and Delete write Set-Cookie headers.
type CookieStorage struct {
	codec  *tokencodec.Codec
	name   string
	secure bool

	w http.ResponseWriter
	r *http.Request

	mu      sync.Mutex
	written bool
	value   string
}

// CookieOption configures a CookieStorage.
type CookieOption func(*CookieStorage)

// WithCookieName overrides DefaultTokenCookieName.
func WithCookieName(name string) CookieOption {
	return func(c *CookieStorage) {
		c.name = name
	}
}

// WithInsecureCookies drops the Secure attribute, for plain-HTTP development.
func WithInsecureCookies() CookieOption {
	return func(c *CookieStorage) {
		c.secure = false
	}
}

// NewCookieStorage binds a CookieStorage to one exchange.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, codec *tokencodec.Codec, opts ...CookieOption) *CookieStorage {
	c := &CookieStorage{
		codec:  codec,
		name:   DefaultTokenCookieName,
		secure: true,
		w:      w,
		r:      r,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the session id carried by the request, issuing a new
// one as a cookie when absent.
func (c *CookieStorage) SessionID() string {
	if cookie, err := c.r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.NewString()
	http.SetCookie(c.w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	// Later reads in the same exchange must see the issued id.
	c.r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: id})
	return id
}

// Load implements Storage.
func (c *CookieStorage) Load(ctx context.Context, key Key) (*oauth.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, ok := c.current()
	if !ok || value == "" {
		return nil, nil
	}

	blob, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: cookie encoding: %v", tokencodec.ErrCodec, err)
	}
	return c.codec.WithPurpose(key.purpose()...).Unprotect(blob)
}

// Save implements Storage.
func (c *CookieStorage) Save(ctx context.Context, key Key, token *oauth.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	blob, err := c.codec.WithPurpose(key.purpose()...).Protect(token)
	if err != nil {
		return err
	}
	value := base64.RawURLEncoding.EncodeToString(blob)

	http.SetCookie(c.w, c.cookie(value, 0))
	c.remember(value)
	return nil
}

// Delete implements Storage.
func (c *CookieStorage) Delete(ctx context.Context, key Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	http.SetCookie(c.w, c.cookie("", -1))
	c.remember("")
	return nil
}

func (c *CookieStorage) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *CookieStorage) current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.written {
		return c.value, true
	}
	cookie, err := c.r.Cookie(c.name)
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieStorage) remember(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = true
	c.value = value
}
