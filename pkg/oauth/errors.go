package oauth

import (
	"encoding/json"
	"errors"
	"fmt"

	pkgstrings "iasctl/pkg/strings"
)

// OAuth error codes used by the device authorization grant (RFC 8628 §3.5).
const (
	ErrorCodeAuthorizationPending = "authorization_pending"
	ErrorCodeSlowDown             = "slow_down"
	ErrorCodeAccessDenied         = "access_denied"
	ErrorCodeExpiredToken         = "expired_token"
)

var (
	// ErrAuthorizationPending means the user has not approved the device yet.
	// The caller should wait one interval and poll again.
	ErrAuthorizationPending = errors.New("authorization pending")

	// ErrSlowDown means the device is still pending and polling must slow down.
	ErrSlowDown = errors.New("polling too fast")

	// ErrAccessDenied means the user declined the device authorization.
	ErrAccessDenied = errors.New("authorization denied")

	// ErrExpiredToken means the device code expired before approval.
	ErrExpiredToken = errors.New("device code expired")

	// ErrMissingAccessToken is returned for token sets without an access token.
	ErrMissingAccessToken = errors.New("token response has no access_token")
)

// ProtocolError is a non-success response from an OAuth endpoint.
type ProtocolError struct {
	// Endpoint is the URL that was called.
	Endpoint string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Body is the raw response body.
	Body string

	// Code is the OAuth "error" field, when the body carried one.
	Code string

	// Description is the OAuth "error_description" field, if any.
	Description string
}

// newProtocolError builds a ProtocolError, extracting the standard OAuth
// error fields when the body is a JSON error response.
func newProtocolError(endpoint string, status int, body []byte) *ProtocolError {
	e := &ProtocolError{
		Endpoint:   endpoint,
		StatusCode: status,
		Body:       string(body),
	}

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		e.Code = errResp.Error
		e.Description = errResp.ErrorDescription
	}

	return e
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	switch {
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("oauth request to %s failed with status %d: %s - %s", e.Endpoint, e.StatusCode, e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("oauth request to %s failed with status %d: %s", e.Endpoint, e.StatusCode, e.Code)
	default:
		return fmt.Sprintf("oauth request to %s failed with status %d: %s", e.Endpoint, e.StatusCode,
			pkgstrings.Truncate(e.Body, pkgstrings.DefaultBodyPreviewLen))
	}
}

// Is maps the device flow error codes onto their sentinel errors so callers
// can use errors.Is(err, ErrAuthorizationPending) and friends.
func (e *ProtocolError) Is(target error) bool {
	switch e.Code {
	case ErrorCodeAuthorizationPending:
		return target == ErrAuthorizationPending
	case ErrorCodeSlowDown:
		return target == ErrSlowDown
	case ErrorCodeAccessDenied:
		return target == ErrAccessDenied
	case ErrorCodeExpiredToken:
		return target == ErrExpiredToken
	}
	return false
}

// IsPending reports whether err means "keep polling".
func IsPending(err error) bool {
	return errors.Is(err, ErrAuthorizationPending) || errors.Is(err, ErrSlowDown)
}
