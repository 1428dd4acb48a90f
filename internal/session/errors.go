package session

import (
	"fmt"
	"time"

	"iasctl/pkg/oauth"
)

// AuthorizationDeniedError is returned by SignIn when the user declines the
// device authorization.
type AuthorizationDeniedError struct {
	Pending oauth.PendingDeviceAuthorization
	Err     error
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("device authorization for code %s was denied at %s", e.Pending.UserCode, e.Pending.VerificationURI)
}

func (e *AuthorizationDeniedError) Unwrap() error {
	return e.Err
}

// AuthorizationTimeoutError is returned by SignIn when the device code
// expires before the user approves it. Err wraps oauth.ErrExpiredToken when
// the server reported the expiry.
type AuthorizationTimeoutError struct {
	Pending oauth.PendingDeviceAuthorization
	Err     error
}

func (e *AuthorizationTimeoutError) Error() string {
	msg := fmt.Sprintf("device authorization for code %s was not approved in time", e.Pending.UserCode)
	if !e.Pending.ExpiresAt.IsZero() {
		msg += fmt.Sprintf(" (expired %s)", e.Pending.ExpiresAt.Format(time.RFC3339))
	}
	return msg
}

func (e *AuthorizationTimeoutError) Unwrap() error {
	return e.Err
}
