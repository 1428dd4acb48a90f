package cli

import (
	"errors"
	"fmt"
)

// AuthRequiredError indicates there is no usable session.
// Implements error with actionable guidance.
type AuthRequiredError struct {
	// Host is the Industrial App Store host that needs a session.
	Host string
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`Not signed in to %s

To sign in, run:
  iasctl auth login

To check current authentication status:
  iasctl auth status`, e.Host)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthFailedError indicates a sign-in or refresh attempt failed.
type AuthFailedError struct {
	// Host is the Industrial App Store host.
	Host string
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly error message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf(`Authentication failed for %s: %v

To retry, run:
  iasctl auth login --force`, e.Host, e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}

// IsAuthRequired reports whether err calls for "iasctl auth login".
func IsAuthRequired(err error) bool {
	return errors.Is(err, &AuthRequiredError{})
}

// IsAuthFailed reports whether err is a failed authentication attempt.
func IsAuthFailed(err error) bool {
	return errors.Is(err, &AuthFailedError{})
}
