package tokenstore

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is returned when the Store is used out of order: any
// operation before Init, or Init twice.
var ErrInvalidOperation = errors.New("invalid token store operation")

// RefreshError wraps a network or protocol failure during an automatic
// refresh. The stale record is kept so a later call can retry.
type RefreshError struct {
	Err error
}

// Error implements the error interface.
func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RefreshError) Unwrap() error {
	return e.Err
}

// IsRefreshError reports whether err is or wraps a RefreshError.
func IsRefreshError(err error) bool {
	var refreshErr *RefreshError
	return errors.As(err, &refreshErr)
}
