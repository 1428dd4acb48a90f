package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(field, value, purpose string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("is required for %s", purpose),
		}
	}
	return nil
}

// ValidateHTTPURL checks that value is an absolute http(s) URL.
func ValidateHTTPURL(field, value string) error {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must be an absolute http or https URL",
		}
	}
	return nil
}

// ValidateNonNegative checks that a duration is not negative.
func ValidateNonNegative(field string, value time.Duration) error {
	if value < 0 {
		return ValidationError{
			Field:   field,
			Value:   value,
			Message: "must not be negative",
		}
	}
	return nil
}

// Validate checks the configuration for values no command can work with.
// The client id is checked separately by ValidateForSignIn because purely
// local commands do not need it.
func (c IasctlConfig) Validate() error {
	var errs ValidationErrors

	for field, value := range map[string]string{
		"appStore.url": c.AppStore.URL,
		"dataCore.url": c.DataCore.URL,
	} {
		if err := ValidateHTTPURL(field, value); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}
	for field, value := range map[string]time.Duration{
		"session.refreshSkew":         c.Session.RefreshSkew,
		"session.defaultPollInterval": c.Session.DefaultPollInterval,
		"session.httpTimeout":         c.Session.HTTPTimeout,
	} {
		if err := ValidateNonNegative(field, value); err != nil {
			errs = append(errs, err.(ValidationError))
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateForSignIn checks what talking to the OAuth server requires.
func (c IasctlConfig) ValidateForSignIn() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return ValidateRequired("client.id", c.Client.ID, "signing in to the Industrial App Store")
}
