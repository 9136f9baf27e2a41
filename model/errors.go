package model

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched (errors.Is) by every ConfigurationError.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a missing credential or an invalid configuration
// field. It is raised at construction time, before any network attempt.
type ConfigurationError struct {
	Component string
	Field     string
	Reason    string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: configuration error: %s", e.Component, e.Reason)
	}
	return fmt.Sprintf("%s: configuration error for field '%s': %s", e.Component, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfiguration) succeed.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MissingCredential is a shorthand for the most common configuration error.
func MissingCredential(component string) *ConfigurationError {
	return &ConfigurationError{Component: component, Field: "api_key", Reason: "API key is not configured"}
}

// UnknownProviderError is returned when a provider name matches no variant.
type UnknownProviderError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s", e.Name)
}

// UpstreamError wraps a transport failure, a non-success status or a
// malformed backend response. StatusCode is zero for transport failures.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s api error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s api error: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err into an *UpstreamError unless it already is one.
func Upstream(provider string, status int, err error) error {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Provider: provider, StatusCode: status, Err: err}
}
