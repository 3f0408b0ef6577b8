package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery marks caller input the service cannot interpret (bad source, filter, or bbox).
var ErrInvalidQuery = errors.New("invalid query")

// ConfigurationError reports a provider that cannot be called because a setting is missing.
type ConfigurationError struct {
	Provider string
	Setting  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s not configured", e.Provider, e.Setting)
}

// UpstreamHTTPError reports a non-2xx answer from a provider.
type UpstreamHTTPError struct {
	Provider string
	Status   int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s: upstream returned HTTP %d", e.Provider, e.Status)
}

// UpstreamError wraps a transport or decode failure talking to a provider.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
