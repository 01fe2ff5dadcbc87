package ai

import (
	"errors"
	"fmt"
)

// Sentinel kinds for provider failures. Use errors.Is against a
// *ProviderError to classify it.
var (
	ErrUnconfigured  = errors.New("provider not configured")
	ErrTransport     = errors.New("transport failure")
	ErrUpstream      = errors.New("upstream error")
	ErrEmptyResponse = errors.New("empty or degenerate response")
)

// ProviderError is returned by every provider adapter on failure.
type ProviderError struct {
	Provider string
	Kind     error
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func providerErr(provider string, kind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func unconfigured(provider string) *ProviderError {
	return providerErr(provider, ErrUnconfigured, nil)
}

func transportErr(provider string, err error) *ProviderError {
	return providerErr(provider, ErrTransport, err)
}

func upstreamErr(provider string, err error) *ProviderError {
	return providerErr(provider, ErrUpstream, err)
}

func emptyErr(provider string, err error) *ProviderError {
	return providerErr(provider, ErrEmptyResponse, err)
}

// statusErr describes a non-2xx upstream reply.
func statusErr(provider string, status int, body []byte) *ProviderError {
	return upstreamErr(provider, fmt.Errorf("status %d: %s", status, truncate(string(body), 200)))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
