package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrAllProvidersFailed is returned when no provider in the chain answered.
var ErrAllProvidersFailed = errors.New("all AI providers failed")

// Router walks an ordered failover chain of providers. Providers are tried
// one at a time in registration order; the first success wins. Nothing is
// raced and no stage is retried.
type Router struct {
	providers []Provider
	observer  Observer
	mu        sync.RWMutex
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithObserver sets the observer notified of every attempt. The default
// logs attempts through slog.
func WithObserver(o Observer) RouterOption {
	return func(r *Router) {
		if o != nil {
			r.observer = o
		}
	}
}

// NewRouter creates a new AI router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{observer: LogObserver{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a provider to the end of the chain.
func (r *Router) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

// Complete sends req to each configured provider in order and returns the
// first successful response, tagged with the provider that produced it.
func (r *Router) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, provider := range r.providers {
		name := provider.Name()
		if !provider.Configured() {
			r.observer.ObserveAttempt(Attempt{Provider: name, Outcome: OutcomeSkipped, Err: unconfigured(name)})
			continue
		}

		start := time.Now()
		resp, err := provider.Complete(ctx, req)
		attempt := Attempt{
			Provider: name,
			Model:    resp.Model,
			Outcome:  OutcomeOf(err),
			Err:      err,
			Duration: time.Since(start),
			Tokens:   resp.TotalTokens(),
		}
		r.observer.ObserveAttempt(attempt)

		if err != nil {
			errs = append(errs, err)
			continue
		}

		resp.Provider = name
		return resp, nil
	}

	if len(errs) == 0 {
		return CompletionResponse{}, fmt.Errorf("%w: no provider configured", ErrAllProvidersFailed)
	}
	return CompletionResponse{}, fmt.Errorf("%w: %w", ErrAllProvidersFailed, errors.Join(errs...))
}

// HasProvider returns true if at least one registered provider is configured.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if p.Configured() {
			return true
		}
	}
	return false
}

// Providers returns the chain in order.
func (r *Router) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers...)
}
