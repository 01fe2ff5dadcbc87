package ai

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome is the result of one provider stage.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
	OutcomeRejected Outcome = "rejected"
)

// Attempt describes one provider stage of a router run.
type Attempt struct {
	Provider string
	Model    string
	Outcome  Outcome
	Err      error
	Duration time.Duration
	Tokens   int
}

// OutcomeOf classifies a provider error.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrUnconfigured):
		return OutcomeSkipped
	case errors.Is(err, ErrEmptyResponse):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// Observer receives every attempt the router makes. Implementations must
// return quickly; wrap slow sinks with NewAsyncObserver.
type Observer interface {
	ObserveAttempt(Attempt)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Attempt)

func (f ObserverFunc) ObserveAttempt(a Attempt) { f(a) }

// MultiObserver fans an attempt out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) ObserveAttempt(a Attempt) {
	for _, o := range m {
		if o != nil {
			o.ObserveAttempt(a)
		}
	}
}

// LogObserver writes attempts to slog.
type LogObserver struct{}

func (LogObserver) ObserveAttempt(a Attempt) {
	switch a.Outcome {
	case OutcomeSuccess:
		slog.Info("AI provider answered",
			"provider", a.Provider,
			"model", a.Model,
			"tokens", a.Tokens,
			"duration_ms", a.Duration.Milliseconds(),
		)
	case OutcomeSkipped:
		slog.Debug("AI provider not configured, skipping", "provider", a.Provider)
	default:
		slog.Warn("AI provider failed, trying next",
			"provider", a.Provider,
			"outcome", string(a.Outcome),
			"duration_ms", a.Duration.Milliseconds(),
			"error", a.Err,
		)
	}
}

// AsyncObserver hands attempts to another observer on a background
// goroutine. When its buffer is full new attempts are dropped rather than
// delaying the caller.
type AsyncObserver struct {
	next    Observer
	ch      chan Attempt
	done    chan struct{}
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewAsyncObserver starts the delivery goroutine. Call Close to drain it.
func NewAsyncObserver(next Observer, buffer int) *AsyncObserver {
	if buffer <= 0 {
		buffer = 256
	}
	a := &AsyncObserver{
		next: next,
		ch:   make(chan Attempt, buffer),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncObserver) run() {
	defer close(a.done)
	for attempt := range a.ch {
		a.next.ObserveAttempt(attempt)
	}
}

func (a *AsyncObserver) ObserveAttempt(attempt Attempt) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.ch <- attempt:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns how many attempts were discarded because the buffer was full.
func (a *AsyncObserver) Dropped() int64 {
	return a.dropped.Load()
}

// Close stops accepting attempts and waits for queued ones to be delivered.
func (a *AsyncObserver) Close() {
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()
	})
	<-a.done
}
