package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/p-n-ai/eduassist/internal/ai"
)

const (
	defaultAttemptPrefix  = "eduassist:attempts:"
	defaultAttemptTimeout = 2 * time.Second
)

// AttemptRecorder keeps per-provider attempt counters in Redis hashes so they
// survive restarts and are shared between instances. Each provider gets one
// hash with a field per outcome plus "tokens" and "last_seen".
//
// It blocks on the network; register it behind ai.NewAsyncObserver.
type AttemptRecorder struct {
	client  redis.Cmdable
	prefix  string
	timeout time.Duration
}

// RecorderOption configures an AttemptRecorder.
type RecorderOption func(*AttemptRecorder)

// WithKeyPrefix overrides the hash key prefix.
func WithKeyPrefix(prefix string) RecorderOption {
	return func(r *AttemptRecorder) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithWriteTimeout bounds each recording round trip.
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *AttemptRecorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewAttemptRecorder creates a recorder writing through client.
func NewAttemptRecorder(client redis.Cmdable, opts ...RecorderOption) *AttemptRecorder {
	r := &AttemptRecorder{
		client:  client,
		prefix:  defaultAttemptPrefix,
		timeout: defaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recorder returns an AttemptRecorder on this cache's client.
func (c *Cache) Recorder(opts ...RecorderOption) *AttemptRecorder {
	return NewAttemptRecorder(c.Client, opts...)
}

// Key returns the hash key holding a provider's counters.
func (r *AttemptRecorder) Key(provider string) string {
	return r.prefix + provider
}

// ObserveAttempt implements ai.Observer. Write failures are logged and dropped.
func (r *AttemptRecorder) ObserveAttempt(a ai.Attempt) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.Record(ctx, a); err != nil {
		slog.Warn("recording provider attempt failed",
			"provider", a.Provider,
			"outcome", string(a.Outcome),
			"error", err,
		)
	}
}

// Record writes one attempt in a single pipelined round trip.
func (r *AttemptRecorder) Record(ctx context.Context, a ai.Attempt) error {
	key := r.Key(a.Provider)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, string(a.Outcome), 1)
		if a.Tokens > 0 {
			pipe.HIncrBy(ctx, key, "tokens", int64(a.Tokens))
		}
		pipe.HSet(ctx, key, "last_seen", time.Now().UTC().Format(time.RFC3339))
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording attempt for %s: %w", a.Provider, err)
	}
	return nil
}

// Counts reads back a provider's counters. The last_seen field is omitted.
func (r *AttemptRecorder) Counts(ctx context.Context, provider string) (map[string]int64, error) {
	fields, err := r.client.HGetAll(ctx, r.Key(provider)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading attempts for %s: %w", provider, err)
	}

	counts := make(map[string]int64, len(fields))
	for field, v := range fields {
		if field == "last_seen" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("attempt counter %s.%s is not a number: %w", provider, field, err)
		}
		counts[field] = n
	}
	return counts, nil
}
