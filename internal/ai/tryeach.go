package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// errNoCandidates is returned by TryEach when the candidate list is empty.
var errNoCandidates = errors.New("no candidates")

// TryEachOptions controls a TryEach run.
type TryEachOptions[T any] struct {
	// Accept decides whether a successful attempt's value is good enough.
	// Nil accepts every value.
	Accept func(T) bool
	// Fatal reports errors that make the remaining candidates pointless,
	// for example an unreachable runtime. Nil treats every error as
	// candidate-local.
	Fatal func(error) bool
}

// TryEach runs attempt for each candidate in order and returns the first
// accepted value together with the candidate that produced it. Rejected
// values and candidate-local errors advance to the next candidate. A fatal
// error or a cancelled context stops the iteration immediately.
func TryEach[T any](ctx context.Context, candidates []string, attempt func(context.Context, string) (T, error), opts TryEachOptions[T]) (T, string, error) {
	var zero T
	if len(candidates) == 0 {
		return zero, "", errNoCandidates
	}

	var errs []error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			return zero, "", errors.Join(errs...)
		}

		v, err := attempt(ctx, candidate)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", candidate, err))
			if opts.Fatal != nil && opts.Fatal(err) {
				return zero, "", errors.Join(errs...)
			}
			slog.Debug("candidate failed", "candidate", candidate, "error", err)
			continue
		}
		if opts.Accept != nil && !opts.Accept(v) {
			errs = append(errs, fmt.Errorf("%s: %w", candidate, ErrEmptyResponse))
			slog.Debug("candidate rejected", "candidate", candidate)
			continue
		}
		return v, candidate, nil
	}
	return zero, "", errors.Join(errs...)
}
