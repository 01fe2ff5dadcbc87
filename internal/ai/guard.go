package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// GuardedProvider bounds another provider's call time and rejects
// truncated or degenerate replies.
type GuardedProvider struct {
	Provider
	timeout  time.Duration
	minChars int
}

// Guard wraps p so each call is cancelled after timeout and any reply whose
// trimmed length is minChars or less fails with ErrEmptyResponse.
func Guard(p Provider, timeout time.Duration, minChars int) *GuardedProvider {
	return &GuardedProvider{Provider: p, timeout: timeout, minChars: minChars}
}

func (g *GuardedProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.Provider.Complete(ctx, req)
	if err != nil {
		return CompletionResponse{}, err
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(resp.Content)); n <= g.minChars {
		return CompletionResponse{}, emptyErr(g.Name(), fmt.Errorf("reply has %d characters, need more than %d", n, g.minChars))
	}
	return resp, nil
}
