package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/p-n-ai/eduassist/internal/ai"
)

type slowProvider struct {
	ai.MockProvider
	delay time.Duration
}

func (s *slowProvider) Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error) {
	select {
	case <-time.After(s.delay):
		return s.MockProvider.Complete(ctx, req)
	case <-ctx.Done():
		return ai.CompletionResponse{}, ctx.Err()
	}
}

func TestGuard_RejectsShortReplies(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		minChars int
		wantErr  bool
	}{
		{"long enough", "A helpful answer.", 5, false},
		{"exactly min", "Hello", 5, true},
		{"whitespace only", "      ", 0, true},
		{"trimmed before counting", "  hi there  ", 8, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := ai.Guard(ai.NewMockProvider(tt.reply), time.Second, tt.minChars)
			_, err := g.Complete(context.Background(), ai.CompletionRequest{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Complete() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ai.ErrEmptyResponse) {
				t.Errorf("error = %v, want ErrEmptyResponse", err)
			}
		})
	}
}

func TestGuard_Timeout(t *testing.T) {
	slow := &slowProvider{MockProvider: ai.MockProvider{Response: "late answer"}, delay: time.Second}
	g := ai.Guard(slow, 20*time.Millisecond, 0)

	start := time.Now()
	_, err := g.Complete(context.Background(), ai.CompletionRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Complete() error = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("guard did not cancel the slow provider")
	}
}

func TestGuard_KeepsProviderIdentity(t *testing.T) {
	g := ai.Guard(&ai.MockProvider{ProviderName: "huggingface-free", Unconfigured: true}, time.Second, 5)
	if g.Name() != "huggingface-free" {
		t.Errorf("Name() = %q", g.Name())
	}
	if g.Configured() {
		t.Error("Configured() should delegate to the wrapped provider")
	}
}
