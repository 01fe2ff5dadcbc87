package ai_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/p-n-ai/eduassist/internal/ai"
)

type recordingObserver struct {
	mu       sync.Mutex
	attempts []ai.Attempt
}

func (r *recordingObserver) ObserveAttempt(a ai.Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func hiRequest() ai.CompletionRequest {
	return ai.CompletionRequest{Messages: []ai.Message{{Role: "user", Content: "hi"}}}
}

func TestRouter_SingleProvider(t *testing.T) {
	router := ai.NewRouter()
	mock := &ai.MockProvider{ProviderName: "groq", Response: "Hello!"}
	router.Register(mock)

	resp, err := router.Complete(context.Background(), hiRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Hello!" {
		t.Errorf("Content = %q, want %q", resp.Content, "Hello!")
	}
	if resp.Provider != "groq" {
		t.Errorf("Provider = %q, want %q", resp.Provider, "groq")
	}
}

func TestRouter_Fallback(t *testing.T) {
	router := ai.NewRouter()

	failing := &ai.MockProvider{ProviderName: "groq", Err: errors.New("rate limited")}
	fallback := &ai.MockProvider{ProviderName: "ollama", Response: "Fallback response"}

	router.Register(failing)
	router.Register(fallback)

	resp, err := router.Complete(context.Background(), hiRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Fallback response" {
		t.Errorf("Content = %q, want %q", resp.Content, "Fallback response")
	}
	if resp.Provider != "ollama" {
		t.Errorf("Provider = %q, want %q", resp.Provider, "ollama")
	}
}

func TestRouter_AllProvidersFail(t *testing.T) {
	router := ai.NewRouter()

	router.Register(&ai.MockProvider{ProviderName: "a", Err: errors.New("fail 1")})
	router.Register(&ai.MockProvider{ProviderName: "b", Err: errors.New("fail 2")})

	_, err := router.Complete(context.Background(), hiRequest())
	if err == nil {
		t.Fatal("Complete() should return error when all providers fail")
	}
	if !errors.Is(err, ai.ErrAllProvidersFailed) {
		t.Errorf("error = %v, want ErrAllProvidersFailed", err)
	}
}

func TestRouter_NoProviders(t *testing.T) {
	router := ai.NewRouter()

	_, err := router.Complete(context.Background(), hiRequest())
	if !errors.Is(err, ai.ErrAllProvidersFailed) {
		t.Fatalf("Complete() error = %v, want ErrAllProvidersFailed", err)
	}
}

func TestRouter_SkipsUnconfigured(t *testing.T) {
	obs := &recordingObserver{}
	router := ai.NewRouter(ai.WithObserver(obs))

	skipped := &ai.MockProvider{ProviderName: "groq", Response: "never", Unconfigured: true}
	used := &ai.MockProvider{ProviderName: "ollama", Response: "local"}
	router.Register(skipped)
	router.Register(used)

	resp, err := router.Complete(context.Background(), hiRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Provider != "ollama" {
		t.Errorf("Provider = %q, want ollama", resp.Provider)
	}
	if skipped.Calls() != 0 {
		t.Errorf("unconfigured provider was called %d times", skipped.Calls())
	}

	if len(obs.attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(obs.attempts))
	}
	if obs.attempts[0].Outcome != ai.OutcomeSkipped {
		t.Errorf("attempts[0].Outcome = %q, want skipped", obs.attempts[0].Outcome)
	}
	if obs.attempts[1].Outcome != ai.OutcomeSuccess {
		t.Errorf("attempts[1].Outcome = %q, want success", obs.attempts[1].Outcome)
	}
}

func TestRouter_StopsAtFirstSuccess(t *testing.T) {
	router := ai.NewRouter()

	first := &ai.MockProvider{ProviderName: "first", Response: "first"}
	second := &ai.MockProvider{ProviderName: "second", Response: "second"}
	router.Register(first)
	router.Register(second)

	resp, err := router.Complete(context.Background(), hiRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "first" {
		t.Errorf("Content = %q, want %q (first registered should be tried first)", resp.Content, "first")
	}
	if second.Calls() != 0 {
		t.Errorf("second provider called %d times, want 0", second.Calls())
	}
}

func TestRouter_HasProvider(t *testing.T) {
	router := ai.NewRouter()
	if router.HasProvider() {
		t.Error("HasProvider() should be false with no providers")
	}

	router.Register(&ai.MockProvider{ProviderName: "off", Unconfigured: true})
	if router.HasProvider() {
		t.Error("HasProvider() should be false with only unconfigured providers")
	}

	router.Register(ai.NewMockProvider("ok"))
	if !router.HasProvider() {
		t.Error("HasProvider() should be true after Register")
	}
	if got := len(router.Providers()); got != 2 {
		t.Errorf("Providers() len = %d, want 2", got)
	}
}
