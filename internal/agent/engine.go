package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/p-n-ai/eduassist/internal/ai"
	"github.com/p-n-ai/eduassist/internal/chat"
	"github.com/p-n-ai/eduassist/internal/curriculum"
)

// SourceOffline marks replies produced without any provider.
const SourceOffline = "offline"

const (
	defaultMaxTokens   = 1000
	defaultTemperature = 0.7
)

// Completer is the failover chain the engine drives. *ai.Router implements it.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

// EngineConfig holds dependencies for the agent engine.
type EngineConfig struct {
	AIRouter Completer
	// Quiz defaults to a resolver over the embedded banks with no providers.
	Quiz        *QuizResolver
	Offline     *OfflineResponder
	EventLogger EventLogger
	MaxTokens   int     // per provider call (default 1000)
	Temperature float64 // default 0.7
}

// Engine resolves chat messages and quiz requests. It never fails: when
// every provider does, the offline responder or the static banks answer.
type Engine struct {
	aiRouter    Completer
	quiz        *QuizResolver
	offline     *OfflineResponder
	eventLogger EventLogger
	maxTokens   int
	temperature float64
}

// ChatResult is a resolved chat reply and where it came from.
type ChatResult struct {
	Text    string  `json:"text"`
	Source  string  `json:"source"`
	Context Context `json:"context"`
}

// NewEngine creates a new agent engine.
func NewEngine(cfg EngineConfig) *Engine {
	quiz := cfg.Quiz
	if quiz == nil {
		quiz = defaultQuizResolver()
	}
	offline := cfg.Offline
	if offline == nil {
		offline = NewOfflineResponder()
	}
	eventLogger := cfg.EventLogger
	if eventLogger == nil {
		eventLogger = NopEventLogger{}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &Engine{
		aiRouter:    cfg.AIRouter,
		quiz:        quiz,
		offline:     offline,
		eventLogger: eventLogger,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func defaultQuizResolver() *QuizResolver {
	banks, err := curriculum.NewLoader()
	if err != nil {
		slog.Warn("embedded quiz banks unavailable", "error", err)
		return NewQuizResolver(QuizConfig{})
	}
	return NewQuizResolver(QuizConfig{Banks: banks})
}

// ResolveChat answers msg. Callers validate msg first; the engine itself
// answers anything, including an empty message.
func (e *Engine) ResolveChat(ctx context.Context, msg chat.InboundMessage) ChatResult {
	c := ParseContext(msg.Context)
	start := time.Now()

	slog.Info("resolving chat",
		"request_id", msg.RequestID,
		"user_id", msg.UserID,
		"context", c.String(),
		"text_len", len(msg.Text),
	)

	result := ChatResult{Context: c}
	if e.aiRouter != nil {
		resp, err := e.aiRouter.Complete(ctx, ai.CompletionRequest{
			Messages:    ai.Prompt(BuildSystemPrompt(c), msg.Text),
			MaxTokens:   e.maxTokens,
			Temperature: e.temperature,
		})
		if err == nil {
			result.Text = resp.Content
			result.Source = resp.Provider
			if result.Source == "" {
				result.Source = "ai"
			}
		} else {
			slog.Warn("all providers failed, answering offline", "request_id", msg.RequestID, "error", err)
		}
	}

	data := map[string]any{"context": c.String()}
	if result.Source == "" {
		intent := e.offline.Classify(msg.Text)
		result.Text = e.offline.Respond(msg.Text, c)
		result.Source = SourceOffline
		data["intent"] = string(intent)
	}
	data["source"] = result.Source
	data["duration_ms"] = time.Since(start).Milliseconds()

	e.logEvent(Event{
		RequestID: msg.RequestID,
		UserID:    msg.UserID,
		EventType: EventChatResolved,
		Data:      data,
	})
	return result
}

// ResolveQuiz builds a quiz for spec. It never fails.
func (e *Engine) ResolveQuiz(ctx context.Context, spec QuizSpec) curriculum.Quiz {
	quiz := e.quiz.GenerateQuiz(ctx, spec)

	e.logEvent(Event{
		RequestID: spec.RequestID,
		UserID:    spec.UserID,
		EventType: EventQuizGenerated,
		Data: map[string]any{
			"topic":      quiz.Topic,
			"difficulty": quiz.Difficulty,
			"source":     quiz.Source,
			"questions":  len(quiz.Questions),
		},
	})
	return quiz
}

func (e *Engine) logEvent(event Event) {
	if err := e.eventLogger.LogEvent(event); err != nil {
		slog.Warn("failed to log event", "type", event.EventType, "error", err)
	}
}
