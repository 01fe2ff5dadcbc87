package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/p-n-ai/eduassist/internal/ai"
	"github.com/p-n-ai/eduassist/internal/curriculum"
)

// SourceStatic marks quizzes built from the static banks.
const SourceStatic = "static"

const defaultQuestionCount = 5

var difficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// QuizSpec describes a requested quiz.
type QuizSpec struct {
	Topic         string
	Difficulty    string // easy, medium or hard; anything else means medium
	QuestionCount int    // <= 0 means 5
	UserID        string
	RequestID     string
}

func (s QuizSpec) normalized() QuizSpec {
	s.Topic = strings.TrimSpace(s.Topic)
	s.Difficulty = strings.ToLower(strings.TrimSpace(s.Difficulty))
	if !difficulties[s.Difficulty] {
		s.Difficulty = "medium"
	}
	if s.QuestionCount <= 0 {
		s.QuestionCount = defaultQuestionCount
	}
	return s
}

// QuizConfig holds dependencies for a QuizResolver.
type QuizConfig struct {
	// Providers are asked for a quiz in order; only the first configured
	// one is used.
	Providers []ai.Provider
	Banks     *curriculum.Loader
	Observer  ai.Observer
	MaxTokens int
}

// QuizResolver produces multiple-choice quizzes, asking a provider first
// and falling back to the static banks.
type QuizResolver struct {
	providers []ai.Provider
	banks     *curriculum.Loader
	observer  ai.Observer
	maxTokens int
}

// NewQuizResolver creates a quiz resolver.
func NewQuizResolver(cfg QuizConfig) *QuizResolver {
	observer := cfg.Observer
	if observer == nil {
		observer = ai.LogObserver{}
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &QuizResolver{
		providers: cfg.Providers,
		banks:     cfg.Banks,
		observer:  observer,
		maxTokens: maxTokens,
	}
}

// GenerateQuiz never fails. Provider output that does not parse into at
// least one valid question is discarded in favour of the static banks.
func (q *QuizResolver) GenerateQuiz(ctx context.Context, spec QuizSpec) curriculum.Quiz {
	spec = spec.normalized()

	if quiz, ok := q.fromProvider(ctx, spec); ok {
		return quiz
	}
	return q.fromBank(spec)
}

func (q *QuizResolver) fromProvider(ctx context.Context, spec QuizSpec) (curriculum.Quiz, bool) {
	var provider ai.Provider
	for _, p := range q.providers {
		if p.Configured() {
			provider = p
			break
		}
	}
	if provider == nil {
		return curriculum.Quiz{}, false
	}

	start := time.Now()
	resp, err := provider.Complete(ctx, ai.CompletionRequest{
		Messages:    ai.Prompt(BuildSystemPrompt(ContextQuiz), quizPrompt(spec)),
		MaxTokens:   q.maxTokens,
		Temperature: defaultTemperature,
	})

	var questions []curriculum.Question
	if err == nil {
		var perr error
		if questions, perr = ParseQuizQuestions(resp.Content); perr != nil {
			err = fmt.Errorf("%w: %w", ai.ErrEmptyResponse, perr)
		}
	}

	q.observer.ObserveAttempt(ai.Attempt{
		Provider: provider.Name(),
		Model:    resp.Model,
		Outcome:  ai.OutcomeOf(err),
		Err:      err,
		Duration: time.Since(start),
		Tokens:   resp.TotalTokens(),
	})
	if err != nil {
		slog.Warn("quiz generation failed, using static banks", "provider", provider.Name(), "error", err)
		return curriculum.Quiz{}, false
	}

	if len(questions) > spec.QuestionCount {
		questions = questions[:spec.QuestionCount]
	}
	for i := range questions {
		questions[i].ID = i + 1
	}
	return curriculum.Quiz{
		Topic:      spec.Topic,
		Difficulty: spec.Difficulty,
		Questions:  questions,
		Source:     provider.Name(),
	}, true
}

func (q *QuizResolver) fromBank(spec QuizSpec) curriculum.Quiz {
	quiz := curriculum.Quiz{
		Topic:      spec.Topic,
		Difficulty: spec.Difficulty,
		Questions:  []curriculum.Question{},
		Source:     SourceStatic,
	}

	var (
		bank curriculum.Bank
		ok   bool
	)
	if q.banks != nil {
		bank, ok = q.banks.Classify(spec.Topic)
	}
	if !ok {
		quiz.Message = studyGuidance(spec.Topic)
		return quiz
	}

	n := min(spec.QuestionCount, len(bank.Questions))
	quiz.Questions = append(quiz.Questions, bank.Questions[:n]...)
	return quiz
}

func quizPrompt(spec QuizSpec) string {
	return fmt.Sprintf(`Create a %s level quiz about "%s" with %d multiple choice questions. Format as JSON with questions, options (A,B,C,D), correct answers, and explanations.
Reply with JSON only, shaped like:
{"questions": [{"question": "...", "options": {"A": "...", "B": "...", "C": "...", "D": "..."}, "correct": "A", "explanation": "..."}]}`,
		spec.Difficulty, spec.Topic, spec.QuestionCount)
}

func studyGuidance(topic string) string {
	return fmt.Sprintf(`I'd love to create a personalized quiz about "%[1]s"!

To generate the best questions for you, I need a bit more information:

• What specific aspects of %[1]s should I focus on?
• What grade level or difficulty are you aiming for?
• Are there particular concepts you want to practice?

For now, here are some study tips for %[1]s:
• Break the topic into smaller subtopics
• Create your own practice questions
• Use flashcards for key terms
• Explain concepts in your own words
• Find real-world examples

Would you like me to help you create a study plan for %[1]s instead?`, topic)
}
