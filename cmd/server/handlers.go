package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/p-n-ai/eduassist/internal/agent"
	"github.com/p-n-ai/eduassist/internal/ai"
	"github.com/p-n-ai/eduassist/internal/chat"
	"github.com/p-n-ai/eduassist/internal/curriculum"
)

const (
	maxBodyBytes    = 1 << 20
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
	readyTimeout    = 2 * time.Second
)

// resolver is the part of *agent.Engine the handlers use.
type resolver interface {
	ResolveChat(ctx context.Context, msg chat.InboundMessage) agent.ChatResult
	ResolveQuiz(ctx context.Context, spec agent.QuizSpec) curriculum.Quiz
}

// checkFunc reports whether a dependency is reachable.
type checkFunc func(ctx context.Context) error

type server struct {
	engine    resolver
	providers func() []ai.Provider
	usage     *ai.UsageStats
	checks    map[string]checkFunc
	now       func() time.Time
}

// routes returns the full handler with middleware applied.
func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/history/{userId}", handleGetHistory)
	mux.HandleFunc("DELETE /api/chat/history/{userId}", handleClearHistory)

	mux.HandleFunc("POST /api/study/quiz", s.handleQuiz)
	mux.HandleFunc("POST /api/study/plan", s.handleStudyPlan)
	mux.HandleFunc("POST /api/study/homework", s.handleHomework)
	mux.HandleFunc("POST /api/study/writing", s.handleWriting)

	mux.HandleFunc("GET /api/stats/providers", s.handleProviderStats)

	return allowCORS(withRequestID(logRequests(recoverPanics(mux))))
}

func (s *server) timestamp() string {
	return s.now().UTC().Format(timestampLayout)
}

type chatResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Context   string `json:"context"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := req.Inbound(requestIDFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.ResolveChat(r.Context(), msg)
	writeJSON(w, http.StatusOK, chatResponse{
		Success:   true,
		Response:  result.Text,
		Context:   result.Context.String(),
		Source:    result.Source,
		Timestamp: s.timestamp(),
	})
}

func handleGetHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": []any{},
		"message": "Conversation history feature coming soon!",
	})
}

func handleClearHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Conversation history cleared",
	})
}

type quizResponse struct {
	Success   bool            `json:"success"`
	Quiz      curriculum.Quiz `json:"quiz"`
	Timestamp string          `json:"timestamp"`
}

func (s *server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var req chat.QuizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quiz := s.engine.ResolveQuiz(r.Context(), agent.QuizSpec{
		Topic:         req.Topic,
		Difficulty:    req.Difficulty,
		QuestionCount: int(req.QuestionCount),
		UserID:        req.UserID,
		RequestID:     requestIDFrom(r.Context()),
	})
	writeJSON(w, http.StatusOK, quizResponse{Success: true, Quiz: quiz, Timestamp: s.timestamp()})
}

type studyPlanResponse struct {
	Success   bool     `json:"success"`
	StudyPlan string   `json:"studyPlan"`
	Subjects  []string `json:"subjects"`
	Timeframe string   `json:"timeframe,omitempty"`
	Source    string   `json:"source"`
	Timestamp string   `json:"timestamp"`
}

func (s *server) handleStudyPlan(w http.ResponseWriter, r *http.Request) {
	var req chat.StudyPlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := req.Inbound(requestIDFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.ResolveChat(r.Context(), msg)
	writeJSON(w, http.StatusOK, studyPlanResponse{
		Success:   true,
		StudyPlan: result.Text,
		Subjects:  req.Subjects,
		Timeframe: req.TimeAvailable,
		Source:    result.Source,
		Timestamp: s.timestamp(),
	})
}

type homeworkResponse struct {
	Success   bool   `json:"success"`
	Response  string `json:"response"`
	Subject   string `json:"subject,omitempty"`
	Level     string `json:"level,omitempty"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

func (s *server) handleHomework(w http.ResponseWriter, r *http.Request) {
	var req chat.HomeworkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := req.Inbound(requestIDFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.ResolveChat(r.Context(), msg)
	writeJSON(w, http.StatusOK, homeworkResponse{
		Success:   true,
		Response:  result.Text,
		Subject:   req.Subject,
		Level:     req.Level,
		Source:    result.Source,
		Timestamp: s.timestamp(),
	})
}

type writingResponse struct {
	Success      bool   `json:"success"`
	Feedback     string `json:"feedback"`
	OriginalText string `json:"originalText"`
	Type         string `json:"type,omitempty"`
	Source       string `json:"source"`
	Timestamp    string `json:"timestamp"`
}

func (s *server) handleWriting(w http.ResponseWriter, r *http.Request) {
	var req chat.WritingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := req.Inbound(requestIDFrom(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.engine.ResolveChat(r.Context(), msg)
	writeJSON(w, http.StatusOK, writingResponse{
		Success:      true,
		Feedback:     result.Text,
		OriginalText: req.Text,
		Type:         req.Type,
		Source:       result.Source,
		Timestamp:    s.timestamp(),
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "EduAssist-AI is running!",
	})
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz pings the optional database and cache. Providers are not
// checked; the offline responder keeps the service answering without them.
func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		slog.Warn("readiness check failed", "checks", failed)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "checks": failed})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}

type chainEntry struct {
	Provider   string `json:"provider"`
	Configured bool   `json:"configured"`
}

type providerStatsResponse struct {
	Chain []chainEntry       `json:"chain"`
	Usage []ai.ProviderUsage `json:"usage"`
}

func (s *server) handleProviderStats(w http.ResponseWriter, r *http.Request) {
	resp := providerStatsResponse{Chain: []chainEntry{}, Usage: []ai.ProviderUsage{}}
	if s.providers != nil {
		for _, p := range s.providers() {
			resp.Chain = append(resp.Chain, chainEntry{Provider: p.Name(), Configured: p.Configured()})
		}
	}
	if s.usage != nil {
		resp.Usage = s.usage.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
