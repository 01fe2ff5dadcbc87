package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const anonymousUser = "anonymous"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context"`
	UserID  string `json:"userId"`
}

// Inbound validates the request and converts it to an InboundMessage.
func (r ChatRequest) Inbound(requestID string) (InboundMessage, error) {
	msg := InboundMessage{
		UserID:    orDefault(r.UserID, anonymousUser),
		RequestID: requestID,
		Text:      r.Message,
		Context:   orDefault(r.Context, "general"),
	}
	return msg, msg.Validate()
}

// Count is an integer that also accepts a numeric JSON string, since form
// clients often send "5" rather than 5.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Count(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count must be a number: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("count must be a number: %w", err)
	}
	*c = Count(n)
	return nil
}

// QuizRequest is the body of POST /api/study/quiz.
type QuizRequest struct {
	Topic         string `json:"topic"`
	Difficulty    string `json:"difficulty"`
	QuestionCount Count  `json:"questionCount"`
	UserID        string `json:"userId"`
}

func (r QuizRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrTopicRequired
	}
	return nil
}

// StudyPlanRequest is the body of POST /api/study/plan.
type StudyPlanRequest struct {
	Subjects      []string `json:"subjects"`
	TimeAvailable string   `json:"timeAvailable"`
	Goals         string   `json:"goals"`
	Difficulty    string   `json:"difficulty"`
	UserID        string   `json:"userId"`
}

// Inbound validates the request and builds the study-context message.
func (r StudyPlanRequest) Inbound(requestID string) (InboundMessage, error) {
	var subjects []string
	for _, s := range r.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	if len(subjects) == 0 {
		return InboundMessage{}, ErrSubjectsRequired
	}

	text := fmt.Sprintf("Create a personalized study plan for: %s.\nAvailable time: %s.\nGoals: %s.\nDifficulty level: %s.\nInclude specific daily tasks, time allocation, and milestones.",
		strings.Join(subjects, ", "),
		orDefault(r.TimeAvailable, "flexible"),
		orDefault(r.Goals, "general improvement"),
		orDefault(r.Difficulty, "medium"),
	)
	return InboundMessage{
		UserID:    orDefault(r.UserID, anonymousUser),
		RequestID: requestID,
		Text:      text,
		Context:   "study",
	}, nil
}

// HomeworkRequest is the body of POST /api/study/homework.
type HomeworkRequest struct {
	Question string `json:"question"`
	Subject  string `json:"subject"`
	Level    string `json:"level"`
	UserID   string `json:"userId"`
}

// Inbound validates the request and builds the homework-context message.
func (r HomeworkRequest) Inbound(requestID string) (InboundMessage, error) {
	if strings.TrimSpace(r.Question) == "" {
		return InboundMessage{}, ErrQuestionRequired
	}
	return InboundMessage{
		UserID:    orDefault(r.UserID, anonymousUser),
		RequestID: requestID,
		Text: fmt.Sprintf("Subject: %s, Level: %s. Question: %s",
			orDefault(r.Subject, "General"), orDefault(r.Level, "High School"), r.Question),
		Context: "homework",
	}, nil
}

// WritingRequest is the body of POST /api/study/writing.
type WritingRequest struct {
	Text         string `json:"text"`
	Type         string `json:"type"`
	FeedbackType string `json:"feedback_type"`
	UserID       string `json:"userId"`
}

// Inbound validates the request and builds the writing-context message.
func (r WritingRequest) Inbound(requestID string) (InboundMessage, error) {
	if strings.TrimSpace(r.Text) == "" {
		return InboundMessage{}, ErrTextRequired
	}
	return InboundMessage{
		UserID:    orDefault(r.UserID, anonymousUser),
		RequestID: requestID,
		Text: fmt.Sprintf("Please provide %s feedback on this %s: %q",
			orDefault(r.FeedbackType, "general"), orDefault(r.Type, "essay"), r.Text),
		Context: "writing",
	}, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
