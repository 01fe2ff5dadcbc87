// Package chat holds the request-scoped inputs of the assistant: the inbound
// chat message and the study-tool requests that are turned into one.
package chat

import (
	"errors"
	"strings"
)

// Validation errors. Their text is returned to HTTP clients as is.
var (
	ErrMessageRequired  = errors.New("Message is required")
	ErrTopicRequired    = errors.New("Topic is required for quiz generation")
	ErrSubjectsRequired = errors.New("Subjects are required for a study plan")
	ErrQuestionRequired = errors.New("Question is required for homework help")
	ErrTextRequired     = errors.New("Text is required for writing assistance")
)

// InboundMessage is a message received from a client.
type InboundMessage struct {
	UserID    string
	RequestID string
	Text      string
	Context   string // raw context tag, parsed by the agent
}

// Validate rejects messages that are blank after trimming.
func (m InboundMessage) Validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return ErrMessageRequired
	}
	return nil
}
