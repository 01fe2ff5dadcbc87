package agent

import "strings"

// Context tags a request with the kind of help the user wants. It selects
// the system prompt.
type Context string

const (
	ContextGeneral  Context = "general"
	ContextHomework Context = "homework"
	ContextQuiz     Context = "quiz"
	ContextStudy    Context = "study"
	ContextWriting  Context = "writing"
	ContextMath     Context = "math"
	ContextResearch Context = "research"
)

var knownContexts = map[Context]bool{
	ContextGeneral:  true,
	ContextHomework: true,
	ContextQuiz:     true,
	ContextStudy:    true,
	ContextWriting:  true,
	ContextMath:     true,
	ContextResearch: true,
}

// ParseContext maps a raw tag to a Context. Empty and unknown tags become
// ContextGeneral. Surrounding whitespace and case are ignored.
func ParseContext(s string) Context {
	c := Context(strings.ToLower(strings.TrimSpace(s)))
	if knownContexts[c] {
		return c
	}
	return ContextGeneral
}

func (c Context) String() string { return string(c) }
