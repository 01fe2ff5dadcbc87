package agent_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/eduassist/internal/agent"
)

const persona = "You are EduAssist-AI, a helpful educational assistant designed to support students, teachers, and academic institutions. You provide clear, accurate, and encouraging responses to help improve academic performance."

func TestBuildSystemPrompt(t *testing.T) {
	tests := []struct {
		context agent.Context
		clause  string
	}{
		{agent.ContextHomework, "step-by-step explanations"},
		{agent.ContextQuiz, "educational quizzes"},
		{agent.ContextStudy, "study planning"},
		{agent.ContextWriting, "academic writing"},
		{agent.ContextMath, "math problems"},
		{agent.ContextResearch, "research projects"},
	}
	for _, tt := range tests {
		t.Run(tt.context.String(), func(t *testing.T) {
			got := agent.BuildSystemPrompt(tt.context)
			if !strings.HasPrefix(got, persona+" ") {
				t.Errorf("prompt does not start with the persona: %q", got)
			}
			if !strings.Contains(got, tt.clause) {
				t.Errorf("prompt missing %q: %q", tt.clause, got)
			}
		})
	}
}

func TestBuildSystemPrompt_GeneralAndUnknown(t *testing.T) {
	if got := agent.BuildSystemPrompt(agent.ContextGeneral); got != persona {
		t.Errorf("general prompt = %q", got)
	}
	if got := agent.BuildSystemPrompt(agent.Context("astrology")); got != persona {
		t.Errorf("unknown prompt = %q", got)
	}
}

func TestParseContext(t *testing.T) {
	tests := []struct {
		in   string
		want agent.Context
	}{
		{"math", agent.ContextMath},
		{" Homework ", agent.ContextHomework},
		{"", agent.ContextGeneral},
		{"poetry", agent.ContextGeneral},
	}
	for _, tt := range tests {
		if got := agent.ParseContext(tt.in); got != tt.want {
			t.Errorf("ParseContext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
