package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/p-n-ai/eduassist/internal/curriculum"
)

// ErrNoQuizJSON is returned when a reply holds no usable quiz JSON.
var ErrNoQuizJSON = errors.New("no quiz JSON in reply")

const questionSchemaJSON = `{
  "type": "object",
  "required": ["question", "options", "correct"],
  "properties": {
    "question": {"type": "string", "minLength": 1},
    "options": {
      "type": "object",
      "required": ["A", "B", "C", "D"],
      "properties": {
        "A": {"type": "string", "minLength": 1},
        "B": {"type": "string", "minLength": 1},
        "C": {"type": "string", "minLength": 1},
        "D": {"type": "string", "minLength": 1}
      }
    },
    "correct": {"type": "string", "pattern": "^\\s*[A-Da-d]\\s*$"},
    "explanation": {"type": "string"}
  }
}`

var questionSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(questionSchemaJSON))
})

var rxFence = regexp.MustCompile("(?is)```(?:json)?\\s*([\\[{].*?[\\]}])\\s*```")

// ParseQuizQuestions extracts multiple-choice questions from a model reply.
// The reply may be raw JSON, JSON inside a code fence, or prose with a JSON
// value embedded in it; either {"questions": [...]} or a bare array.
// Questions failing schema validation are dropped. At least one must
// survive.
func ParseQuizQuestions(reply string) ([]curriculum.Question, error) {
	raw, ok := extractJSON(reply)
	if !ok {
		return nil, ErrNoQuizJSON
	}

	items, err := questionItems(raw)
	if err != nil {
		return nil, err
	}

	schema, err := questionSchema()
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}

	var (
		questions []curriculum.Question
		problems  []string
	)
	for i, item := range items {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(item))
		if err != nil {
			problems = append(problems, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		if !result.Valid() {
			for _, e := range result.Errors() {
				problems = append(problems, fmt.Sprintf("question %d: %s", i+1, e.String()))
			}
			continue
		}

		var q curriculum.Question
		if err := json.Unmarshal(item, &q); err != nil {
			problems = append(problems, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		q.ID = len(questions) + 1
		q.Correct = strings.ToUpper(strings.TrimSpace(q.Correct))
		if err := q.Validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		if len(problems) == 0 {
			return nil, fmt.Errorf("%w: no questions", ErrNoQuizJSON)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoQuizJSON, strings.Join(problems, "; "))
	}
	return questions, nil
}

// questionItems returns the raw question objects of an envelope or array.
func questionItems(raw string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoQuizJSON, err)
		}
		return items, nil
	}

	var envelope struct {
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoQuizJSON, err)
	}
	return envelope.Questions, nil
}

// extractJSON tries the whole reply, then a fenced block, then the first
// balanced JSON value.
func extractJSON(s string) (string, bool) {
	s = strings.TrimSpace(s)
	candidates := []string{s}
	if m := rxFence.FindStringSubmatch(s); len(m) > 1 {
		candidates = append(candidates, m[1])
	}
	if v := firstBalancedJSON(s); v != "" {
		candidates = append(candidates, v)
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if (strings.HasPrefix(c, "{") || strings.HasPrefix(c, "[")) && json.Valid([]byte(c)) {
			return c, true
		}
	}
	return "", false
}

// firstBalancedJSON returns the first {...} or [...] span whose brackets
// balance, ignoring brackets inside strings.
func firstBalancedJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
