package curriculum

import "fmt"

// Options holds the four answer choices of a multiple-choice question.
type Options struct {
	A string `yaml:"A" json:"A"`
	B string `yaml:"B" json:"B"`
	C string `yaml:"C" json:"C"`
	D string `yaml:"D" json:"D"`
}

// Get returns the option text for a key (A-D).
func (o Options) Get(key string) (string, bool) {
	switch key {
	case "A":
		return o.A, o.A != ""
	case "B":
		return o.B, o.B != ""
	case "C":
		return o.C, o.C != ""
	case "D":
		return o.D, o.D != ""
	}
	return "", false
}

// Question is a single multiple-choice question.
type Question struct {
	ID          int     `yaml:"id" json:"id"`
	Question    string  `yaml:"question" json:"question"`
	Options     Options `yaml:"options" json:"options"`
	Correct     string  `yaml:"correct" json:"correct"`
	Explanation string  `yaml:"explanation" json:"explanation"`
}

// Validate checks that the question has text and that Correct names one
// of its options.
func (q Question) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question %d: empty text", q.ID)
	}
	if _, ok := q.Options.Get(q.Correct); !ok {
		return fmt.Errorf("question %d: correct answer %q is not an option", q.ID, q.Correct)
	}
	return nil
}

// Bank is a static quiz bank for one subject (e.g., math).
type Bank struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Priority  int        `yaml:"priority"`
	Keywords  []string   `yaml:"keywords"`
	Questions []Question `yaml:"questions"`
}

// Quiz is what a quiz request resolves to. Unclassified topics carry a
// study-guidance Message and no questions.
type Quiz struct {
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty,omitempty"`
	Message    string     `json:"message,omitempty"`
	Questions  []Question `json:"questions"`
	Source     string     `json:"source,omitempty"`
}
