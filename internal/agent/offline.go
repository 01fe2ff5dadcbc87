package agent

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Intent names the rule an offline reply came from.
type Intent string

const (
	IntentMath     Intent = "math"
	IntentScience  Intent = "science"
	IntentWriting  Intent = "writing"
	IntentHistory  Intent = "history"
	IntentStudy    Intent = "study"
	IntentHomework Intent = "homework"
	IntentGeneral  Intent = "general"
)

var (
	// expressionPattern decides whether a message is arithmetic. The
	// operator must touch both operands so "1939 - 1945" stays a range.
	expressionPattern = regexp.MustCompile(`\d+[+\-*/]\d+`)
	// operandsPattern extracts the operands once a message is math.
	// Whitespace around the operator is allowed.
	operandsPattern = regexp.MustCompile(`(\d+)\s*([+\-*/])\s*(\d+)`)
)

type offlineRule struct {
	intent  Intent
	match   func(lower, raw string) bool
	respond func(lower, raw string) string
}

// OfflineResponder answers from canned templates when no provider could.
// It is deterministic and does no I/O.
type OfflineResponder struct {
	rules []offlineRule
}

// NewOfflineResponder builds the ordered rule table. The first matching
// rule wins; the last rule always matches.
func NewOfflineResponder() *OfflineResponder {
	return &OfflineResponder{rules: []offlineRule{
		{
			intent: IntentMath,
			match: func(lower, raw string) bool {
				return containsAny(lower, "math", "calculate", "solve") || expressionPattern.MatchString(raw)
			},
			respond: func(_, raw string) string { return mathResponse(raw) },
		},
		{
			intent:  IntentScience,
			match:   keywords("science", "physics", "chemistry", "biology"),
			respond: func(lower, _ string) string { return scienceResponse(lower) },
		},
		{intent: IntentWriting, match: keywords("essay", "writing", "grammar", "paragraph"), respond: fixed(writingResponse)},
		{intent: IntentHistory, match: keywords("history", "war", "ancient", "civilization"), respond: fixed(historyResponse)},
		{intent: IntentStudy, match: keywords("study", "exam", "test", "prepare"), respond: fixed(studyResponse)},
		{intent: IntentHomework, match: keywords("homework", "assignment", "help me with"), respond: fixed(homeworkResponse)},
		{intent: IntentGeneral, match: func(string, string) bool { return true }, respond: fixed(generalResponse)},
	}}
}

// Respond returns the canned reply for message. The context is accepted for
// symmetry with the provider path but does not influence the reply.
func (r *OfflineResponder) Respond(message string, _ Context) string {
	_, reply := r.classify(message)
	return reply
}

// Classify returns the intent Respond would use for message.
func (r *OfflineResponder) Classify(message string) Intent {
	intent, _ := r.classify(message)
	return intent
}

func (r *OfflineResponder) classify(message string) (Intent, string) {
	lower := cases.Lower(language.Und).String(message)
	for _, rule := range r.rules {
		if rule.match(lower, message) {
			return rule.intent, rule.respond(lower, message)
		}
	}
	return IntentGeneral, generalResponse
}

func keywords(words ...string) func(lower, raw string) bool {
	return func(lower, _ string) bool { return containsAny(lower, words...) }
}

func fixed(reply string) func(string, string) string {
	return func(string, string) string { return reply }
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func mathResponse(message string) string {
	m := operandsPattern.FindStringSubmatch(message)
	if m == nil {
		return mathMenu
	}
	return fmt.Sprintf("Let me solve this step by step:\n\n%s %s %s = %s\n\nFor more complex math problems, I can help you break them down into steps. What specific area of math are you working on?",
		m[1], m[2], m[3], Evaluate(m[1], m[2], m[3]))
}

// Evaluate computes "a op b" for non-negative decimal integers a and b.
// Sums, differences, products and whole quotients are exact at any size.
// Fractional quotients are printed as the shortest decimal that round-trips
// through float64. Division by zero yields "undefined (division by zero)".
func Evaluate(a, op, b string) string {
	x, ok := new(big.Int).SetString(a, 10)
	if !ok {
		return "undefined"
	}
	y, ok := new(big.Int).SetString(b, 10)
	if !ok {
		return "undefined"
	}

	switch op {
	case "+":
		return new(big.Int).Add(x, y).String()
	case "-":
		return new(big.Int).Sub(x, y).String()
	case "*":
		return new(big.Int).Mul(x, y).String()
	case "/":
		if y.Sign() == 0 {
			return "undefined (division by zero)"
		}
		q, rem := new(big.Int).QuoRem(x, y, new(big.Int))
		if rem.Sign() == 0 {
			return q.String()
		}
		f, _ := new(big.Rat).SetFrac(x, y).Float64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "undefined"
}

func scienceResponse(lower string) string {
	switch {
	case strings.Contains(lower, "physics"):
		return physicsResponse
	case strings.Contains(lower, "chemistry"):
		return chemistryResponse
	case strings.Contains(lower, "biology"):
		return biologyResponse
	}
	return scienceMenu
}

const mathMenu = `I'd love to help you with math! Here are some ways I can assist:

• **Algebra**: Solving equations, working with variables
• **Geometry**: Area, perimeter, volume calculations
• **Arithmetic**: Basic operations and word problems
• **Fractions**: Adding, subtracting, multiplying, dividing
• **Percentages**: Converting and calculating percentages

Please share your specific math problem, and I'll walk you through it step by step!`

const physicsResponse = `Physics is fascinating! I can help you understand:

• **Motion**: Speed, velocity, acceleration
• **Forces**: Newton's laws, friction, gravity
• **Energy**: Kinetic, potential, conservation
• **Waves**: Sound, light, electromagnetic spectrum
• **Electricity**: Circuits, current, voltage

What specific physics topic would you like to explore?`

const chemistryResponse = `Chemistry is all about understanding matter! I can help with:

• **Atoms & Elements**: Periodic table, atomic structure
• **Chemical Bonds**: Ionic, covalent, metallic
• **Reactions**: Balancing equations, types of reactions
• **Solutions**: Concentration, pH, acids and bases
• **Organic Chemistry**: Carbon compounds, functional groups

What chemistry concept are you studying?`

const biologyResponse = `Biology is the study of life! I can assist with:

• **Cell Biology**: Structure, organelles, processes
• **Genetics**: DNA, inheritance, mutations
• **Evolution**: Natural selection, adaptation
• **Ecology**: Ecosystems, food chains, biodiversity
• **Human Body**: Systems, organs, functions

Which area of biology interests you most?`

const scienceMenu = `Science is amazing! I can help you with:

• **Physics**: Motion, forces, energy, waves
• **Chemistry**: Atoms, reactions, solutions
• **Biology**: Cells, genetics, ecosystems
• **Earth Science**: Weather, geology, astronomy

What scientific concept would you like to explore?`

const writingResponse = `I'm here to help improve your writing! Here's how I can assist:

**Essay Writing:**
• Structure: Introduction, body paragraphs, conclusion
• Thesis statements and topic sentences
• Evidence and examples
• Transitions between ideas

**Grammar & Style:**
• Sentence structure and variety
• Punctuation and capitalization
• Word choice and vocabulary
• Avoiding common errors

**Writing Process:**
• Brainstorming and outlining
• Drafting and revising
• Proofreading techniques
• Citation and references

What type of writing are you working on? Share your draft or specific questions!`

const historyResponse = `History helps us understand the world! I can help you with:

**World History:**
• Ancient civilizations (Egypt, Greece, Rome)
• Medieval period and Renaissance
• Age of Exploration and colonization
• Industrial Revolution
• World Wars and modern era

**Study Techniques:**
• Creating timelines
• Understanding cause and effect
• Analyzing primary sources
• Making connections between events
• Essay writing for history

What historical period or event are you studying?`

const studyResponse = `Great question about studying! Here are proven techniques:

**Effective Study Methods:**
• **Active Recall**: Test yourself without looking at notes
• **Spaced Repetition**: Review material at increasing intervals
• **Pomodoro Technique**: 25-minute focused study sessions
• **Mind Maps**: Visual organization of information
• **Practice Testing**: Simulate exam conditions

**Study Schedule Tips:**
• Break large topics into smaller chunks
• Mix different subjects (interleaving)
• Study during your peak energy hours
• Take regular breaks
• Get enough sleep

What subject are you preparing for? I can create a specific study plan!`

const homeworkResponse = `I'm here to help with your homework! Here's my approach:

**How I Help:**
• Break down complex problems into steps
• Explain concepts clearly
• Provide examples and practice
• Guide you to the answer (not just give it)
• Help you understand the "why" behind solutions

**What You Can Share:**
• The specific question or problem
• What subject it's for
• What part you're stuck on
• Any work you've already done

**My Goal:**
Help you learn and understand, not just complete the assignment!

What homework question can I help you with today?`

const generalResponse = `Hello! I'm EduAssist-AI, your educational companion. I'm designed to help you succeed academically!

**I can help you with:**
📚 **Homework**: Step-by-step problem solving
📝 **Writing**: Essays, grammar, structure
🧮 **Math**: From basic arithmetic to advanced topics
🔬 **Science**: Physics, chemistry, biology
📖 **History**: Events, analysis, essay writing
📊 **Study Skills**: Effective techniques and planning

**How to get the best help:**
• Be specific about what you're working on
• Share the exact question or topic
• Let me know your grade level
• Tell me what part is confusing

What would you like to learn about today?`
