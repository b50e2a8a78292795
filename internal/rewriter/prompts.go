package rewriter

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Prompt is the fixed instruction sent with every head. It is policy, not
// logic: callers pick a variant or load their own system text.
type Prompt struct {
	Name        string
	System      string
	Directive   string
	Temperature float64
	MaxTokens   int
}

// Request builds the oracle request for head.
func (p Prompt) Request(head string) Request {
	user := "Original first two turns:\n" + head + "\n\n" + p.Directive
	return Request{
		System:      p.System,
		User:        user,
		Input:       head,
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}
}

const anonymizeSystem = `You are a medical text anonymizer.
Rewrite ONLY the first two turns (Doctor and Patient) of a clinical dialogue.
Replace all personal information such as names, addresses, birthdates, and hospitals with 'xxx'.
Keep the medical complaint and structure unchanged.
Keep the 'Doctor:' and 'Patient:' labels.
Do NOT alter anything beyond the first two turns.
Output only the two rewritten turns.
`

const personaSystem = `You rewrite ONLY the first two turns of a clinical doctor-patient dialogue.
Output must be in ENGLISH only.

STRICT REQUIREMENTS:
1. Doctor's turn MUST include:
   - Greeting with patient's name (Mr./Ms./Mrs. [LastName])
   - Doctor's self-introduction
   - Verification of AT LEAST 2 items from: patient name, address, birthdate
   - MUST include birthdate/DOB in verification
2. Patient's turn MUST:
   - Confirm the information (brief acknowledgment)
   - State ONLY the original complaint - no additions, no modifications
3. Do NOT change or add anything beyond these two turns
4. Use completely fictional names and details

FORMAT STRUCTURE:
Doctor: [Greeting], [Patient Title+LastName]. [Doctor introduction]. [Verify 2-3 details including birthdate]
Patient: [Brief confirmation]. [Original complaint exactly as provided]

VARIATION ELEMENTS:
Greetings: Good morning/afternoon/Hello
Doctor intros: I'm Dr./My name is Dr./I'll be your doctor today, Dr.
Verification phrases: Let me confirm/Can you verify/Just to verify/I have here that
Birthdate formats: birthdate/date of birth/DOB + various date formats
Patient confirmations: Yes/That's correct/That's right/Yes, that's me
Complaint transitions: So/Well/Actually/I'm here because/The reason I'm here is

CORRECT EXAMPLES:
Example 1:
Doctor: Good morning, Ms. Anderson. I'm Dr. Mitchell. Let me confirm - you're Jennifer Anderson, born April 10, 1985, living at 456 Pine Street, Boston, Massachusetts?
Patient: Yes, that's correct. I'm here because I'm experiencing discomfort in my neck and lower back.

Example 2:
Doctor: Hello, Mr. Davis. My name is Dr. Lee. Can you verify your date of birth is June 23, 1972, and you reside in Portland, Oregon?
Patient: That's right. Well, I've been having trouble with my neck and lower back.

CRITICAL RULES:
- MUST verify birthdate in every dialogue
- MUST verify at least one other detail (name or address)
- NEVER add extra text after the patient's complaint
- NEVER use any language other than English
- Keep patient's original complaint EXACTLY as is
`

var variants = map[string]Prompt{
	"anonymize": {
		Name:        "anonymize",
		System:      anonymizeSystem,
		Directive:   "Redact all sensitive information by replacing it with 'xxx'. Output ONLY the two redacted turns.",
		Temperature: 0.3,
		MaxTokens:   200,
	},
	"persona": {
		Name:        "persona",
		System:      personaSystem,
		Directive:   "Rewrite ONLY these two turns in the style above. Output ONLY the two rewritten turns.",
		Temperature: 0.6,
		MaxTokens:   300,
	},
}

// DefaultVariant is used when no prompt variant is configured.
const DefaultVariant = "anonymize"

// Variants lists the built-in prompt names.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupPrompt returns a built-in prompt by name.
func LookupPrompt(name string) (Prompt, error) {
	if name == "" {
		name = DefaultVariant
	}
	p, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt variant %q (want one of %s)", name, strings.Join(Variants(), ", "))
	}
	return p, nil
}

// WithSystemFile replaces the system instruction with the contents of path.
func (p Prompt) WithSystemFile(path string) (Prompt, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Prompt{}, fmt.Errorf("read prompt file: %w", err)
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return Prompt{}, fmt.Errorf("prompt file %s is empty", path)
	}
	p.System = text + "\n"
	return p, nil
}

// WithSampling overrides the variant's sampling parameters; zero values keep
// the variant defaults.
func (p Prompt) WithSampling(temperature float64, maxTokens int) Prompt {
	if temperature > 0 {
		p.Temperature = temperature
	}
	if maxTokens > 0 {
		p.MaxTokens = maxTokens
	}
	return p
}
