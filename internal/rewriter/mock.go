package rewriter

import (
	"context"
	"regexp"
)

const placeholder = "xxx"

var (
	titledNamePattern = regexp.MustCompile(`\b(Mr|Mrs|Ms|Miss|Dr)\.?[ \t]+[A-Z][a-zA-Z'\-]+(?:[ \t]+[A-Z][a-zA-Z'\-]+)?`)
	greetingPattern   = regexp.MustCompile(`\b(Hi|Hello|Dear|Good (?:morning|afternoon|evening))(,?[ \t]+)([A-Z][a-zA-Z'\-]+(?:[ \t]+[A-Z][a-zA-Z'\-]+)?)`)
	emailPattern      = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	datePattern       = regexp.MustCompile(`\b(?:\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}-\d{2}-\d{2}|(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4})\b`)
	addressPattern    = regexp.MustCompile(`\b\d{1,5}\s+(?:[A-Z][a-z]+\s){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Boulevard|Blvd|Drive|Dr)\b\.?`)
)

// Mock is a deterministic offline oracle. It masks names that follow a title
// or greeting, plus emails, phone numbers, dates and street addresses.
type Mock struct{}

func (Mock) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return MaskPII(req.Input), nil
}

// MaskPII replaces the identifying patterns Mock knows about with "xxx".
func MaskPII(text string) string {
	out := emailPattern.ReplaceAllString(text, placeholder)
	out = datePattern.ReplaceAllString(out, placeholder)
	out = addressPattern.ReplaceAllString(out, placeholder)
	out = phonePattern.ReplaceAllString(out, placeholder)
	out = titledNamePattern.ReplaceAllString(out, "$1. "+placeholder)
	out = greetingPattern.ReplaceAllStringFunc(out, maskGreeting)
	return out
}

var titles = map[string]bool{"Mr": true, "Mrs": true, "Ms": true, "Miss": true, "Dr": true}

// maskGreeting keeps titled names intact; those were masked already.
func maskGreeting(match string) string {
	m := greetingPattern.FindStringSubmatch(match)
	if m == nil || titles[m[3]] {
		return match
	}
	return m[1] + m[2] + placeholder
}
