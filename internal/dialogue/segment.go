// Package dialogue splits a clinical dialogue into the turns that get
// rewritten and the turns that are carried through, and joins them back.
package dialogue

import (
	"strings"
	"unicode/utf8"
)

// HeadTurns is the number of leading non-blank lines that form the head.
const HeadTurns = 2

// Segment splits text into its head (first two non-blank lines) and tail
// (every later non-blank line). Blank lines are dropped everywhere, so the
// result is a normalized form of the input, not a byte-exact split.
//
// With fewer than two non-blank lines the head is the whole trimmed text and
// the tail is empty.
func Segment(text string) (head, tail string) {
	lines := nonBlankLines(text)
	if len(lines) < HeadTurns {
		return strings.TrimSpace(text), ""
	}
	head = strings.TrimSpace(strings.Join(lines[:HeadTurns], "\n"))
	tail = strings.TrimSpace(strings.Join(lines[HeadTurns:], "\n"))
	return head, tail
}

// Normalize returns text as the pipeline emits it when the head is left
// unchanged.
func Normalize(text string) string {
	return Merge(Segment(text))
}

// SplitLines breaks text at every line boundary: \n, \r\n, \r, \v, \f,
// the file/group/record separators \x1c-\x1e, NEL, and U+2028/U+2029. A
// trailing boundary does not start another line.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i, r := range text {
		if !isLineBreak(r) {
			continue
		}
		if r == '\n' && i > 0 && text[i-1] == '\r' {
			start = i + 1
			continue
		}
		lines = append(lines, text[start:i])
		start = i + utf8.RuneLen(r)
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func nonBlankLines(text string) []string {
	var out []string
	for _, l := range SplitLines(text) {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
