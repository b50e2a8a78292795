package types

import "strings"

// ConversationColumn is the mandatory free-text column of the corpus.
const ConversationColumn = "conversation"

// Record is one row of a header-described table. Values are in header order
// and the header slice is shared between rows of the same stream.
type Record struct {
	Header []string
	Values []string
}

// NewRecord pads short rows to the header width. Values past the header are
// kept so they reach the output; Extra reports how many there are.
func NewRecord(header, values []string) Record {
	row := make([]string, max(len(header), len(values)))
	copy(row, values)
	return Record{Header: header, Values: row}
}

// Extra is the number of values with no header column.
func (r Record) Extra() int {
	return max(len(r.Values)-len(r.Header), 0)
}

// Index returns the position of column name, matched trimmed and
// case-insensitive, or -1.
func Index(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// Get returns the value of column name, or "" when the column is absent.
func (r Record) Get(name string) string {
	i := Index(r.Header, name)
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// With returns a copy of r with column name set to value. Other columns are
// carried over untouched.
func (r Record) With(name, value string) Record {
	out := Record{Header: r.Header, Values: make([]string, len(r.Values))}
	copy(out.Values, r.Values)
	if i := Index(r.Header, name); i >= 0 && i < len(out.Values) {
		out.Values[i] = value
	}
	return out
}
