package dataset

import (
	"bufio"
	"io"
	"strings"
)

// rowScanner splits RFC 4180 CSV into rows and keeps the bytes of quoted
// fields exactly as written. encoding/csv folds \r\n inside quoted fields to
// \n, which would change passthrough columns on the way through.
//
// Quote handling is lazy: a quote inside an unquoted field, or text after a
// closing quote, is kept literally. Entirely empty lines are skipped.
type rowScanner struct {
	r *bufio.Reader
}

func newRowScanner(src io.Reader) *rowScanner {
	return &rowScanner{r: bufio.NewReader(src)}
}

// Row returns the next row, or io.EOF once the input is exhausted.
func (s *rowScanner) Row() ([]string, error) {
	var (
		row      []string
		field    strings.Builder
		quoted   bool
		inQuotes bool
	)
	empty := func() bool { return len(row) == 0 && field.Len() == 0 && !quoted }

	for {
		c, err := s.r.ReadByte()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			if empty() {
				return nil, io.EOF
			}
			return append(row, field.String()), nil
		}

		switch {
		case inQuotes:
			if c != '"' {
				field.WriteByte(c)
				continue
			}
			if s.peek('"') {
				s.r.ReadByte()
				field.WriteByte('"')
				continue
			}
			inQuotes = false
		case c == '"' && field.Len() == 0 && !quoted:
			quoted, inQuotes = true, true
		case c == ',':
			row = append(row, field.String())
			field.Reset()
			quoted = false
		case c == '\n' || c == '\r':
			if c == '\r' && s.peek('\n') {
				s.r.ReadByte()
			}
			if empty() {
				continue
			}
			return append(row, field.String()), nil
		default:
			field.WriteByte(c)
		}
	}
}

func (s *rowScanner) peek(want byte) bool {
	b, err := s.r.Peek(1)
	return err == nil && b[0] == want
}
