// Package dataset streams header-described tables in and out, one row at a
// time. CSV is the default format; .xlsx paths go through excelize.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"clinical-redact-go/internal/types"
)

// Reader yields records in file order. Next returns io.EOF once exhausted.
type Reader interface {
	Header() []string
	Next() (types.Record, error)
	Close() error
}

// Open picks a reader by file extension.
func Open(path string) (Reader, error) {
	if isXLSX(path) {
		return OpenXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r, err := NewCSVReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// defaultHeader stands in for a file with no header row at all.
func defaultHeader() []string {
	return []string{types.ConversationColumn}
}

// cleanHeader strips a UTF-8 byte order mark from the first column name.
func cleanHeader(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header
}

// CSVReader reads RFC 4180 CSV. Quoted fields may span lines and keep their
// line breaks byte for byte; rows with too few fields are padded to the
// header width.
type CSVReader struct {
	r      *rowScanner
	header []string
	done   bool
	closer io.Closer
}

func NewCSVReader(src io.Reader) (*CSVReader, error) {
	r := newRowScanner(src)
	header, err := r.Row()
	if errors.Is(err, io.EOF) {
		return &CSVReader{r: r, header: defaultHeader(), done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	return &CSVReader{r: r, header: cleanHeader(header)}, nil
}

func (c *CSVReader) Header() []string { return c.header }

func (c *CSVReader) Next() (types.Record, error) {
	if c.done {
		return types.Record{}, io.EOF
	}
	row, err := c.r.Row()
	if errors.Is(err, io.EOF) {
		c.done = true
		return types.Record{}, io.EOF
	}
	if err != nil {
		return types.Record{}, fmt.Errorf("read row: %w", err)
	}
	return types.NewRecord(c.header, row), nil
}

func (c *CSVReader) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
