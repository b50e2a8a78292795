package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"clinical-redact-go/internal/types"
)

// Writer receives the header once, then records in order.
type Writer interface {
	WriteHeader(header []string) error
	Write(rec types.Record) error
	Flush() error
	Close() error
}

// Create makes the parent directory if needed and picks a writer by file
// extension.
func Create(path string) (Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	if isXLSX(path) {
		return CreateXLSX(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := NewCSVWriter(f)
	w.closer = f
	return w, nil
}

// CSVWriter writes RFC 4180 CSV. Flush pushes buffered rows to the
// underlying writer.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

func NewCSVWriter(dst io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(dst)}
}

func (c *CSVWriter) WriteHeader(header []string) error {
	if err := c.w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (c *CSVWriter) Write(rec types.Record) error {
	if err := c.w.Write(rec.Values); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	return nil
}

func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	err := c.Flush()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
