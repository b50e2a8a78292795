package dataset

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"clinical-redact-go/internal/types"
)

// XLSXReader streams rows of the first sheet of a workbook.
type XLSXReader struct {
	f      *excelize.File
	rows   *excelize.Rows
	header []string
	done   bool
}

func OpenXLSX(path string) (*XLSXReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read rows: %w", err)
	}
	x := &XLSXReader{f: f, rows: rows}
	if !rows.Next() {
		if err := rows.Error(); err != nil {
			x.Close()
			return nil, fmt.Errorf("read header: %w", err)
		}
		x.header, x.done = defaultHeader(), true
		return x, nil
	}
	header, err := rows.Columns()
	if err != nil {
		x.Close()
		return nil, fmt.Errorf("read header: %w", err)
	}
	x.header = cleanHeader(header)
	return x, nil
}

func (x *XLSXReader) Header() []string { return x.header }

func (x *XLSXReader) Next() (types.Record, error) {
	if x.done {
		return types.Record{}, io.EOF
	}
	if !x.rows.Next() {
		x.done = true
		if err := x.rows.Error(); err != nil {
			return types.Record{}, fmt.Errorf("read row: %w", err)
		}
		return types.Record{}, io.EOF
	}
	row, err := x.rows.Columns()
	if err != nil {
		return types.Record{}, fmt.Errorf("read row: %w", err)
	}
	return types.NewRecord(x.header, row), nil
}

func (x *XLSXReader) Close() error {
	var err error
	if x.rows != nil {
		err = x.rows.Close()
	}
	return errors.Join(err, x.f.Close())
}

// XLSXWriter streams rows into Sheet1 of a new workbook. The file is written
// to disk on Close; excelize keeps rows in a temp file until then.
type XLSXWriter struct {
	path string
	f    *excelize.File
	sw   *excelize.StreamWriter
	row  int
}

const xlsxSheet = "Sheet1"

func CreateXLSX(path string) (*XLSXWriter, error) {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stream writer: %w", err)
	}
	return &XLSXWriter{path: path, f: f, sw: sw}, nil
}

func (x *XLSXWriter) WriteHeader(header []string) error {
	return x.setRow(header)
}

func (x *XLSXWriter) Write(rec types.Record) error {
	return x.setRow(rec.Values)
}

func (x *XLSXWriter) setRow(values []string) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := x.sw.SetRow(cell, cells); err != nil {
		return fmt.Errorf("write row %d: %w", x.row, err)
	}
	return nil
}

// Flush is a no-op: rows only reach the workbook file on Close.
func (x *XLSXWriter) Flush() error { return nil }

func (x *XLSXWriter) Close() error {
	if err := x.sw.Flush(); err != nil {
		x.f.Close()
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := x.f.SaveAs(x.path); err != nil {
		x.f.Close()
		return fmt.Errorf("save %s: %w", x.path, err)
	}
	return x.f.Close()
}
