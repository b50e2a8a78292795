// Package pipeline drives the per-record redaction loop: segment the
// conversation, rewrite its head, merge, write. Records are handled one at a
// time, in order, and an oracle failure only ever affects its own record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"clinical-redact-go/internal/config"
	"clinical-redact-go/internal/dialogue"
	"clinical-redact-go/internal/logger"
	"clinical-redact-go/internal/metrics"
	"clinical-redact-go/internal/rewriter"
	"clinical-redact-go/internal/types"
)

// NoLimit processes every record of the source.
const NoLimit = -1

// Rewriter is the head-rewriting capability the driver depends on.
type Rewriter interface {
	Rewrite(ctx context.Context, head string) rewriter.Outcome
}

// Source yields records in order; Next returns io.EOF when exhausted.
type Source interface {
	Header() []string
	Next() (types.Record, error)
}

// Sink receives the header, then each finished record.
type Sink interface {
	WriteHeader(header []string) error
	Write(rec types.Record) error
	Flush() error
}

// Stats summarizes a run.
type Stats struct {
	Processed int
	Rewritten int
	Failed    int
	Duration  time.Duration
}

type Driver struct {
	rw      Rewriter
	log     *logger.Logger
	metrics *metrics.Metrics
	limit   int
	column  string
}

type Option func(*Driver)

func WithLogger(l *logger.Logger) Option { return func(d *Driver) { d.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Driver) { d.metrics = m } }

// WithLimit caps the number of records read and written. Negative means no
// cap; zero writes the header only.
func WithLimit(n int) Option { return func(d *Driver) { d.limit = n } }

// WithColumn names the free-text column to rewrite.
func WithColumn(name string) Option { return func(d *Driver) { d.column = name } }

func New(rw Rewriter, opts ...Option) *Driver {
	d := &Driver{
		rw:     rw,
		limit:  NoLimit,
		column: types.ConversationColumn,
	}
	for _, o := range opts {
		o(d)
	}
	if d.log == nil {
		d.log = logger.New()
	}
	d.log = d.log.WithComponent("pipeline")
	return d
}

// Run streams src into dst. Only a missing column, a stream error or ctx
// cancellation stop it early; records completed before that are flushed.
func (d *Driver) Run(ctx context.Context, src Source, dst Sink) (Stats, error) {
	start := time.Now()
	var stats Stats

	header := src.Header()
	if err := CheckColumn(header, d.column); err != nil {
		return stats, err
	}
	if err := dst.WriteHeader(header); err != nil {
		return stats, err
	}
	if err := dst.Flush(); err != nil {
		return stats, fmt.Errorf("flush header: %w", err)
	}

	for idx := 1; d.limit < 0 || idx <= d.limit; idx++ {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("row %d: %w", idx, err)
		}

		if n := rec.Extra(); n > 0 {
			d.log.WithFields(map[string]interface{}{
				"row":    idx,
				"extra":  n,
				"header": len(header),
			}).Warn("row wider than header; extra values kept")
		}

		out, failed := d.transform(ctx, idx, rec)

		if err := dst.Write(out); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("row %d: %w", idx, err)
		}
		if err := dst.Flush(); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("row %d: flush: %w", idx, err)
		}

		stats.Processed++
		if failed {
			stats.Failed++
		} else {
			stats.Rewritten++
		}
		if d.metrics != nil {
			d.metrics.RecordWritten()
		}
		d.log.WithField("row", idx).Info("processed")
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// CheckColumn returns a SetupError when column is not part of header.
func CheckColumn(header []string, column string) error {
	if types.Index(header, column) < 0 {
		return config.Setup(fmt.Errorf("%w: want %q, header is %q", config.ErrMissingColumn, column, header))
	}
	return nil
}

// transform runs one record through segment, rewrite and merge. A failed
// rewrite keeps the original head.
func (d *Driver) transform(ctx context.Context, idx int, rec types.Record) (types.Record, bool) {
	head, tail := dialogue.Segment(rec.Get(d.column))

	began := time.Now()
	outcome := d.rw.Rewrite(ctx, head)
	if d.metrics != nil {
		d.metrics.ObserveRewrite(time.Since(began), outcome.Failed())
	}

	rewritten := outcome.Text
	if outcome.Failed() {
		d.log.WithError(outcome.Err).WithField("row", idx).Warn("rewrite failed")
		rewritten = head
	}
	return rec.With(d.column, dialogue.Merge(rewritten, tail)), outcome.Failed()
}
