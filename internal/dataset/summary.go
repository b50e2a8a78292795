package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"clinical-redact-go/internal/dialogue"
	"clinical-redact-go/internal/logger"
	"clinical-redact-go/internal/types"
)

// Summary describes a corpus before any oracle call is spent on it.
//
// HeadOnlyDialogues counts non-empty dialogues with no tail, i.e. at most
// HeadTurns turns, so the whole dialogue goes to the oracle.
// BlankLinesDropped counts the whitespace-only lines segmentation drops; a
// trailing line break does not open another line.
type Summary struct {
	Columns           []string `json:"columns"`
	TotalRecords      int      `json:"total_records"`
	EmptyDialogues    int      `json:"empty_dialogues"`
	HeadOnlyDialogues int      `json:"head_only_dialogues"`
	BlankLinesDropped int      `json:"blank_lines_dropped"`
	AvgTurns          float64  `json:"avg_turns"`
	MaxTurns          int      `json:"max_turns"`
	LongestHeadChars  int      `json:"longest_head_chars"`
}

// Summarize reads r to the end and counts what segmentation will do to each
// dialogue in column. A nil log discards.
func Summarize(r Reader, column string, log *logger.Logger) (Summary, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithComponent("dataset.summary")
	s := Summary{Columns: r.Header()}
	if types.Index(s.Columns, column) < 0 {
		return s, fmt.Errorf("column %q not in header %q", column, s.Columns)
	}

	totalTurns := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return s, err
		}
		s.TotalRecords++

		text := rec.Get(column)
		lines := dialogue.SplitLines(text)
		turns := 0
		for _, l := range lines {
			if strings.TrimSpace(l) != "" {
				turns++
			}
		}
		if turns == 0 {
			s.EmptyDialogues++
			continue
		}
		totalTurns += turns
		if turns > s.MaxTurns {
			s.MaxTurns = turns
		}
		if turns <= dialogue.HeadTurns {
			s.HeadOnlyDialogues++
		}
		s.BlankLinesDropped += len(lines) - turns

		head, _ := dialogue.Segment(text)
		if len(head) > s.LongestHeadChars {
			s.LongestHeadChars = len(head)
		}
	}
	if n := s.TotalRecords - s.EmptyDialogues; n > 0 {
		s.AvgTurns = float64(totalTurns) / float64(n)
	}

	log.WithFields(map[string]interface{}{
		"total_records": s.TotalRecords,
		"empty":         s.EmptyDialogues,
		"head_only":     s.HeadOnlyDialogues,
	}).Debug("dataset summarization complete")
	return s, nil
}
