package report

import (
	"io"
	"time"

	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/pipeline"
)

// Writer renders reports to an output.
//
// Design decision: the interface speaks in reports rather than bytes so the
// same summary can go to the terminal as text and to a file as Markdown.
type Writer interface {
	// WriteSummary renders the outcome of a batch run.
	WriteSummary(s *pipeline.Summary) (int, error)

	// WriteHistory renders stored crawl history.
	WriteHistory(h *History) (int, error)
}

// History is the stored data shown by the history command. When Company is
// empty only Overview is filled; otherwise Crawls and Contacts belong to
// that company.
type History struct {
	Overview []database.CompanyOverview
	Company  string
	Crawls   []database.CrawlSummary
	Contacts []model.ContactRecord
}

// MultiWriter writes every report to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all writers in order.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteSummary writes s to every writer and stops at the first error.
func (m *MultiWriter) WriteSummary(s *pipeline.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(s)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory writes h to every writer and stops at the first error.
func (m *MultiWriter) WriteHistory(h *History) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(h)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

const dateLayout = "2006-01-02 15:04:05"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func contactsByKind(records []model.ContactRecord, kind model.ContactKind) []model.ContactRecord {
	var out []model.ContactRecord
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// truncateString shortens s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
