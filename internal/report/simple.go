package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/pipeline"
)

const ruleWidth = 70

// SimpleWriter outputs plain text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose lists every company instead of only the failed ones.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every company in the summary.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSummary writes the batch summary.
func (w *SimpleWriter) WriteSummary(s *pipeline.Summary) (int, error) {
	var sb strings.Builder

	writeBanner(&sb, "LEADCRAWL BATCH SUMMARY")
	fmt.Fprintf(&sb, "  Companies:  %d\n", s.Total)
	fmt.Fprintf(&sb, "  Completed:  %d\n", s.Completed)
	fmt.Fprintf(&sb, "  Skipped:    %d (already done)\n", s.Skipped)
	fmt.Fprintf(&sb, "  Failed:     %d\n", s.Failed)
	fmt.Fprintf(&sb, "  Aborted:    %d\n", s.Aborted)
	fmt.Fprintf(&sb, "  Elapsed:    %s\n", s.Elapsed.Round(time.Millisecond))

	var emails, phones, pages int
	for _, r := range s.Results {
		if r.Result == nil {
			continue
		}
		emails += len(r.Result.Emails)
		phones += len(r.Result.Phones)
		pages += r.Result.PagesScanned
	}
	fmt.Fprintf(&sb, "  Pages:      %d\n", pages)
	fmt.Fprintf(&sb, "  Emails:     %d\n", emails)
	fmt.Fprintf(&sb, "  Phones:     %d\n", phones)

	if rows := w.summaryRows(s); len(rows) > 0 {
		sb.WriteString("\n")
		writeSection(&sb, "COMPANIES")
		for _, row := range rows {
			sb.WriteString(row)
		}
	}

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) summaryRows(s *pipeline.Summary) []string {
	var rows []string
	for _, r := range s.Results {
		switch {
		case r.Status == pipeline.StatusCompleted && w.verbose:
			res := r.Result
			rows = append(rows, fmt.Sprintf("  [OK]      %s (%s): %d pages, %d emails (%d on domain), %d phones, %s\n",
				r.Company.Name, res.BaseDomain, res.PagesScanned, len(res.Emails), res.DomainEmails, len(res.Phones), res.StopReason))
		case r.Status == pipeline.StatusFailed:
			rows = append(rows, fmt.Sprintf("  [FAILED]  %s: %v\n", r.Company.Name, r.Err))
		case r.Status == pipeline.StatusAborted && w.verbose:
			rows = append(rows, fmt.Sprintf("  [ABORTED] %s\n", r.Company.Name))
		}
	}
	return rows
}

// WriteHistory writes the company overview or one company's history.
func (w *SimpleWriter) WriteHistory(h *History) (int, error) {
	var sb strings.Builder

	if h.Company == "" {
		writeBanner(&sb, "CRAWLED COMPANIES")
		if len(h.Overview) == 0 {
			sb.WriteString("  No crawls recorded yet.\n")
		}
		for _, c := range h.Overview {
			fmt.Fprintf(&sb, "  %-30s %-25s crawls=%d emails=%d phones=%d last=%s\n",
				truncateString(c.Company, 30), truncateString(c.BaseDomain, 25),
				c.Crawls, c.Emails, c.Phones, formatTime(c.LastCrawlAt))
		}
		sb.WriteString(strings.Repeat("=", ruleWidth))
		sb.WriteString("\n")
		return w.output.Write([]byte(sb.String()))
	}

	writeBanner(&sb, "HISTORY: "+h.Company)

	writeSection(&sb, "CRAWLS")
	if len(h.Crawls) == 0 {
		sb.WriteString("  No crawls recorded.\n")
	}
	for _, c := range h.Crawls {
		fmt.Fprintf(&sb, "  %s  pages=%d depth=%d emails=%d (%d on domain) phones=%d stop=%s took=%s\n",
			formatTime(c.FinishedAt), c.PagesScanned, c.Depth, c.Emails, c.DomainEmails, c.Phones,
			c.StopReason, c.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")

	for _, kind := range []model.ContactKind{model.KindEmail, model.KindPhone} {
		records := contactsByKind(h.Contacts, kind)
		writeSection(&sb, strings.ToUpper(kind.String())+"S")
		if len(records) == 0 {
			sb.WriteString("  None.\n")
		}
		for _, r := range records {
			fmt.Fprintf(&sb, "  %-40s %s\n", r.Value, r.Page)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	return w.output.Write([]byte(sb.String()))
}

func writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("  ")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", len(title)))
	sb.WriteString("\n")
}
