package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/pipeline"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown.
//
// Design decision: documents are built with nao1215/markdown so tables,
// alerts and the mermaid chart are generated rather than concatenated.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteSummary writes the batch summary.
func (w *MarkdownWriter) WriteSummary(s *pipeline.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Leadcrawl Batch Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Companies"},
		Rows: [][]string{
			{"Completed", strconv.Itoa(s.Completed)},
			{"Skipped (already done)", strconv.Itoa(s.Skipped)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Aborted", strconv.Itoa(s.Aborted)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		writeOutcomeChart(md, s)
	}

	switch {
	case s.Aborted > 0:
		md.Warningf("The batch was interrupted. %d company(s) will be crawled again on the next run.", s.Aborted)
	case s.Failed > 0:
		md.Importantf("%d company(s) failed and were not marked done.", s.Failed)
	default:
		md.Tip("Every pending company was crawled.")
	}
	md.PlainText("")

	if len(s.Results) > 0 {
		md.H2("Companies")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Company", "Domain", "Status", "Pages", "Emails", "On domain", "Phones", "Stop"},
			Rows:   summaryRows(s),
		})
		md.PlainText("")
	}

	writeFooter(md)
	return len(md.String()), md.Build()
}

func summaryRows(s *pipeline.Summary) [][]string {
	rows := make([][]string, 0, len(s.Results))
	for _, r := range s.Results {
		row := []string{r.Company.Name, "-", r.Status.String(), "-", "-", "-", "-", "-"}
		if res := r.Result; res != nil {
			row[1] = res.BaseDomain
			row[3] = strconv.Itoa(res.PagesScanned)
			row[4] = strconv.Itoa(len(res.Emails))
			row[5] = strconv.Itoa(res.DomainEmails)
			row[6] = strconv.Itoa(len(res.Phones))
			row[7] = res.StopReason.String()
		} else if r.Err != nil {
			row[7] = truncateString(r.Err.Error(), 60)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeOutcomeChart(md *markdown.Markdown, s *pipeline.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Batch Outcome"),
		piechart.WithShowData(true),
	)
	for _, part := range []struct {
		label string
		n     int
	}{
		{"Completed", s.Completed},
		{"Skipped", s.Skipped},
		{"Failed", s.Failed},
		{"Aborted", s.Aborted},
	} {
		if part.n > 0 {
			chart.LabelAndIntValue(part.label, uint64(part.n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// WriteHistory writes the company overview or one company's history.
func (w *MarkdownWriter) WriteHistory(h *History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	if h.Company == "" {
		md.H1("Crawled Companies")
		md.PlainText("")
		if len(h.Overview) == 0 {
			md.Note("No crawls recorded yet.")
		} else {
			rows := make([][]string, len(h.Overview))
			for i, c := range h.Overview {
				rows[i] = []string{
					c.Company, c.BaseDomain, strconv.Itoa(c.Crawls),
					strconv.Itoa(c.Emails), strconv.Itoa(c.Phones), formatTime(c.LastCrawlAt),
				}
			}
			md.Table(markdown.TableSet{
				Header: []string{"Company", "Domain", "Crawls", "Emails", "Phones", "Last crawl"},
				Rows:   rows,
			})
		}
		md.PlainText("")
		writeFooter(md)
		return len(md.String()), md.Build()
	}

	md.H1("History: " + h.Company)
	md.PlainText("")

	md.H2("Crawls")
	md.PlainText("")
	if len(h.Crawls) == 0 {
		md.PlainText("No crawls recorded.")
	} else {
		rows := make([][]string, len(h.Crawls))
		for i, c := range h.Crawls {
			rows[i] = []string{
				formatTime(c.FinishedAt), strconv.Itoa(c.PagesScanned), strconv.Itoa(c.Depth),
				strconv.Itoa(c.Emails), strconv.Itoa(c.DomainEmails), strconv.Itoa(c.Phones),
				c.StopReason, c.Duration.Round(time.Millisecond).String(),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Finished", "Pages", "Depth", "Emails", "On domain", "Phones", "Stop", "Duration"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	for _, kind := range []model.ContactKind{model.KindEmail, model.KindPhone} {
		records := contactsByKind(h.Contacts, kind)
		if kind == model.KindEmail {
			md.H2("Emails")
		} else {
			md.H2("Phones")
		}
		md.PlainText("")
		if len(records) == 0 {
			md.PlainText("None.")
			md.PlainText("")
			continue
		}
		rows := make([][]string, len(records))
		for i, r := range records {
			rows[i] = []string{"`" + r.Value + "`", r.Page, formatTime(r.FoundAt)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Value", "Page", "Found"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	writeFooter(md)
	return len(md.String()), md.Build()
}

func writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [leadcrawl](https://github.com/nao1215/leadcrawl)*")
}
