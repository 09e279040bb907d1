package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/leadcrawl/internal/crawler"
	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/pipeline"
)

func sampleSummary() *pipeline.Summary {
	return &pipeline.Summary{
		Total:     4,
		Skipped:   1,
		Completed: 1,
		Failed:    1,
		Aborted:   1,
		Elapsed:   1500 * time.Millisecond,
		Results: []pipeline.CompanyResult{
			{
				Company: model.NewCompany("Acme BV", "acme.nl"),
				Status:  pipeline.StatusCompleted,
				Result: &crawler.Result{
					BaseDomain:   "acme.nl",
					PagesScanned: 7,
					Emails:       []string{"info@acme.nl", "sales@acme.nl"},
					Phones:       []string{"010 1234567"},
					DomainEmails: 2,
					StopReason:   crawler.StopMaxDepth,
				},
			},
			{
				Company: model.NewCompany("Broken BV", "broken.nl"),
				Status:  pipeline.StatusFailed,
				Err:     errors.New("invalid seed url"),
			},
			{
				Company: model.NewCompany("Slow BV", "slow.nl"),
				Status:  pipeline.StatusAborted,
				Err:     crawler.ErrCrawlAborted,
			},
		},
	}
}

func sampleHistory() *History {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &History{
		Company: "Acme BV",
		Crawls: []database.CrawlSummary{
			{Company: "Acme BV", PagesScanned: 7, Depth: 2, Emails: 2, DomainEmails: 2, Phones: 1, StopReason: "max depth", Duration: time.Second, FinishedAt: at},
		},
		Contacts: []model.ContactRecord{
			{Company: "Acme BV", Page: "https://acme.nl/contact", Value: "info@acme.nl", Kind: model.KindEmail, FoundAt: at},
			{Company: "Acme BV", Page: "https://acme.nl/contact", Value: "010 1234567", Kind: model.KindPhone, FoundAt: at},
		},
	}
}

func TestSimpleWriter_WriteSummary(t *testing.T) {
	t.Parallel()

	t.Run("default lists only failures", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).WriteSummary(sampleSummary())
		if err != nil {
			t.Fatalf("WriteSummary() error = %v", err)
		}
		if n != buf.Len() {
			t.Errorf("n = %d, buffer holds %d bytes", n, buf.Len())
		}

		out := buf.String()
		for _, want := range []string{"LEADCRAWL BATCH SUMMARY", "Companies:  4", "Skipped:    1", "Emails:     2", "[FAILED]  Broken BV: invalid seed url"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "[OK]") {
			t.Error("completed companies listed without verbose")
		}
	})

	t.Run("verbose lists every company", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).WriteSummary(sampleSummary()); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"[OK]      Acme BV (acme.nl): 7 pages, 2 emails (2 on domain), 1 phones, max depth", "[ABORTED] Slow BV"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})
}

func TestSimpleWriter_WriteHistory(t *testing.T) {
	t.Parallel()

	t.Run("company", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHistory(sampleHistory()); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"HISTORY: Acme BV", "pages=7", "stop=max depth", "EMAILS", "info@acme.nl", "PHONES", "010 1234567"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("empty overview", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHistory(&History{}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No crawls recorded yet.") {
			t.Errorf("output = %s", buf.String())
		}
	})

	t.Run("overview", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := &History{Overview: []database.CompanyOverview{{Company: "Acme BV", BaseDomain: "acme.nl", Crawls: 2, Emails: 3, Phones: 1}}}
		if _, err := NewSimpleWriter(&buf).WriteHistory(h); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "crawls=2 emails=3 phones=1 last=-") {
			t.Errorf("output = %s", buf.String())
		}
	})
}

func TestMarkdownWriter_WriteSummary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).WriteSummary(sampleSummary()); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Leadcrawl Batch Summary", "```mermaid", "pie", "Acme BV", "acme.nl", "max depth", "invalid seed url", "interrupted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownWriter_WriteHistory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).WriteHistory(sampleHistory()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"# History: Acme BV", "## Crawls", "## Emails", "`info@acme.nl`", "## Phones", "https://acme.nl/contact"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, md bytes.Buffer
	w := NewMultiWriter(NewSimpleWriter(&text), NewMarkdownWriter(&md))

	if _, err := w.WriteSummary(sampleSummary()); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteHistory(sampleHistory()); err != nil {
		t.Fatal(err)
	}
	if text.Len() == 0 || md.Len() == 0 {
		t.Errorf("text=%d md=%d bytes, want both non-empty", text.Len(), md.Len())
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "this is too long", max: 10, want: "this is..."},
		{in: "abcdef", max: 3, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
