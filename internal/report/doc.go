// Package report renders batch summaries and crawl history.
//
// Two formats are available:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: Markdown with tables and a mermaid chart, for sharing
//
// Writers implement the Writer interface and can be combined with
// NewMultiWriter to write the same report to several destinations.
package report
