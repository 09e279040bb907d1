package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/leadcrawl/internal/config"
	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [company]",
		Short: "Show stored crawls and contacts",
		Long: `History reads the history database written by enrich.

Without arguments it lists every crawled company with its number of crawls,
emails and phone numbers. With a company name it shows that company's crawl
summaries and every stored contact.

Examples:
  # List all companies
  leadcrawl history

  # Show one company as Markdown
  leadcrawl history "Acme BV" --markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	markdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	company := ""
	if len(args) == 1 {
		company = args[0]
	}
	return showHistory(commandContext(cmd), dbDir, company, markdown, cmd.OutOrStdout())
}

func showHistory(ctx context.Context, dbDir, company string, markdown bool, out io.Writer) error {
	db, err := database.Open(dbDir, database.Options{})
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintln(out, "No history yet: run 'leadcrawl enrich' first.")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	h := &report.History{Company: company}
	if company == "" {
		if h.Overview, err = db.ListCompanies(ctx); err != nil {
			return fmt.Errorf("failed to list companies: %w", err)
		}
	} else {
		if h.Crawls, err = db.GetCrawlHistory(ctx, company); err != nil {
			return fmt.Errorf("failed to read crawl history: %w", err)
		}
		if h.Contacts, err = db.ListContacts(ctx, company); err != nil {
			return fmt.Errorf("failed to read contacts: %w", err)
		}
	}

	var w report.Writer = report.NewSimpleWriter(out)
	if markdown {
		w = report.NewMarkdownWriter(out)
	}
	_, err = w.WriteHistory(h)
	return err
}
