package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for leadcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadcrawl",
		Short: "Harvest contact details from company websites",
		Long: `leadcrawl crawls company websites and collects email addresses and phone numbers.

Each site is explored layer by layer from its home page. Once enough pages
were scanned the crawl narrows to contact-like pages, and it stops as soon as
enough on-domain emails and phone numbers were found.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text, json or pretty")

	cmd.AddCommand(NewEnrichCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext returns the command's context, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
