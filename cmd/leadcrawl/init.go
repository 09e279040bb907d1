package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/leadcrawl/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/leadcrawl.yaml
var configTemplate embed.FS

const templatePath = "templates/leadcrawl.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a leadcrawl configuration file",
		Long: `Init writes a commented .leadcrawl configuration file.

The generated file documents:
- Crawl tuning: contact keywords, thresholds, page ceilings and patterns
- Defaults applied to every site
- Per-site cookies, headers, depth and URL patterns

Examples:
  # Create .leadcrawl in the current directory
  leadcrawl init

  # Create the config file at a specific path
  leadcrawl init -o myconfig.yaml

  # Overwrite an existing file
  leadcrawl init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration file")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to tune the crawl, for example:")
	fmt.Fprintln(out, "  - Contact keywords and stop thresholds")
	fmt.Fprintln(out, "  - Cookies and headers per site")
	fmt.Fprintln(out, "  - URL patterns to ignore or follow")
	return nil
}
