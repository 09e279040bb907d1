package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/leadcrawl/internal/config"
	"github.com/nao1215/leadcrawl/internal/crawler"
	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/leads"
	"github.com/nao1215/leadcrawl/internal/ledger"
	applog "github.com/nao1215/leadcrawl/internal/log"
	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/output"
	"github.com/nao1215/leadcrawl/internal/pipeline"
	"github.com/nao1215/leadcrawl/internal/report"
	"github.com/nao1215/leadcrawl/internal/transport"
	"github.com/spf13/cobra"
)

// NewEnrichCmd creates the enrich command.
func NewEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich [lead-file...]",
		Short: "Crawl company websites and collect emails and phone numbers",
		Long: `Enrich reads companies from CSV or XLSX lead files and crawls every website.

Lead files need a header row with "company" and "website" columns (other
columns are ignored). Files can be passed as arguments, and every
leads_*.csv or leads_*.xlsx file in --leads-dir is read as well.

Contacts are appended to email_YYYY-MM-DD.csv and phone_YYYY-MM-DD.csv in the
output directory as soon as they are found. Finished companies are written
to the ledger file and skipped on the next run, so an interrupted batch
resumes where it stopped.

Examples:
  # Crawl the companies in one lead file
  leadcrawl enrich leads.csv

  # Crawl every leads_* file in a directory with 8 parallel workers
  leadcrawl enrich --leads-dir ./input -w 8

  # Stop earlier and write a Markdown summary
  leadcrawl enrich --email-threshold 3 --phone-threshold 1 --markdown --report summary.md leads.xlsx

  # Route traffic through a SOCKS5 proxy
  leadcrawl enrich --proxy 127.0.0.1:1080 leads.csv`,
		Args: cobra.ArbitraryArgs,
		RunE: runEnrichCmd,
	}

	f := cmd.Flags()

	// Crawl shape
	f.IntP("depth", "d", config.DefaultMaxDepth, "Number of link layers to scan per company, seed included")
	f.Int("soft-ceiling", config.DefaultSoftCeiling, "Pages after which only contact-like pages are fetched (0 disables)")
	f.Int("soft-ceiling-min-depth", config.DefaultSoftCeilingMinDepth, "First depth the soft ceiling applies at")
	f.Int("hard-ceiling", config.DefaultHardCeiling, "Pages after which only contact-like pages are fetched at any depth (0 disables)")
	f.Int("email-threshold", config.DefaultEmailThreshold, "Stop once more on-domain emails than this were found (with --phone-threshold)")
	f.Int("phone-threshold", config.DefaultPhoneThreshold, "Stop once more phone numbers than this were found (with --email-threshold)")
	f.String("resolve", config.DefaultResolveMode, "Resolve relative links against the site root (root) or the current page (page)")

	// Network
	f.DurationP("timeout", "t", config.DefaultFetchTimeout, "Timeout for each page fetch")
	f.IntP("workers", "w", config.DefaultWorkers, "Number of companies crawled in parallel")
	f.IntP("fan-out", "f", config.DefaultFanOut, "Number of pages of one company fetched in parallel")
	f.Duration("delay", config.DefaultCrawlDelay, "Minimum interval between requests to one company")
	f.String("proxy", "", "SOCKS5 proxy address (host:port)")
	f.String("user-agent", config.DefaultUserAgent, "User-Agent header")
	f.Int64("max-body-size", config.DefaultMaxBodySize, "Maximum response body size in bytes")

	// Input and output
	f.String("leads-dir", "", "Directory searched for leads_*.csv and leads_*.xlsx files")
	f.StringP("output-dir", "o", filepath.Join(config.XDGDataDir(), "output"), "Directory for the daily email and phone CSV files")
	f.String("ledger", filepath.Join(config.XDGDataDir(), config.DefaultLedgerFile), "Resume ledger file")
	f.String("db-dir", config.XDGDataDir(), "Directory of the history database")
	f.Bool("no-db", false, "Do not store contacts and crawl summaries in the history database")
	f.StringP("config", "c", "", "Configuration file path (default: .leadcrawl in current or home directory)")

	// Report
	f.String("report", "", "Write the batch summary to this file instead of stdout")
	f.BoolP("markdown", "m", false, "Write the batch summary as Markdown")

	return cmd
}

func runEnrichCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, finishing running pages...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runEnrich(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from flags, positional lead files and the
// optional config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	f := cmd.Flags()

	ints := []struct {
		flag string
		dst  *int
	}{
		{"depth", &cfg.MaxDepth},
		{"soft-ceiling", &cfg.SoftCeiling},
		{"soft-ceiling-min-depth", &cfg.SoftCeilingMinDepth},
		{"hard-ceiling", &cfg.HardCeiling},
		{"email-threshold", &cfg.EmailThreshold},
		{"phone-threshold", &cfg.PhoneThreshold},
		{"workers", &cfg.Workers},
		{"fan-out", &cfg.FetchConcurrency},
	}
	for _, i := range ints {
		v, err := f.GetInt(i.flag)
		if err != nil {
			return nil, err
		}
		*i.dst = v
	}

	strs := []struct {
		flag string
		dst  *string
	}{
		{"resolve", &cfg.ResolveMode},
		{"proxy", &cfg.ProxyAddress},
		{"user-agent", &cfg.UserAgent},
		{"leads-dir", &cfg.LeadsDir},
		{"output-dir", &cfg.OutputDir},
		{"ledger", &cfg.LedgerPath},
		{"db-dir", &cfg.DBDir},
		{"config", &cfg.ConfigFilePath},
		{"report", &cfg.ReportFile},
	}
	for _, s := range strs {
		v, err := f.GetString(s.flag)
		if err != nil {
			return nil, err
		}
		*s.dst = v
	}

	var err error
	if cfg.FetchTimeout, err = f.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.CrawlDelay, err = f.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.MaxBodySize, err = f.GetInt64("max-body-size"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = f.GetBool("markdown"); err != nil {
		return nil, err
	}
	noDB, err := f.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB

	cfg.Verbose = getVerboseFlag(cmd)
	if format, err := cmd.Flags().GetString("log-format"); err == nil {
		cfg.LogFormat = format
	}

	cfg.LeadFiles = args

	// An explicitly given config file must exist; a searched one is optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file, f.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	return cfg, nil
}

// getVerboseFlag reads the persistent verbose flag.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	format, err := applog.ParseFormat(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose, format)
}

// runEnrich runs a batch. Everything that can fail before the first crawl
// is returned as an error; once crawling started only report errors are.
func runEnrich(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	loaded, err := leads.Load(cfg.LeadFiles, cfg.LeadsDir)
	if err != nil {
		return fmt.Errorf("failed to read leads: %w", err)
	}
	for _, s := range loaded.Skipped {
		logger.Warn("lead row skipped", "file", s.File, "line", s.Line, "reason", s.Reason)
	}
	logger.Info("leads loaded", "companies", len(loaded.Companies), "duplicates", loaded.Duplicates)

	l, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer l.Close()

	client, err := transport.NewClient(cfg.ProxyAddress, cfg.FetchTimeout)
	if err != nil {
		return err
	}
	if err := client.CheckProxy(ctx); err != nil {
		return err
	}

	csvSink, err := output.NewCSVSink(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	defer func() {
		if err := csvSink.Close(); err != nil {
			logger.Error("failed to close output files", "error", err)
		}
	}()
	sinks := output.Multi{csvSink}

	var orchestratorOpts []pipeline.Option
	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		sinks = append(sinks, output.NewDBSink(db))
		orchestratorOpts = append(orchestratorOpts, pipeline.WithSummaryStore(db))
		logger.Debug("database opened", "path", db.Path())
	}

	extractor, err := crawler.NewExtractor(cfg.EmailPattern, cfg.PhonePattern)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	total := len(loaded.Companies)
	done := 0
	orchestratorOpts = append(orchestratorOpts,
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithOnComplete(func(r pipeline.CompanyResult) {
			done++
			logger.Info("company processed",
				"company", r.Company.Name,
				"status", r.Status.String(),
				"progress", fmt.Sprintf("%d/%d", done, total),
			)
		}),
	)

	orch, err := pipeline.NewOrchestrator(newCrawlerFactory(cfg, client, extractor, logger), l, sinks, orchestratorOpts...)
	if err != nil {
		return err
	}

	summary, err := orch.Run(ctx, loaded.Companies)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("batch interrupted; unfinished companies will be crawled on the next run",
			"aborted", summary.Aborted)
	}

	return writeSummary(cfg, summary, stdout)
}

// newCrawlerFactory builds one crawler per company so per-site cookies,
// headers, depth and patterns apply to that company only.
func newCrawlerFactory(cfg *config.Config, client *transport.Client, extractor *crawler.Extractor, logger *slog.Logger) pipeline.CrawlerFactory {
	mode, _ := crawler.ParseResolveMode(cfg.ResolveMode) // checked by Validate

	return func(company model.Company) (pipeline.Crawler, error) {
		site := siteConfigFor(cfg, company)

		depth := cfg.MaxDepth
		if site.Depth > 0 {
			depth = site.Depth
		}

		httpClient := client.NewHTTPClient()
		if site.Cookie != "" || len(site.Headers) > 0 {
			httpClient = client.HTTPClientWithConfig(site.Cookie, site.Headers)
		}
		fetcher := crawler.NewHTTPFetcher(httpClient,
			crawler.WithFetchTimeout(cfg.FetchTimeout),
			crawler.WithUserAgent(cfg.UserAgent),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
		)

		c, err := crawler.NewCrawler(fetcher,
			crawler.WithMaxDepth(depth),
			crawler.WithFanOut(cfg.FetchConcurrency),
			crawler.WithDelay(cfg.CrawlDelay),
			crawler.WithResolveMode(mode),
			crawler.WithTermination(crawler.TerminationPolicy{
				Emails: cfg.EmailThreshold,
				Phones: cfg.PhoneThreshold,
			}),
			crawler.WithStrictness(crawler.StrictnessPolicy{
				SoftCeiling:         cfg.SoftCeiling,
				SoftCeilingMinDepth: cfg.SoftCeilingMinDepth,
				HardCeiling:         cfg.HardCeiling,
			}),
			crawler.WithContactFilter(crawler.ContactFilter{
				Keywords: cfg.ContactKeywords,
				Exclude:  cfg.ExcludeKeywords,
			}),
			crawler.WithPathFilter(crawler.PathFilter{
				Ignore: site.IgnorePatterns,
				Follow: site.FollowPatterns,
			}),
			crawler.WithExtractor(extractor),
			crawler.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// siteConfigFor returns the per-site settings for company. An unusable seed
// gets the defaults; the crawler reports the seed error itself.
func siteConfigFor(cfg *config.Config, company model.Company) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	seed, err := crawler.NormalizeSeed(company.SeedURL)
	if err != nil {
		return cfg.SiteConfigs.Defaults
	}
	return cfg.SiteConfigs.GetSiteConfig(seed.Hostname())
}

// writeSummary writes the batch summary to the report file or stdout.
func writeSummary(cfg *config.Config, summary *pipeline.Summary, stdout io.Writer) error {
	out := stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w report.Writer = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	if cfg.MarkdownReport {
		w = report.NewMarkdownWriter(out)
	}
	_, err := w.WriteSummary(summary)
	return err
}
