package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/leadcrawl/internal/crawler"
)

// AppName is the application name used for XDG directory paths.
const AppName = "leadcrawl"

// Default configuration values. Crawl defaults come from the crawler package
// so a bare crawler.NewCrawler and the CLI behave the same.
const (
	DefaultMaxDepth            = crawler.DefaultMaxDepth
	DefaultSoftCeiling         = crawler.DefaultSoftCeiling
	DefaultSoftCeilingMinDepth = 0
	DefaultHardCeiling         = crawler.DefaultHardCeiling
	DefaultEmailThreshold      = crawler.DefaultEmailThreshold
	DefaultPhoneThreshold      = crawler.DefaultPhoneThreshold
	DefaultFetchTimeout        = crawler.DefaultFetchTimeout
	DefaultFanOut              = crawler.DefaultFanOut
	DefaultCrawlDelay          = crawler.DefaultCrawlDelay
	DefaultUserAgent           = crawler.DefaultUserAgent
	DefaultMaxBodySize         = crawler.DefaultMaxBodySize

	// DefaultWorkers is the number of companies crawled in parallel.
	DefaultWorkers = 4

	// DefaultResolveMode resolves relative links against the site root.
	DefaultResolveMode = "root"

	// DefaultLedgerFile is the file name of the resume ledger.
	DefaultLedgerFile = "enriched_leads.txt"

	// DefaultLogFormat is the log output format.
	DefaultLogFormat = "text"
)

// Config holds every setting of a leadcrawl run. It is filled from CLI flags
// and the optional config file and passed down explicitly.
//
// Design decision: a single flat struct, as the number of options is small
// enough that nesting would only add indirection.
type Config struct {
	// MaxDepth is the number of link layers scanned per company, seed included.
	MaxDepth int

	// SoftCeiling switches a crawl to contact pages only once more pages than
	// this were scanned, from depth SoftCeilingMinDepth on. 0 disables it.
	SoftCeiling         int
	SoftCeilingMinDepth int

	// HardCeiling switches to contact pages only regardless of depth. 0 disables it.
	HardCeiling int

	// EmailThreshold and PhoneThreshold end a crawl once strictly more
	// on-domain emails and phones than these were found.
	EmailThreshold int
	PhoneThreshold int

	// ContactKeywords mark contact-like URL paths; ExcludeKeywords veto them.
	ContactKeywords []string
	ExcludeKeywords []string

	// EmailPattern and PhonePattern override the extraction regexes. Empty
	// means the built-in patterns.
	EmailPattern string
	PhonePattern string

	// FetchTimeout bounds every single page fetch.
	FetchTimeout time.Duration

	// Workers is the number of companies crawled at the same time.
	Workers int

	// FetchConcurrency is the number of pages of one layer fetched at once.
	FetchConcurrency int

	// CrawlDelay is the minimum interval between two requests to one company.
	CrawlDelay time.Duration

	// ResolveMode is "root" or "page"; see crawler.ResolveMode.
	ResolveMode string

	// ProxyAddress routes all traffic through a SOCKS5 proxy when set.
	ProxyAddress string

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps the bytes read from one response.
	MaxBodySize int64

	// LeadFiles are explicit CSV or XLSX lead files.
	LeadFiles []string

	// LeadsDir is searched for leads_*.csv and leads_*.xlsx files.
	LeadsDir string

	// OutputDir receives the daily email and phone CSV files.
	OutputDir string

	// LedgerPath is the resume ledger file.
	LedgerPath string

	// DBDir holds the SQLite history database.
	DBDir string

	// SaveToDB stores contacts and crawl summaries in the database.
	SaveToDB bool

	// ReportFile receives the end-of-run summary instead of stdout.
	ReportFile string

	// MarkdownReport renders the summary as Markdown.
	MarkdownReport bool

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is text, json or pretty.
	LogFormat string

	// ConfigFilePath is an explicit config file. Empty means search.
	ConfigFilePath string

	// SiteConfigs holds per-site settings from the config file.
	SiteConfigs *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxDepth:            DefaultMaxDepth,
		SoftCeiling:         DefaultSoftCeiling,
		SoftCeilingMinDepth: DefaultSoftCeilingMinDepth,
		HardCeiling:         DefaultHardCeiling,
		EmailThreshold:      DefaultEmailThreshold,
		PhoneThreshold:      DefaultPhoneThreshold,
		ContactKeywords:     append([]string(nil), crawler.DefaultContactKeywords...),
		ExcludeKeywords:     append([]string(nil), crawler.DefaultExcludeKeywords...),
		FetchTimeout:        DefaultFetchTimeout,
		Workers:             DefaultWorkers,
		FetchConcurrency:    DefaultFanOut,
		CrawlDelay:          DefaultCrawlDelay,
		ResolveMode:         DefaultResolveMode,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
		OutputDir:           filepath.Join(XDGDataDir(), "output"),
		LedgerPath:          filepath.Join(XDGDataDir(), DefaultLedgerFile),
		DBDir:               XDGDataDir(),
		SaveToDB:            true,
		LogFormat:           DefaultLogFormat,
	}
}

// XDGDataDir returns the leadcrawl data directory, for example
// ~/.local/share/leadcrawl on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the leadcrawl config directory, for example
// ~/.config/leadcrawl on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.LeadFiles) == 0 && c.LeadsDir == "" {
		return ErrNoLeads
	}
	if c.MaxDepth < 1 {
		return ErrInvalidDepth
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.FetchConcurrency <= 0 {
		return ErrInvalidFanOut
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.EmailThreshold < 0 || c.PhoneThreshold < 0 {
		return ErrInvalidThreshold
	}
	if c.SoftCeiling < 0 || c.SoftCeilingMinDepth < 0 || c.HardCeiling < 0 {
		return ErrInvalidCeiling
	}
	if c.SoftCeiling > 0 && c.HardCeiling > 0 && c.HardCeiling < c.SoftCeiling {
		return ErrInvalidCeiling
	}
	if _, err := crawler.ParseResolveMode(c.ResolveMode); err != nil {
		return ErrInvalidResolveMode
	}
	for _, p := range []string{c.EmailPattern, c.PhonePattern} {
		if p == "" {
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
	}
	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}
	if c.LedgerPath == "" {
		return ErrEmptyLedgerPath
	}
	return nil
}

// ApplyFile copies the crawl settings of f into c. A setting is skipped when
// explicit reports that the matching CLI flag was given, so flags win over
// the file. A nil explicit applies everything.
func (c *Config) ApplyFile(f *File, explicit func(flag string) bool) {
	if f == nil {
		return
	}
	c.SiteConfigs = f
	if explicit == nil {
		explicit = func(string) bool { return false }
	}

	s := f.Crawl
	setInt := func(flag string, v *int, dst *int) {
		if v != nil && !explicit(flag) {
			*dst = *v
		}
	}
	setInt("email-threshold", s.EmailThreshold, &c.EmailThreshold)
	setInt("phone-threshold", s.PhoneThreshold, &c.PhoneThreshold)
	setInt("soft-ceiling", s.SoftCeiling, &c.SoftCeiling)
	setInt("soft-ceiling-min-depth", s.SoftCeilingMinDepth, &c.SoftCeilingMinDepth)
	setInt("hard-ceiling", s.HardCeiling, &c.HardCeiling)

	if len(s.ContactKeywords) > 0 {
		c.ContactKeywords = s.ContactKeywords
	}
	if len(s.ExcludeKeywords) > 0 {
		c.ExcludeKeywords = s.ExcludeKeywords
	}
	if s.EmailPattern != "" {
		c.EmailPattern = s.EmailPattern
	}
	if s.PhonePattern != "" {
		c.PhonePattern = s.PhonePattern
	}
}
