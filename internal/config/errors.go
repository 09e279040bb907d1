package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is; all of them are fatal before crawling.
var (
	// ErrNoLeads is returned when neither lead files nor a leads directory are given.
	ErrNoLeads = errors.New("no leads specified: pass lead files or use --leads-dir")

	// ErrInvalidDepth is returned when the maximum depth is below 1.
	ErrInvalidDepth = errors.New("invalid depth: must be at least 1")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the number of workers is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidFanOut is returned when the per-company fetch concurrency is not positive.
	ErrInvalidFanOut = errors.New("invalid fan-out: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidThreshold is returned when an email or phone threshold is negative.
	ErrInvalidThreshold = errors.New("invalid threshold: must be non-negative")

	// ErrInvalidCeiling is returned when a strictness ceiling is negative, or
	// when the hard ceiling is set below the soft ceiling.
	ErrInvalidCeiling = errors.New("invalid page ceiling: must be non-negative and hard >= soft")

	// ErrInvalidResolveMode is returned for a resolve mode other than root or page.
	ErrInvalidResolveMode = errors.New("invalid resolve mode: must be root or page")

	// ErrInvalidPattern is returned when the email or phone pattern does not compile.
	ErrInvalidPattern = errors.New("invalid contact pattern")

	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("output directory is empty")

	// ErrEmptyLedgerPath is returned when no ledger file is configured.
	ErrEmptyLedgerPath = errors.New("ledger path is empty")
)
