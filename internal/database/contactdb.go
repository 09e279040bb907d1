package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/leadcrawl/internal/model"
)

// FileName is the database file created inside the database directory.
const FileName = "leadcrawl.db"

// ErrNotFound is returned when a database file is required but missing.
var ErrNotFound = errors.New("database not found")

// ContactDB stores contacts and crawl summaries.
// It is safe for concurrent use; SQLite serializes writers on the single
// connection.
type ContactDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures how the database is opened.
type Options struct {
	// CreateIfNotExists creates the directory and file when missing.
	// The history command opens with false so it never creates an empty file.
	CreateIfNotExists bool

	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the enrich command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the database in dbDir.
func Open(dbDir string, opts Options) (*ContactDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &ContactDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *ContactDB) Path() string {
	return cdb.dbPath
}

// Close closes the database.
func (cdb *ContactDB) Close() error {
	return cdb.db.Close()
}

func (cdb *ContactDB) createTables() error {
	schema := `
	-- One row per distinct value per company
	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		base_domain TEXT NOT NULL,
		page TEXT NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		found_at TEXT NOT NULL,
		UNIQUE(company, kind, value)
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_company ON contacts(company);

	-- One row per finished company crawl
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company TEXT NOT NULL,
		seed TEXT NOT NULL,
		base_domain TEXT NOT NULL,
		pages_scanned INTEGER NOT NULL,
		depth INTEGER NOT NULL,
		emails INTEGER NOT NULL,
		domain_emails INTEGER NOT NULL,
		phones INTEGER NOT NULL,
		stop_reason TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_company ON crawls(company);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// InsertContact stores rec. It reports false when the company already had
// the same value, which can happen when a company is crawled again after an
// interrupted run.
func (cdb *ContactDB) InsertContact(ctx context.Context, rec model.ContactRecord) (bool, error) {
	query := `
	INSERT OR IGNORE INTO contacts (company, base_domain, page, kind, value, found_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		rec.Company,
		rec.BaseDomain,
		rec.Page,
		rec.Kind.String(),
		rec.Value,
		formatTimestamp(rec.FoundAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert contact: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert contact: %w", err)
	}
	return n > 0, nil
}

// ListContacts returns the contacts of company, emails first, in discovery order.
func (cdb *ContactDB) ListContacts(ctx context.Context, company string) ([]model.ContactRecord, error) {
	query := `
	SELECT company, base_domain, page, kind, value, found_at
	FROM contacts
	WHERE company = ?
	ORDER BY kind, id
	`

	rows, err := cdb.db.QueryContext(ctx, query, company)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var records []model.ContactRecord
	for rows.Next() {
		var rec model.ContactRecord
		var kind, foundAt string
		if err := rows.Scan(&rec.Company, &rec.BaseDomain, &rec.Page, &kind, &rec.Value, &foundAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		k, ok := model.ParseContactKind(kind)
		if !ok {
			continue
		}
		rec.Kind = k
		rec.FoundAt = parseTimestamp(foundAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CrawlSummary is the stored outcome of one finished company crawl.
type CrawlSummary struct {
	ID           int64
	Company      string
	Seed         string
	BaseDomain   string
	PagesScanned int
	Depth        int
	Emails       int
	DomainEmails int
	Phones       int
	StopReason   string
	Duration     time.Duration
	FinishedAt   time.Time
}

// SaveCrawlSummary stores a finished crawl.
func (cdb *ContactDB) SaveCrawlSummary(ctx context.Context, s CrawlSummary) error {
	query := `
	INSERT INTO crawls (company, seed, base_domain, pages_scanned, depth, emails, domain_emails, phones, stop_reason, duration_ms, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	finished := s.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	_, err := cdb.db.ExecContext(ctx, query,
		s.Company,
		s.Seed,
		s.BaseDomain,
		s.PagesScanned,
		s.Depth,
		s.Emails,
		s.DomainEmails,
		s.Phones,
		s.StopReason,
		s.Duration.Milliseconds(),
		formatTimestamp(finished),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl summary: %w", err)
	}
	return nil
}

// GetCrawlHistory returns the crawls of company, newest first.
func (cdb *ContactDB) GetCrawlHistory(ctx context.Context, company string) ([]CrawlSummary, error) {
	query := `
	SELECT id, company, seed, base_domain, pages_scanned, depth, emails, domain_emails, phones, stop_reason, duration_ms, finished_at
	FROM crawls
	WHERE company = ?
	ORDER BY finished_at DESC, id DESC
	`

	rows, err := cdb.db.QueryContext(ctx, query, company)
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl history: %w", err)
	}
	defer rows.Close()

	var results []CrawlSummary
	for rows.Next() {
		var s CrawlSummary
		var durationMS int64
		var finishedAt string
		if err := rows.Scan(
			&s.ID,
			&s.Company,
			&s.Seed,
			&s.BaseDomain,
			&s.PagesScanned,
			&s.Depth,
			&s.Emails,
			&s.DomainEmails,
			&s.Phones,
			&s.StopReason,
			&durationMS,
			&finishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl summary: %w", err)
		}
		s.Duration = time.Duration(durationMS) * time.Millisecond
		s.FinishedAt = parseTimestamp(finishedAt)
		results = append(results, s)
	}
	return results, rows.Err()
}

// CompanyOverview is one line of the history listing.
type CompanyOverview struct {
	Company     string
	BaseDomain  string
	Crawls      int
	Emails      int
	Phones      int
	LastCrawlAt time.Time
}

// ListCompanies returns every company with at least one crawl or contact,
// sorted by name.
func (cdb *ContactDB) ListCompanies(ctx context.Context) ([]CompanyOverview, error) {
	query := `
	SELECT c.company,
		COALESCE((SELECT base_domain FROM crawls WHERE company = c.company ORDER BY id DESC LIMIT 1),
		         (SELECT base_domain FROM contacts WHERE company = c.company LIMIT 1), ''),
		(SELECT COUNT(*) FROM crawls WHERE company = c.company),
		(SELECT COUNT(*) FROM contacts WHERE company = c.company AND kind = 'email'),
		(SELECT COUNT(*) FROM contacts WHERE company = c.company AND kind = 'phone'),
		COALESCE((SELECT MAX(finished_at) FROM crawls WHERE company = c.company), '')
	FROM (SELECT company FROM crawls UNION SELECT company FROM contacts) AS c
	ORDER BY c.company
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var results []CompanyOverview
	for rows.Next() {
		var o CompanyOverview
		var last string
		if err := rows.Scan(&o.Company, &o.BaseDomain, &o.Crawls, &o.Emails, &o.Phones, &last); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		o.LastCrawlAt = parseTimestamp(last)
		results = append(results, o)
	}
	return results, rows.Err()
}

// timestampFormats lists the layouts SQLite and this package produce.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// storedLayout has a fixed width so stored timestamps sort as text.
const storedLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedLayout)
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
