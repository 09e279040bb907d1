package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/leadcrawl/internal/crawler"
	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of companies crawled at the same time.
const DefaultConcurrency = 4

var (
	// ErrInvalidCompany is recorded for a company without name or website.
	ErrInvalidCompany = errors.New("company needs a name and a website")

	// ErrNilFactory is returned by NewOrchestrator without a crawler factory.
	ErrNilFactory = errors.New("crawler factory is nil")

	// ErrNilLedger is returned by NewOrchestrator without a ledger.
	ErrNilLedger = errors.New("ledger is nil")
)

// Crawler is what the orchestrator needs from a per-company crawler.
type Crawler interface {
	Crawl(ctx context.Context, company model.Company, sink crawler.Sink) (*crawler.Result, error)
}

// CrawlerFactory builds the crawler for one company. It lets per-site
// settings such as cookies or depth differ between companies.
type CrawlerFactory func(company model.Company) (Crawler, error)

// Ledger records which companies are finished.
type Ledger interface {
	IsDone(name string) bool
	MarkDone(name string) error
}

// SummaryStore keeps the summary of every finished crawl.
type SummaryStore interface {
	SaveCrawlSummary(ctx context.Context, s database.CrawlSummary) error
}

// Status is the outcome of one company in a batch.
type Status int

const (
	// StatusCompleted means the crawl terminated and the company was marked done.
	StatusCompleted Status = iota
	// StatusFailed means the crawl could not run or ended in an error.
	StatusFailed
	// StatusAborted means the batch was cancelled before the crawl finished.
	StatusAborted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// CompanyResult is the outcome of one company.
type CompanyResult struct {
	Company model.Company
	Status  Status
	Result  *crawler.Result // nil unless Status is StatusCompleted
	Err     error
}

// Summary describes a finished batch. Results follow the order of the
// de-duplicated input and leave out skipped companies.
type Summary struct {
	Total     int
	Skipped   int
	Completed int
	Failed    int
	Aborted   int
	Results   []CompanyResult
	Elapsed   time.Duration
}

// Orchestrator crawls a batch of companies.
//
// Design decision: companies run on an errgroup with SetLimit instead of a
// hand-written worker pool. Workers never return an error to the group, so
// one failing company cannot cancel the others.
type Orchestrator struct {
	factory     CrawlerFactory
	ledger      Ledger
	sink        crawler.Sink
	store       SummaryStore
	concurrency int
	onComplete  func(CompanyResult)
	logger      *slog.Logger

	// callbackMu serializes onComplete calls.
	callbackMu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency sets the number of companies crawled at once.
// Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithLogger sets the batch logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithOnComplete registers a callback invoked after every company that was
// not skipped. Calls are serialized.
func WithOnComplete(fn func(CompanyResult)) Option {
	return func(o *Orchestrator) {
		o.onComplete = fn
	}
}

// WithSummaryStore stores a summary of every completed crawl.
func WithSummaryStore(store SummaryStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// NewOrchestrator creates an Orchestrator. Sink may be nil to discard records.
func NewOrchestrator(factory CrawlerFactory, ledger Ledger, sink crawler.Sink, opts ...Option) (*Orchestrator, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if ledger == nil {
		return nil, ErrNilLedger
	}
	if sink == nil {
		sink = crawler.SinkFunc(func(context.Context, model.ContactRecord) error { return nil })
	}

	o := &Orchestrator{
		factory:     factory,
		ledger:      ledger,
		sink:        sink,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o, nil
}

// Run crawls every company that is not yet done and returns the batch
// summary. Company failures are recorded in the summary, not returned.
// When ctx is cancelled Run stops starting new crawls, waits for the running
// ones to wind down and returns the summary together with ctx's error.
func (o *Orchestrator) Run(ctx context.Context, companies []model.Company) (*Summary, error) {
	start := time.Now()
	unique := Dedup(companies)

	summary := &Summary{Total: len(unique)}
	pending := make([]model.Company, 0, len(unique))
	for _, c := range unique {
		if o.ledger.IsDone(c.Name) {
			summary.Skipped++
			o.logger.Debug("company already done", "company", c.Name)
			continue
		}
		pending = append(pending, c)
	}

	o.logger.Info("starting batch",
		"companies", summary.Total,
		"skipped", summary.Skipped,
		"pending", len(pending),
		"concurrency", o.concurrency,
	)

	results := make([]CompanyResult, len(pending))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, company := range pending {
		g.Go(func() error {
			res := o.runCompany(ctx, company, i+1, len(pending))
			results[i] = res
			o.complete(res)
			return nil
		})
	}
	_ = g.Wait() // workers always return nil

	for _, res := range results {
		switch res.Status {
		case StatusCompleted:
			summary.Completed++
		case StatusFailed:
			summary.Failed++
		case StatusAborted:
			summary.Aborted++
		}
	}
	summary.Results = results
	summary.Elapsed = time.Since(start)

	o.logger.Info("batch finished",
		"completed", summary.Completed,
		"failed", summary.Failed,
		"aborted", summary.Aborted,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed,
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (o *Orchestrator) runCompany(ctx context.Context, company model.Company, index, total int) CompanyResult {
	res := CompanyResult{Company: company}
	logger := o.logger.With("company", company.Name)

	if err := ctx.Err(); err != nil {
		res.Status = StatusAborted
		res.Err = fmt.Errorf("%w: %w", crawler.ErrCrawlAborted, err)
		return res
	}
	if !company.Valid() {
		res.Status = StatusFailed
		res.Err = ErrInvalidCompany
		logger.Warn("company skipped", "error", res.Err)
		return res
	}

	logger.Info("crawling company", "website", company.SeedURL, "index", index, "total", total)

	c, err := o.factory(company)
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("build crawler: %w", err)
		logger.Warn("company failed", "error", res.Err)
		return res
	}

	result, err := c.Crawl(ctx, company, o.sink)
	if err != nil {
		res.Err = err
		if errors.Is(err, crawler.ErrCrawlAborted) || ctx.Err() != nil {
			res.Status = StatusAborted
			logger.Warn("company interrupted", "error", err)
		} else {
			res.Status = StatusFailed
			logger.Warn("company failed", "error", err)
		}
		return res
	}

	if err := o.ledger.MarkDone(company.Name); err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("mark done: %w", err)
		logger.Error("ledger update failed", "error", err)
		return res
	}

	res.Status = StatusCompleted
	res.Result = result
	o.saveSummary(ctx, logger, result)
	return res
}

func (o *Orchestrator) saveSummary(ctx context.Context, logger *slog.Logger, r *crawler.Result) {
	if o.store == nil {
		return
	}
	s := database.CrawlSummary{
		Company:      r.Company.Name,
		Seed:         r.Seed,
		BaseDomain:   r.BaseDomain,
		PagesScanned: r.PagesScanned,
		Depth:        r.Depth,
		Emails:       len(r.Emails),
		DomainEmails: r.DomainEmails,
		Phones:       len(r.Phones),
		StopReason:   r.StopReason.String(),
		Duration:     r.Duration,
		FinishedAt:   time.Now(),
	}
	if err := o.store.SaveCrawlSummary(context.WithoutCancel(ctx), s); err != nil {
		logger.Warn("failed to store crawl summary", "error", err)
	}
}

func (o *Orchestrator) complete(res CompanyResult) {
	if o.onComplete == nil {
		return
	}
	o.callbackMu.Lock()
	defer o.callbackMu.Unlock()
	o.onComplete(res)
}

// Dedup drops every company whose name appeared earlier in the list.
func Dedup(companies []model.Company) []model.Company {
	seen := make(map[string]struct{}, len(companies))
	out := make([]model.Company, 0, len(companies))
	for _, c := range companies {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}
