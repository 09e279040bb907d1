package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/leadcrawl/internal/model"
)

// Defaults for NewCrawler.
const (
	DefaultMaxDepth   = 3
	DefaultFanOut     = 5
	DefaultCrawlDelay = 250 * time.Millisecond
)

// Sink receives contact records as they are discovered.
// Emit may be called from several goroutines of the same crawl.
type Sink interface {
	Emit(ctx context.Context, rec model.ContactRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rec model.ContactRecord) error

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, rec model.ContactRecord) error {
	return f(ctx, rec)
}

// StopReason tells why a crawl terminated.
type StopReason int

const (
	// StopThreshold means enough on-domain emails and phones were found.
	StopThreshold StopReason = iota
	// StopFrontierExhausted means a layer produced no new URLs.
	StopFrontierExhausted
	// StopMaxDepth means the deepest allowed layer was scanned.
	StopMaxDepth
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case StopThreshold:
		return "threshold"
	case StopFrontierExhausted:
		return "frontier exhausted"
	case StopMaxDepth:
		return "max depth"
	default:
		return "unknown"
	}
}

// Result summarizes a terminated crawl.
type Result struct {
	Company      model.Company
	Seed         string
	BaseDomain   string
	PagesScanned int
	// Depth is the deepest layer that was scanned.
	Depth        int
	Emails       []string
	Phones       []string
	DomainEmails int
	StopReason   StopReason
	Duration     time.Duration
}

// Crawler harvests contacts from one company website at a time.
// A Crawler holds no per-crawl state, so one instance may run several
// crawls concurrently.
//
// Design decision: layers are scanned one after another and the URLs of one
// layer are fetched concurrently. Links found at depth d are only fetched
// once every page of depth d has been merged, so the next frontier is
// complete before it is used.
type Crawler struct {
	fetcher   Fetcher
	parser    *Parser
	extractor *Extractor

	maxDepth    int
	fanOut      int
	delay       time.Duration
	resolveMode ResolveMode

	termination   TerminationPolicy
	strictness    StrictnessPolicy
	contactFilter ContactFilter
	pathFilter    PathFilter

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxDepth sets the number of layers to scan. 1 scans only the seed.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithFanOut sets how many fetches of one layer may be in flight.
func WithFanOut(n int) Option {
	return func(c *Crawler) {
		c.fanOut = n
	}
}

// WithDelay sets the minimum interval between fetch starts for one company.
// Zero disables the limiter.
func WithDelay(d time.Duration) Option {
	return func(c *Crawler) {
		c.delay = d
	}
}

// WithResolveMode sets how relative links are resolved.
func WithResolveMode(m ResolveMode) Option {
	return func(c *Crawler) {
		c.resolveMode = m
	}
}

// WithTermination sets the stop thresholds.
func WithTermination(p TerminationPolicy) Option {
	return func(c *Crawler) {
		c.termination = p
	}
}

// WithStrictness sets the page ceilings.
func WithStrictness(p StrictnessPolicy) Option {
	return func(c *Crawler) {
		c.strictness = p
	}
}

// WithContactFilter sets the keyword lists used in contact-only mode.
func WithContactFilter(f ContactFilter) Option {
	return func(c *Crawler) {
		c.contactFilter = f
	}
}

// WithPathFilter sets per-site ignore and follow patterns.
func WithPathFilter(f PathFilter) Option {
	return func(c *Crawler) {
		c.pathFilter = f
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *Extractor) Option {
	return func(c *Crawler) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCrawler creates a Crawler that fetches pages with fetcher.
func NewCrawler(fetcher Fetcher, opts ...Option) (*Crawler, error) {
	if fetcher == nil {
		return nil, errors.New("crawler: nil fetcher")
	}

	c := &Crawler{
		fetcher:       fetcher,
		parser:        NewParser(),
		maxDepth:      DefaultMaxDepth,
		fanOut:        DefaultFanOut,
		delay:         DefaultCrawlDelay,
		resolveMode:   ResolveRoot,
		termination:   DefaultTerminationPolicy(),
		strictness:    DefaultStrictnessPolicy(),
		contactFilter: DefaultContactFilter(),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.maxDepth < 1 {
		return nil, fmt.Errorf("crawler: max depth must be at least 1, got %d", c.maxDepth)
	}
	if c.fanOut < 1 {
		return nil, fmt.Errorf("crawler: fan-out must be at least 1, got %d", c.fanOut)
	}
	if c.extractor == nil {
		e, err := NewExtractor(DefaultEmailPattern, DefaultPhonePattern)
		if err != nil {
			return nil, err
		}
		c.extractor = e
	}

	return c, nil
}

// crawlRun bundles what one Crawl call shares between its goroutines.
type crawlRun struct {
	company  model.Company
	resolver *Resolver
	state    *State
	sink     Sink
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Crawl harvests contacts from company's website and emits every new value
// to sink as soon as it is found.
//
// It returns ErrInvalidSeed (wrapped) when the seed URL is unusable and
// ErrCrawlAborted when ctx is cancelled before the crawl terminates. A sink
// error also ends the crawl with an error. In all these cases the company
// must not be considered done.
func (c *Crawler) Crawl(ctx context.Context, company model.Company, sink Sink) (*Result, error) {
	start := c.now()

	resolver, err := NewResolver(company.SeedURL, c.resolveMode)
	if err != nil {
		return nil, err
	}

	run := &crawlRun{
		company:  company,
		resolver: resolver,
		state:    NewState(resolver.BaseDomain(), resolver.Seed()),
		sink:     sink,
		logger:   c.logger.With("company", company.Name),
	}
	if c.delay > 0 {
		run.limiter = rate.NewLimiter(rate.Every(c.delay), 1)
	}

	run.state.setPhase(PhaseScanning)
	run.logger.Info("crawl started", "seed", resolver.Seed(), "domain", resolver.BaseDomain())

	var reason StopReason
	for {
		depth := run.state.Depth()

		stopped, err := c.scanLayer(ctx, run, depth)
		if err != nil {
			return nil, err
		}
		if stopped || c.thresholdReached(run) {
			reason = StopThreshold
			break
		}
		if depth+1 >= c.maxDepth {
			reason = StopMaxDepth
			break
		}
		if run.state.Advance() == 0 {
			reason = StopFrontierExhausted
			break
		}
	}

	run.state.setPhase(PhaseDone)
	snap := run.state.Snapshot()

	result := &Result{
		Company:      company,
		Seed:         resolver.Seed(),
		BaseDomain:   resolver.BaseDomain(),
		PagesScanned: snap.PagesScanned,
		Depth:        snap.Depth,
		Emails:       snap.Emails,
		Phones:       snap.Phones,
		DomainEmails: snap.DomainEmails,
		StopReason:   reason,
		Duration:     c.now().Sub(start),
	}

	run.logger.Info("crawl finished",
		"reason", reason.String(),
		"pages", result.PagesScanned,
		"depth", result.Depth,
		"emails", len(result.Emails),
		"domain_emails", result.DomainEmails,
		"phones", len(result.Phones),
		"duration", result.Duration,
	)

	return result, nil
}

// scanLayer fetches every URL of the current frontier. It reports whether
// the termination policy was satisfied during the layer.
func (c *Crawler) scanLayer(ctx context.Context, run *crawlRun, depth int) (bool, error) {
	layerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(layerCtx)
	g.SetLimit(c.fanOut)

	var stopped atomic.Bool
	for _, u := range run.state.Frontier() {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			done, err := c.scanPage(gctx, run, u, depth)
			if err != nil {
				return err
			}
			if done {
				stopped.Store(true)
				cancel()
			}
			return nil
		})
	}

	err := g.Wait()
	if stopped.Load() {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, fmt.Errorf("%w: %w", ErrCrawlAborted, ctx.Err())
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// scanPage fetches and processes one URL. It reports whether the termination
// policy is satisfied afterwards.
func (c *Crawler) scanPage(ctx context.Context, run *crawlRun, u string, depth int) (bool, error) {
	if ctx.Err() != nil {
		return false, nil
	}

	ordinal := run.state.Reserve()
	if c.strictness.Level(ordinal, depth) == StrictnessContactOnly && !c.contactFilter.Match(u) {
		run.state.Release(u, false)
		run.logger.Debug("page skipped", "url", u, "reason", "contact-only mode")
		return false, nil
	}

	if run.limiter != nil {
		if err := run.limiter.Wait(ctx); err != nil {
			run.state.Release(u, false)
			return false, nil
		}
	}

	page, err := c.fetcher.Fetch(ctx, u)
	if err != nil {
		run.state.Release(u, false)
		if ctx.Err() == nil {
			run.logger.Info("page skipped", "url", u, "depth", depth, "error", err)
		}
		return false, nil
	}
	pages := run.state.Release(u, true)

	parsed := c.parse(run, page)

	if depth+1 < c.maxDepth {
		c.enqueueLinks(run, page, parsed.Links, depth)
	}

	added := run.state.MergeContacts(c.extractor.Extract(parsed.Text), func(email string) bool {
		return c.termination.Matches(email, run.resolver.BaseDomain())
	})
	// Values already merged are emitted even if the layer is being cancelled.
	if err := c.emit(context.WithoutCancel(ctx), run, u, added); err != nil {
		return false, err
	}

	domainEmails, phones := run.state.Counts()
	run.logger.Info("page scanned",
		"url", u,
		"depth", depth,
		"pages", pages,
		"emails", domainEmails,
		"phones", phones,
	)

	return c.termination.ShouldStop(domainEmails, phones), nil
}

// parse turns a fetched page into links and text. Malformed markup degrades
// the page to nothing; the page still counts as scanned.
func (c *Crawler) parse(run *crawlRun, page *Page) *ParseResult {
	parsed, err := c.parser.Parse(bytes.NewReader(page.Body))
	if err != nil {
		perr := &ParseError{URL: page.URL, Err: err}
		run.logger.Warn("page degraded", "error", perr)
		return &ParseResult{}
	}
	return parsed
}

// enqueueLinks resolves the links of page and queues the new ones for the
// next layer.
func (c *Crawler) enqueueLinks(run *crawlRun, page *Page, links []string, depth int) {
	from := page.URL
	if page.FinalURL != "" && page.FinalURL != page.URL {
		if final, err := run.resolver.Resolve("", page.FinalURL); err == nil {
			run.state.MarkSeen(final)
			from = final
		}
	}

	for _, href := range links {
		target, err := run.resolver.Resolve(from, href)
		if err != nil {
			if errors.Is(err, ErrExternalLink) {
				run.logger.Debug("link skipped", "href", href, "reason", "external")
			}
			continue
		}
		if !c.pathFilter.Allow(target) {
			continue
		}
		if run.state.Seen(target) {
			continue
		}
		if c.strictness.Level(run.state.Load()+1, depth) == StrictnessContactOnly && !c.contactFilter.Match(target) {
			continue
		}
		run.state.Enqueue(target)
	}
}

// emit hands newly found values to the sink.
func (c *Crawler) emit(ctx context.Context, run *crawlRun, page string, added Contacts) error {
	if run.sink == nil || added.Empty() {
		return nil
	}

	base := run.resolver.BaseDomain()
	now := c.now()
	for _, e := range added.Emails {
		rec := model.ContactRecord{
			Company:    run.company.Name,
			Site:       run.resolver.Seed(),
			BaseDomain: base,
			Page:       page,
			Value:      e,
			Kind:       model.KindEmail,
			FoundAt:    now,
		}
		if err := run.sink.Emit(ctx, rec); err != nil {
			return fmt.Errorf("emit email for %s: %w", run.company.Name, err)
		}
	}
	for _, p := range added.Phones {
		rec := model.ContactRecord{
			Company:    run.company.Name,
			Site:       run.resolver.Seed(),
			BaseDomain: base,
			Page:       page,
			Value:      p,
			Kind:       model.KindPhone,
			FoundAt:    now,
		}
		if err := run.sink.Emit(ctx, rec); err != nil {
			return fmt.Errorf("emit phone for %s: %w", run.company.Name, err)
		}
	}
	return nil
}

func (c *Crawler) thresholdReached(run *crawlRun) bool {
	return c.termination.ShouldStop(run.state.Counts())
}
