// Package crawler harvests contact data from one company website.
//
// A crawl starts at the company's seed URL and proceeds breadth-first, one
// depth layer at a time. Pages of a layer are fetched concurrently with a
// bounded fan-out; the next layer starts only when the current one has been
// fully merged.
//
// # Components
//
//   - Resolver: turns raw hrefs into canonical same-site URLs
//   - Parser: pulls anchors and visible text out of HTML
//   - Extractor: finds emails and phone numbers in text
//   - State and Frontier: per-crawl dedup sets and the current layer
//   - TerminationPolicy: stops once enough on-domain contacts are found
//   - StrictnessPolicy and ContactFilter: restrict a large crawl to likely
//     contact pages
//   - Crawler: drives the loop and emits records to a Sink
//
// # Usage
//
//	fetcher := crawler.NewHTTPFetcher(client, crawler.WithFetchTimeout(10*time.Second))
//	c, err := crawler.NewCrawler(fetcher, crawler.WithMaxDepth(3))
//	if err != nil {
//		return err
//	}
//	result, err := c.Crawl(ctx, model.NewCompany("Acme", "acme.nl"), sink)
//
// A fetch failure drops the URL and never fails the crawl. Crawl returns an
// error only for an unusable seed, a failing sink or cancellation.
package crawler
