package crawler

import (
	"errors"
	"fmt"
)

// Link rejection errors returned by Resolver.Resolve.
// A rejected link is never enqueued; callers usually just skip it.
var (
	// ErrEmptyLink is returned for an empty href.
	ErrEmptyLink = errors.New("empty link")

	// ErrPseudoLink is returned for links that do not point at a navigable page:
	// "#", "/", fragment-only anchors, javascript:, mailto:, tel:, data: and
	// any non-HTTP scheme.
	ErrPseudoLink = errors.New("not a navigable link")

	// ErrExternalLink is returned for absolute links outside the base domain.
	ErrExternalLink = errors.New("external link")

	// ErrMalformedLink is returned when the href cannot be parsed as a URL.
	ErrMalformedLink = errors.New("malformed link")
)

// Crawl-level errors.
var (
	// ErrInvalidSeed is returned when a company's seed URL cannot be normalized.
	ErrInvalidSeed = errors.New("invalid seed URL")

	// ErrCrawlAborted is returned when the crawl context is cancelled before the
	// crawl reached a terminal state. An aborted company must not be marked done.
	ErrCrawlAborted = errors.New("crawl aborted")

	// ErrNotHTML is wrapped in a FetchError when the response is not an HTML page.
	ErrNotHTML = errors.New("response is not HTML")

	// ErrUnexpectedStatus is wrapped in a FetchError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// FetchError describes a failed page fetch: a network failure, a timeout,
// a non-success status or a non-HTML response. Fetch errors are non-fatal;
// the URL is dropped and the crawl continues.
type FetchError struct {
	// URL is the page that failed.
	URL string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError describes malformed markup. The page degrades to "no links,
// no text" rather than aborting the crawl.
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}
