package crawler

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ResolveMode selects how relative hrefs are joined.
type ResolveMode int

const (
	// ResolveRoot joins every relative href against the domain root,
	// so "contact" and "/contact" both resolve to https://host/contact.
	// This matches the simple-site conventions most lead websites follow.
	ResolveRoot ResolveMode = iota

	// ResolvePage resolves relative hrefs against the URL of the page they
	// were found on, following RFC 3986 reference resolution.
	ResolvePage
)

// String returns the flag value of the mode.
func (m ResolveMode) String() string {
	if m == ResolvePage {
		return "page"
	}
	return "root"
}

// ParseResolveMode parses "root" or "page".
func ParseResolveMode(s string) (ResolveMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "root":
		return ResolveRoot, nil
	case "page":
		return ResolvePage, nil
	default:
		return ResolveRoot, fmt.Errorf("unknown resolve mode %q: want root or page", s)
	}
}

// pseudoSchemes are href prefixes that never denote a crawlable page.
var pseudoSchemes = []string{"javascript:", "tel:", "data:"}

// Resolver turns raw anchor hrefs into canonical absolute URLs scoped to the
// base domain of a company's seed site.
//
// Design decision: canonicalization is deliberately shallow. Two URLs are the
// same page when their canonical strings are equal; trailing slashes, query
// parameter order and similar variations are not folded together.
type Resolver struct {
	// seed is the canonical seed URL.
	seed *url.URL

	// root is scheme://host/ of the seed, used as the base in ResolveRoot mode.
	root *url.URL

	// baseDomain is the registrable domain (eTLD+1) of the seed host.
	baseDomain string

	mode ResolveMode
}

// NewResolver creates a Resolver for the given seed URL.
// A seed without scheme gets https:// prefixed.
func NewResolver(seedURL string, mode ResolveMode) (*Resolver, error) {
	seed, err := NormalizeSeed(seedURL)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		seed:       seed,
		root:       &url.URL{Scheme: seed.Scheme, Host: seed.Host, Path: "/"},
		baseDomain: BaseDomain(seed.Hostname()),
		mode:       mode,
	}, nil
}

// Seed returns the canonical seed URL.
func (r *Resolver) Seed() string {
	return r.seed.String()
}

// BaseDomain returns the registrable domain of the seed site.
func (r *Resolver) BaseDomain() string {
	return r.baseDomain
}

// Resolve canonicalizes href found on the page fromPage.
// It returns one of ErrEmptyLink, ErrPseudoLink, ErrExternalLink or
// ErrMalformedLink when the link is not crawlable.
func (r *Resolver) Resolve(fromPage, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyLink
	}
	if href == "/" || strings.HasPrefix(href, "#") {
		return "", ErrPseudoLink
	}

	lower := strings.ToLower(href)
	if strings.Contains(lower, "mailto:") {
		return "", ErrPseudoLink
	}
	for _, prefix := range pseudoSchemes {
		if strings.HasPrefix(lower, prefix) {
			return "", ErrPseudoLink
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedLink, err)
	}

	var base *url.URL
	switch {
	case ref.Scheme != "":
		if !isHTTPScheme(ref.Scheme) {
			return "", ErrPseudoLink
		}
		if ref.Host == "" {
			return "", ErrMalformedLink
		}
		base = r.root
	case ref.Host != "":
		// Protocol-relative link: //host/path
		base = r.root
	default:
		base = r.relativeBase(fromPage)
		if r.mode == ResolveRoot && !strings.HasPrefix(ref.Path, "/") {
			ref.Path = "/" + ref.Path
			ref.RawPath = ""
		}
	}

	abs := base.ResolveReference(ref)
	if !r.sameSite(abs.Hostname()) {
		return "", ErrExternalLink
	}

	return r.canonical(abs), nil
}

// relativeBase returns the URL relative hrefs are joined against.
func (r *Resolver) relativeBase(fromPage string) *url.URL {
	if r.mode != ResolvePage || fromPage == "" {
		return r.root
	}
	u, err := url.Parse(fromPage)
	if err != nil || u.Host == "" {
		return r.root
	}
	return u
}

// sameSite reports whether host belongs to the seed's base domain.
func (r *Resolver) sameSite(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	return host == r.baseDomain || strings.HasSuffix(host, "."+r.baseDomain)
}

// canonical renders u in the form used for visited-set comparison.
func (r *Resolver) canonical(u *url.URL) string {
	c := *u
	c.Scheme = r.seed.Scheme
	c.Host = strings.ToLower(c.Host)
	c.User = nil
	c.Fragment = ""
	c.RawFragment = ""
	c.Path = collapseSlashes(c.Path)
	c.RawPath = ""
	if c.Path == "" {
		c.Path = "/"
	}
	return c.String()
}

// NormalizeSeed parses a seed URL as found in a lead list.
// Lead lists often omit the scheme ("www.example.nl"), in which case
// https:// is assumed.
func NormalizeSeed(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidSeed
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if !isHTTPScheme(u.Scheme) || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = collapseSlashes(u.Path)
	u.RawPath = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u, nil
}

// BaseDomain returns the registrable domain (eTLD+1) of host.
// IP addresses, single-label hosts and hosts the public suffix list cannot
// split are returned unchanged (lowercased).
func BaseDomain(host string) string {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

func isHTTPScheme(scheme string) bool {
	scheme = strings.ToLower(scheme)
	return scheme == "http" || scheme == "https"
}

// collapseSlashes replaces runs of "/" in a path with a single "/".
func collapseSlashes(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return p
}
