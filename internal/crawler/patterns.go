package crawler

import (
	"net/url"
	"path"
	"strings"
)

// PathFilter applies per-site ignore and follow glob patterns to URL paths.
//
// Patterns support "*" and "?" within one path segment, a trailing "/*"
// for a whole subtree, and "*.ext" for a file extension anywhere.
type PathFilter struct {
	// Ignore patterns win over Follow patterns.
	Ignore []string
	// Follow, when non-empty, restricts the crawl to matching paths.
	Follow []string
}

// Allow reports whether rawURL may be crawled.
func (f PathFilter) Allow(rawURL string) bool {
	if len(f.Ignore) == 0 && len(f.Follow) == 0 {
		return true
	}

	p := "/"
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}

	for _, pattern := range f.Ignore {
		if globMatch(pattern, p) {
			return false
		}
	}
	if len(f.Follow) == 0 {
		return true
	}
	for _, pattern := range f.Follow {
		if globMatch(pattern, p) {
			return true
		}
	}
	return false
}

// globMatch matches a URL path against a crawl pattern.
func globMatch(pattern, p string) bool {
	if pattern == "" {
		return false
	}

	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*."); ok && !strings.Contains(ext, "/") {
		return strings.HasSuffix(strings.ToLower(p), "."+strings.ToLower(ext))
	}

	if ok, err := path.Match(pattern, p); err == nil && ok {
		return true
	}

	// Patterns without a slash also match the last path segment.
	if !strings.Contains(pattern, "/") {
		ok, err := path.Match(pattern, path.Base(p))
		return err == nil && ok
	}
	return false
}
