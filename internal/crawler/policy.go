package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
)

// Default thresholds and ceilings.
const (
	DefaultEmailThreshold = 12
	DefaultPhoneThreshold = 6
	DefaultSoftCeiling    = 20
	DefaultHardCeiling    = 60
)

// DefaultContactKeywords are path substrings that mark a likely contact page.
var DefaultContactKeywords = []string{
	"contact", "about", "team", "support", "faq", "help",
	"getintouch", "get-in-touch", "klantenservice", "press", "terms",
}

// DefaultExcludeKeywords are path substrings that disqualify a URL even when
// it contains a contact keyword. "stopcontact" is Dutch for a power outlet.
var DefaultExcludeKeywords = []string{"stopcontact"}

// DomainMatcher decides whether an email address belongs to a base domain.
type DomainMatcher func(email, baseDomain string) bool

// TerminationPolicy decides when a company has yielded enough contacts.
type TerminationPolicy struct {
	// Emails is the number of on-domain emails that must be exceeded.
	Emails int
	// Phones is the number of phones that must be exceeded.
	Phones int
	// Matcher counts an email as on-domain. Nil means MatchesDomain.
	Matcher DomainMatcher
}

// DefaultTerminationPolicy returns the 12/6 policy.
func DefaultTerminationPolicy() TerminationPolicy {
	return TerminationPolicy{
		Emails:  DefaultEmailThreshold,
		Phones:  DefaultPhoneThreshold,
		Matcher: MatchesDomain,
	}
}

// ShouldStop reports whether both counts strictly exceed their thresholds.
func (p TerminationPolicy) ShouldStop(domainEmails, phones int) bool {
	return domainEmails > p.Emails && phones > p.Phones
}

// Matches applies the policy's matcher.
func (p TerminationPolicy) Matches(email, baseDomain string) bool {
	if p.Matcher == nil {
		return MatchesDomain(email, baseDomain)
	}
	return p.Matcher(email, baseDomain)
}

// MatchesDomain reports whether the domain part of email equals baseDomain
// or is a subdomain of it. Both sides are case-folded and converted to their
// ASCII (punycode) form before comparing.
//
// This is an approximation of "the company's own address": it says nothing
// about addresses hosted on a different registrable domain owned by the same
// company, and it trusts whatever the page text shows.
func MatchesDomain(email, baseDomain string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := normalizeDomain(email[at+1:])
	base := normalizeDomain(baseDomain)
	if domain == "" || base == "" {
		return false
	}
	return domain == base || strings.HasSuffix(domain, "."+base)
}

func normalizeDomain(d string) string {
	d = strings.TrimSuffix(cases.Fold().String(strings.TrimSpace(d)), ".")
	if ascii, err := idna.Lookup.ToASCII(d); err == nil {
		return ascii
	}
	return d
}

// Strictness is the page-selection mode of a crawl.
type Strictness int

const (
	// StrictnessBroad fetches and enqueues every same-site URL.
	StrictnessBroad Strictness = iota
	// StrictnessContactOnly fetches and enqueues only likely contact pages.
	StrictnessContactOnly
)

// String returns the strictness name.
func (s Strictness) String() string {
	if s == StrictnessContactOnly {
		return "contact-only"
	}
	return "broad"
}

// StrictnessPolicy pivots a crawl from broad exploration to contact pages
// once enough pages have been seen.
type StrictnessPolicy struct {
	// SoftCeiling applies from SoftCeilingMinDepth on. Zero disables it.
	SoftCeiling int
	// SoftCeilingMinDepth is the first depth the soft ceiling applies at.
	SoftCeilingMinDepth int
	// HardCeiling applies at every depth. Zero disables it.
	HardCeiling int
}

// DefaultStrictnessPolicy returns the 20/60 policy with the soft ceiling
// active from the seed on.
func DefaultStrictnessPolicy() StrictnessPolicy {
	return StrictnessPolicy{
		SoftCeiling: DefaultSoftCeiling,
		HardCeiling: DefaultHardCeiling,
	}
}

// Level returns the strictness for the page with the given ordinal (1 for
// the first page of the crawl) at the given depth. With a soft ceiling of 20
// the 21st page onward is contact-only.
func (p StrictnessPolicy) Level(page, depth int) Strictness {
	if p.SoftCeiling > 0 && page > p.SoftCeiling && depth >= p.SoftCeilingMinDepth {
		return StrictnessContactOnly
	}
	if p.HardCeiling > 0 && page > p.HardCeiling {
		return StrictnessContactOnly
	}
	return StrictnessBroad
}

// ContactFilter matches URLs whose path looks like a contact page.
type ContactFilter struct {
	Keywords []string
	Exclude  []string
}

// DefaultContactFilter returns a filter with the default keyword lists.
func DefaultContactFilter() ContactFilter {
	return ContactFilter{
		Keywords: DefaultContactKeywords,
		Exclude:  DefaultExcludeKeywords,
	}
}

// Match reports whether the path of rawURL contains a keyword and no
// exclusion keyword. Matching is case-insensitive.
func (f ContactFilter) Match(rawURL string) bool {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)

	for _, ex := range f.Exclude {
		if ex != "" && strings.Contains(path, strings.ToLower(ex)) {
			return false
		}
	}
	for _, kw := range f.Keywords {
		if kw != "" && strings.Contains(path, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
