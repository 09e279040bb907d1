package config

import (
	"maps"
	"strings"

	"github.com/nao1215/leadcrawl/internal/crawler"
)

// SiteConfig holds settings for one company website.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for requests to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global maximum depth. Zero keeps the global value.
	Depth int `yaml:"depth,omitempty"`

	// IgnorePatterns are URL path globs that are never fetched.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns, when set, restrict fetching to matching URL paths.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// CrawlSettings tunes the crawl controller from the config file. Nil
// pointers and empty values keep the CLI value.
type CrawlSettings struct {
	ContactKeywords     []string `yaml:"contactKeywords,omitempty"`
	ExcludeKeywords     []string `yaml:"excludeKeywords,omitempty"`
	EmailPattern        string   `yaml:"emailPattern,omitempty"`
	PhonePattern        string   `yaml:"phonePattern,omitempty"`
	EmailThreshold      *int     `yaml:"emailThreshold,omitempty"`
	PhoneThreshold      *int     `yaml:"phoneThreshold,omitempty"`
	SoftCeiling         *int     `yaml:"softCeiling,omitempty"`
	SoftCeilingMinDepth *int     `yaml:"softCeilingMinDepth,omitempty"`
	HardCeiling         *int     `yaml:"hardCeiling,omitempty"`
}

// File is the structure of the .leadcrawl configuration file.
type File struct {
	// Crawl overrides crawl controller settings.
	Crawl CrawlSettings `yaml:"crawl,omitempty"`

	// Sites maps a host or registrable domain (e.g. "example.nl") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless the site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the defaults merged with the entry for host. The
// entry is looked up by the exact host, then without a leading "www.", then
// by the registrable domain.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	site, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.Depth != 0 {
		result.Depth = site.Depth
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}
	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	candidates := []string{host, strings.TrimPrefix(host, "www."), crawler.BaseDomain(host)}
	for _, key := range candidates {
		if site, ok := cf.Sites[key]; ok {
			return site, true
		}
	}
	return SiteConfig{}, false
}
