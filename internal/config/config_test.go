package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "MaxDepth", got: cfg.MaxDepth, want: 3},
		{name: "SoftCeiling", got: cfg.SoftCeiling, want: 20},
		{name: "SoftCeilingMinDepth", got: cfg.SoftCeilingMinDepth, want: 0},
		{name: "HardCeiling", got: cfg.HardCeiling, want: 60},
		{name: "EmailThreshold", got: cfg.EmailThreshold, want: 12},
		{name: "PhoneThreshold", got: cfg.PhoneThreshold, want: 6},
		{name: "FetchTimeout", got: cfg.FetchTimeout, want: 10 * time.Second},
		{name: "Workers", got: cfg.Workers, want: 4},
		{name: "FetchConcurrency", got: cfg.FetchConcurrency, want: 5},
		{name: "CrawlDelay", got: cfg.CrawlDelay, want: 250 * time.Millisecond},
		{name: "ResolveMode", got: cfg.ResolveMode, want: "root"},
		{name: "SaveToDB", got: cfg.SaveToDB, want: true},
		{name: "LogFormat", got: cfg.LogFormat, want: "text"},
		{name: "LedgerPath", got: filepath.Base(cfg.LedgerPath), want: "enriched_leads.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	t.Run("keyword lists are copies", func(t *testing.T) {
		t.Parallel()

		other := NewConfig()
		other.ContactKeywords[0] = "changed"
		if cfg.ContactKeywords[0] == "changed" {
			t.Error("NewConfig shares the keyword slice between configs")
		}
		if len(cfg.ExcludeKeywords) != 1 || cfg.ExcludeKeywords[0] != "stopcontact" {
			t.Errorf("ExcludeKeywords = %v", cfg.ExcludeKeywords)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.LeadFiles = []string{"leads.csv"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "leads dir only", modify: func(c *Config) { c.LeadFiles = nil; c.LeadsDir = "in" }},
		{name: "no leads", modify: func(c *Config) { c.LeadFiles = nil }, wantErr: ErrNoLeads},
		{name: "zero depth", modify: func(c *Config) { c.MaxDepth = 0 }, wantErr: ErrInvalidDepth},
		{name: "zero timeout", modify: func(c *Config) { c.FetchTimeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{name: "zero fan-out", modify: func(c *Config) { c.FetchConcurrency = 0 }, wantErr: ErrInvalidFanOut},
		{name: "zero delay allowed", modify: func(c *Config) { c.CrawlDelay = 0 }},
		{name: "negative delay", modify: func(c *Config) { c.CrawlDelay = -time.Second }, wantErr: ErrInvalidCrawlDelay},
		{name: "negative body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "zero thresholds allowed", modify: func(c *Config) { c.EmailThreshold = 0; c.PhoneThreshold = 0 }},
		{name: "negative threshold", modify: func(c *Config) { c.PhoneThreshold = -1 }, wantErr: ErrInvalidThreshold},
		{name: "negative ceiling", modify: func(c *Config) { c.SoftCeiling = -1 }, wantErr: ErrInvalidCeiling},
		{name: "hard below soft", modify: func(c *Config) { c.SoftCeiling = 30; c.HardCeiling = 10 }, wantErr: ErrInvalidCeiling},
		{name: "ceilings disabled", modify: func(c *Config) { c.SoftCeiling = 0; c.HardCeiling = 0 }},
		{name: "page mode", modify: func(c *Config) { c.ResolveMode = "page" }},
		{name: "bad resolve mode", modify: func(c *Config) { c.ResolveMode = "sideways" }, wantErr: ErrInvalidResolveMode},
		{name: "bad email pattern", modify: func(c *Config) { c.EmailPattern = "([a-z" }, wantErr: ErrInvalidPattern},
		{name: "bad phone pattern", modify: func(c *Config) { c.PhonePattern = "(" }, wantErr: ErrInvalidPattern},
		{name: "empty output dir", modify: func(c *Config) { c.OutputDir = "" }, wantErr: ErrEmptyOutputDir},
		{name: "empty ledger path", modify: func(c *Config) { c.LedgerPath = "" }, wantErr: ErrEmptyLedgerPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFile(t *testing.T) {
	t.Parallel()

	five, zero := 5, 0
	file := &File{
		Crawl: CrawlSettings{
			ContactKeywords: []string{"kontakt"},
			EmailPattern:    `[a-z]+@[a-z]+\.nl`,
			EmailThreshold:  &five,
			PhoneThreshold:  &five,
			HardCeiling:     &zero,
		},
	}

	t.Run("file values apply", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(file, nil)
		if cfg.EmailThreshold != 5 || cfg.PhoneThreshold != 5 {
			t.Errorf("thresholds = %d/%d, want 5/5", cfg.EmailThreshold, cfg.PhoneThreshold)
		}
		if cfg.HardCeiling != 0 {
			t.Errorf("HardCeiling = %d, want 0 from file", cfg.HardCeiling)
		}
		if cfg.SoftCeiling != DefaultSoftCeiling {
			t.Errorf("SoftCeiling = %d, want default", cfg.SoftCeiling)
		}
		if len(cfg.ContactKeywords) != 1 || cfg.ContactKeywords[0] != "kontakt" {
			t.Errorf("ContactKeywords = %v", cfg.ContactKeywords)
		}
		if cfg.ExcludeKeywords[0] != "stopcontact" {
			t.Errorf("ExcludeKeywords = %v, want default", cfg.ExcludeKeywords)
		}
		if cfg.EmailPattern == "" || cfg.PhonePattern != "" {
			t.Errorf("patterns = %q/%q", cfg.EmailPattern, cfg.PhonePattern)
		}
		if cfg.SiteConfigs != file {
			t.Error("SiteConfigs not set")
		}
	})

	t.Run("explicit flags win", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.EmailThreshold = 20
		cfg.ApplyFile(file, func(flag string) bool { return flag == "email-threshold" })
		if cfg.EmailThreshold != 20 {
			t.Errorf("EmailThreshold = %d, want flag value 20", cfg.EmailThreshold)
		}
		if cfg.PhoneThreshold != 5 {
			t.Errorf("PhoneThreshold = %d, want file value 5", cfg.PhoneThreshold)
		}
	})

	t.Run("nil file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil, nil)
		if cfg.SiteConfigs != nil {
			t.Error("SiteConfigs set from nil file")
		}
	})
}

func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: SiteConfig{
			Headers:        map[string]string{"Accept-Language": "nl-NL"},
			IgnorePatterns: []string{"/blog/*"},
		},
		Sites: map[string]SiteConfig{
			"example.nl": {
				Cookie:  "consent=yes",
				Depth:   2,
				Headers: map[string]string{"X-Api-Key": "k"},
			},
			"shop.other.nl": {
				FollowPatterns: []string{"/contact*"},
			},
		},
	}

	tests := []struct {
		name       string
		host       string
		wantCookie string
		wantDepth  int
		wantHeader int
		wantFollow int
	}{
		{name: "exact domain", host: "example.nl", wantCookie: "consent=yes", wantDepth: 2, wantHeader: 2},
		{name: "www prefix", host: "www.example.nl", wantCookie: "consent=yes", wantDepth: 2, wantHeader: 2},
		{name: "subdomain via base domain", host: "Shop.Example.NL", wantCookie: "consent=yes", wantDepth: 2, wantHeader: 2},
		{name: "exact host entry", host: "shop.other.nl", wantHeader: 1, wantFollow: 1},
		{name: "unknown host gets defaults", host: "unknown.nl", wantHeader: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := file.GetSiteConfig(tt.host)
			if got.Cookie != tt.wantCookie {
				t.Errorf("Cookie = %q, want %q", got.Cookie, tt.wantCookie)
			}
			if got.Depth != tt.wantDepth {
				t.Errorf("Depth = %d, want %d", got.Depth, tt.wantDepth)
			}
			if len(got.Headers) != tt.wantHeader {
				t.Errorf("Headers = %v, want %d entries", got.Headers, tt.wantHeader)
			}
			if len(got.FollowPatterns) != tt.wantFollow {
				t.Errorf("FollowPatterns = %v", got.FollowPatterns)
			}
			if len(got.IgnorePatterns) != 1 {
				t.Errorf("IgnorePatterns = %v, want defaults", got.IgnorePatterns)
			}
		})
	}

	t.Run("merging does not change defaults", func(t *testing.T) {
		t.Parallel()

		_ = file.GetSiteConfig("example.nl")
		if len(file.Defaults.Headers) != 1 {
			t.Errorf("Defaults.Headers = %v, mutated by merge", file.Defaults.Headers)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".leadcrawl")
		content := `crawl:
  contactKeywords: [contact, kontakt]
  emailThreshold: 3
  softCeiling: 10
defaults:
  headers:
    Accept-Language: nl-NL
sites:
  example.nl:
    cookie: "consent=yes"
    depth: 2
    ignorePatterns:
      - "/vacatures/*"
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		if f.Crawl.EmailThreshold == nil || *f.Crawl.EmailThreshold != 3 {
			t.Errorf("Crawl.EmailThreshold = %v, want 3", f.Crawl.EmailThreshold)
		}
		if f.Crawl.PhoneThreshold != nil {
			t.Errorf("Crawl.PhoneThreshold = %v, want nil", *f.Crawl.PhoneThreshold)
		}
		if len(f.Crawl.ContactKeywords) != 2 {
			t.Errorf("ContactKeywords = %v", f.Crawl.ContactKeywords)
		}
		site := f.Sites["example.nl"]
		if site.Cookie != "consent=yes" || site.Depth != 2 || len(site.IgnorePatterns) != 1 {
			t.Errorf("site = %+v", site)
		}
		if f.Defaults.Headers["Accept-Language"] != "nl-NL" {
			t.Errorf("Defaults.Headers = %v", f.Defaults.Headers)
		}
	})

	t.Run("empty file has sites map", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".leadcrawl")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if f.Sites == nil {
			t.Error("Sites is nil")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".leadcrawl")
		if err := os.WriteFile(path, []byte("sites: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := LoadConfigFile(path)
		if err == nil || !strings.Contains(err.Error(), "parse") {
			t.Errorf("error = %v, want parse error", err)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if got := filepath.Base(XDGDataDir()); got != AppName {
		t.Errorf("XDGDataDir() = %q, want suffix %q", XDGDataDir(), AppName)
	}
	if got := filepath.Base(XDGConfigDir()); got != AppName {
		t.Errorf("XDGConfigDir() = %q, want suffix %q", XDGConfigDir(), AppName)
	}
}
