package crawler

import (
	"errors"
	"testing"
)

func TestResolverRejectsNonNavigableLinks(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("https://example.nl", ResolveRoot)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	tests := []struct {
		name string
		href string
		want error
	}{
		{name: "empty", href: "", want: ErrEmptyLink},
		{name: "whitespace", href: "   ", want: ErrEmptyLink},
		{name: "hash", href: "#", want: ErrPseudoLink},
		{name: "fragment only", href: "#contact", want: ErrPseudoLink},
		{name: "root only", href: "/", want: ErrPseudoLink},
		{name: "javascript", href: "javascript:void(0)", want: ErrPseudoLink},
		{name: "javascript upper case", href: "JavaScript:open()", want: ErrPseudoLink},
		{name: "mailto", href: "mailto:info@example.nl", want: ErrPseudoLink},
		{name: "mailto inside path", href: "/redirect?to=mailto:info@example.nl", want: ErrPseudoLink},
		{name: "tel", href: "tel:+31101234567", want: ErrPseudoLink},
		{name: "data", href: "data:text/html;base64,AAAA", want: ErrPseudoLink},
		{name: "ftp", href: "ftp://example.nl/file", want: ErrPseudoLink},
		{name: "external", href: "https://other.nl/contact", want: ErrExternalLink},
		{name: "external protocol relative", href: "//cdn.other.nl/x", want: ErrExternalLink},
		{name: "lookalike domain", href: "https://notexample.nl/", want: ErrExternalLink},
		{name: "malformed", href: "http://[::1", want: ErrMalformedLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Resolve("https://example.nl/", tt.href)
			if !errors.Is(err, tt.want) {
				t.Errorf("Resolve(%q) = %q, %v; want error %v", tt.href, got, err, tt.want)
			}
		})
	}
}

func TestResolverResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode ResolveMode
		from string
		href string
		want string
	}{
		{
			name: "root mode joins relative link at root",
			mode: ResolveRoot,
			from: "https://example.nl/products/list",
			href: "contact",
			want: "https://example.nl/contact",
		},
		{
			name: "root mode keeps rooted link",
			mode: ResolveRoot,
			from: "https://example.nl/products/list",
			href: "/over-ons",
			want: "https://example.nl/over-ons",
		},
		{
			name: "page mode resolves against current page",
			mode: ResolvePage,
			from: "https://example.nl/products/list",
			href: "contact",
			want: "https://example.nl/products/contact",
		},
		{
			name: "page mode resolves dot segments",
			mode: ResolvePage,
			from: "https://example.nl/a/b/c",
			href: "../contact",
			want: "https://example.nl/a/contact",
		},
		{
			name: "fragment is stripped",
			mode: ResolveRoot,
			href: "/contact#form",
			want: "https://example.nl/contact",
		},
		{
			name: "duplicate slashes are collapsed",
			mode: ResolveRoot,
			href: "/about//team///",
			want: "https://example.nl/about/team/",
		},
		{
			name: "host is lowercased",
			mode: ResolveRoot,
			href: "https://EXAMPLE.nl/Contact",
			want: "https://example.nl/Contact",
		},
		{
			name: "scheme follows the seed",
			mode: ResolveRoot,
			href: "http://example.nl/contact",
			want: "https://example.nl/contact",
		},
		{
			name: "subdomain is same site",
			mode: ResolveRoot,
			href: "https://www.example.nl/contact",
			want: "https://www.example.nl/contact",
		},
		{
			name: "protocol relative same site",
			mode: ResolveRoot,
			href: "//example.nl/faq",
			want: "https://example.nl/faq",
		},
		{
			name: "empty path becomes slash",
			mode: ResolveRoot,
			href: "https://shop.example.nl",
			want: "https://shop.example.nl/",
		},
		{
			name: "query is kept",
			mode: ResolveRoot,
			href: "/search?q=contact&page=2",
			want: "https://example.nl/search?q=contact&page=2",
		},
		{
			name: "query only link in root mode",
			mode: ResolveRoot,
			href: "?lang=en",
			want: "https://example.nl/?lang=en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := NewResolver("https://example.nl/", tt.mode)
			if err != nil {
				t.Fatalf("NewResolver() error = %v", err)
			}
			got, err := r.Resolve(tt.from, tt.href)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.href, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestResolverSameInputSameOutput(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("example.nl", ResolveRoot)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	variants := []string{
		"/contact",
		"contact",
		"https://example.nl/contact",
		"http://EXAMPLE.nl//contact",
		"/contact#top",
	}
	want := "https://example.nl/contact"
	for _, v := range variants {
		got, err := r.Resolve("https://example.nl/", v)
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", v, err)
		}
		if got != want {
			t.Errorf("Resolve(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestNormalizeSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "bare host gets https", raw: "www.example.nl", want: "https://www.example.nl/"},
		{name: "http kept", raw: "http://example.nl", want: "http://example.nl/"},
		{name: "upper case host", raw: "HTTPS://Example.NL/Home", want: "https://example.nl/Home"},
		{name: "surrounding space", raw: "  example.nl/  ", want: "https://example.nl/"},
		{name: "fragment dropped", raw: "example.nl/#main", want: "https://example.nl/"},
		{name: "empty", raw: "", wantErr: true},
		{name: "unsupported scheme", raw: "ftp://example.nl", wantErr: true},
		{name: "no host", raw: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeSeed(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSeed) {
					t.Errorf("NormalizeSeed(%q) error = %v, want ErrInvalidSeed", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeSeed(%q) error = %v", tt.raw, err)
			}
			if got.String() != tt.want {
				t.Errorf("NormalizeSeed(%q) = %q, want %q", tt.raw, got.String(), tt.want)
			}
		})
	}
}

func TestBaseDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{host: "www.example.nl", want: "example.nl"},
		{host: "shop.example.co.uk", want: "example.co.uk"},
		{host: "Example.NL", want: "example.nl"},
		{host: "127.0.0.1", want: "127.0.0.1"},
		{host: "localhost", want: "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			if got := BaseDomain(tt.host); got != tt.want {
				t.Errorf("BaseDomain(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestParseResolveMode(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "root", "ROOT"} {
		if m, err := ParseResolveMode(s); err != nil || m != ResolveRoot {
			t.Errorf("ParseResolveMode(%q) = %v, %v; want root", s, m, err)
		}
	}
	if m, err := ParseResolveMode("page"); err != nil || m != ResolvePage {
		t.Errorf("ParseResolveMode(page) = %v, %v; want page", m, err)
	}
	if _, err := ParseResolveMode("sideways"); err == nil {
		t.Error("ParseResolveMode(sideways) expected error")
	}
}
