package crawler

import "testing"

func TestPathFilterAllow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter PathFilter
		url    string
		want   bool
	}{
		{name: "no patterns", filter: PathFilter{}, url: "https://example.nl/anything", want: true},
		{name: "ignored subtree", filter: PathFilter{Ignore: []string{"/shop/*"}}, url: "https://example.nl/shop/item/1", want: false},
		{name: "ignored subtree root", filter: PathFilter{Ignore: []string{"/shop/*"}}, url: "https://example.nl/shop", want: false},
		{name: "ignored extension", filter: PathFilter{Ignore: []string{"*.pdf"}}, url: "https://example.nl/docs/brochure.PDF", want: false},
		{name: "ignored segment glob", filter: PathFilter{Ignore: []string{"logout*"}}, url: "https://example.nl/account/logout-now", want: false},
		{name: "not ignored", filter: PathFilter{Ignore: []string{"/shop/*"}}, url: "https://example.nl/contact", want: true},
		{name: "follow matches", filter: PathFilter{Follow: []string{"/nl/*"}}, url: "https://example.nl/nl/contact", want: true},
		{name: "follow misses", filter: PathFilter{Follow: []string{"/nl/*"}}, url: "https://example.nl/en/contact", want: false},
		{
			name:   "ignore wins over follow",
			filter: PathFilter{Ignore: []string{"/nl/shop/*"}, Follow: []string{"/nl/*"}},
			url:    "https://example.nl/nl/shop/x",
			want:   false,
		},
		{name: "single char glob", filter: PathFilter{Follow: []string{"/v?"}}, url: "https://example.nl/v2", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.filter.Allow(tt.url); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
