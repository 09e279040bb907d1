package crawler

// Frontier is the ordered, duplicate-free list of URLs to fetch at one depth.
// It is not safe for concurrent use; State guards it.
type Frontier struct {
	urls  []string
	index map[string]struct{}
}

// NewFrontier creates a frontier holding the given URLs in order.
func NewFrontier(urls ...string) *Frontier {
	f := &Frontier{index: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		f.Add(u)
	}
	return f
}

// Add appends u unless it is already present. It reports whether u was added.
func (f *Frontier) Add(u string) bool {
	if _, ok := f.index[u]; ok {
		return false
	}
	f.index[u] = struct{}{}
	f.urls = append(f.urls, u)
	return true
}

// Contains reports whether u is in the frontier.
func (f *Frontier) Contains(u string) bool {
	_, ok := f.index[u]
	return ok
}

// Len returns the number of URLs in the frontier.
func (f *Frontier) Len() int {
	return len(f.urls)
}

// URLs returns a copy of the URLs in insertion order.
func (f *Frontier) URLs() []string {
	out := make([]string, len(f.urls))
	copy(out, f.urls)
	return out
}
