package crawler

import (
	"sync"
)

// Phase is the lifecycle stage of a company crawl.
type Phase int

const (
	// PhaseIdle means the crawl has not started.
	PhaseIdle Phase = iota
	// PhaseScanning means layers are being fetched.
	PhaseScanning
	// PhaseDone means the crawl terminated.
	PhaseDone
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseScanning:
		return "scanning"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// State is the mutable state of one company crawl.
// It is owned by a single Crawl call and shared only among that call's
// fetch goroutines, which is why every method takes the mutex.
//
// Design decision: a URL is "seen" once it is queued or dispatched and
// "visited" once its fetch succeeded. Dedup works on the seen set, so a URL
// whose fetch failed is never fetched again during the same crawl.
type State struct {
	mu sync.Mutex

	baseDomain string
	depth      int
	phase      Phase

	frontier *Frontier
	next     *Frontier

	seen    map[string]struct{}
	visited map[string]struct{}

	emails   []string
	emailSet map[string]struct{}
	phones   []string
	phoneSet map[string]struct{}

	domainEmails int
	pagesScanned int
	inFlight     int
}

// NewState creates the state for a crawl starting at seed.
func NewState(baseDomain, seed string) *State {
	return &State{
		baseDomain: baseDomain,
		phase:      PhaseIdle,
		frontier:   NewFrontier(seed),
		next:       NewFrontier(),
		seen:       map[string]struct{}{seed: {}},
		visited:    make(map[string]struct{}),
		emailSet:   make(map[string]struct{}),
		phoneSet:   make(map[string]struct{}),
	}
}

// BaseDomain returns the registrable domain of the crawled site.
func (s *State) BaseDomain() string {
	return s.baseDomain
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) setPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
}

// Depth returns the depth of the current frontier.
func (s *State) Depth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.depth
}

// Frontier returns the URLs of the current layer.
func (s *State) Frontier() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frontier.URLs()
}

// Enqueue adds u to the next layer unless it was already seen.
// It reports whether u was added.
func (s *State) Enqueue(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	s.next.Add(u)
	return true
}

// MarkSeen records u as seen without queuing it. It is used for redirect
// targets, which were fetched under another URL.
func (s *State) MarkSeen(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[u] = struct{}{}
}

// Seen reports whether u was already queued or dispatched.
func (s *State) Seen(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[u]
	return ok
}

// Advance makes the next layer current and increments the depth.
// It returns the size of the new frontier.
func (s *State) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frontier = s.next
	s.next = NewFrontier()
	s.depth++
	return s.frontier.Len()
}

// Reserve counts one more fetch in flight and returns its ordinal: the
// number of pages scanned or in flight, this one included.
func (s *State) Reserve() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	return s.pagesScanned + s.inFlight
}

// Load returns the number of pages scanned or in flight.
func (s *State) Load() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesScanned + s.inFlight
}

// Release ends a fetch started with Reserve. When ok is true the page counts
// as scanned and u is marked visited.
func (s *State) Release(u string, ok bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
	if ok {
		s.visited[u] = struct{}{}
		s.pagesScanned++
	}
	return s.pagesScanned
}

// Visited reports whether u was fetched successfully.
func (s *State) Visited(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[u]
	return ok
}

// PagesScanned returns the number of pages fetched and parsed.
func (s *State) PagesScanned() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagesScanned
}

// MergeContacts adds the values of c not already known and returns the new
// ones. matchDomain decides whether a new email counts toward the
// domain-email total.
func (s *State) MergeContacts(c Contacts, matchDomain func(email string) bool) Contacts {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added Contacts
	for _, e := range c.Emails {
		if _, ok := s.emailSet[e]; ok {
			continue
		}
		s.emailSet[e] = struct{}{}
		s.emails = append(s.emails, e)
		added.Emails = append(added.Emails, e)
		if matchDomain != nil && matchDomain(e) {
			s.domainEmails++
		}
	}
	for _, p := range c.Phones {
		key := PhoneKey(p)
		if _, ok := s.phoneSet[key]; ok {
			continue
		}
		s.phoneSet[key] = struct{}{}
		s.phones = append(s.phones, p)
		added.Phones = append(added.Phones, p)
	}
	return added
}

// Counts returns the domain-email and phone totals used by the termination
// policy.
func (s *State) Counts() (domainEmails, phones int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domainEmails, len(s.phones)
}

// Snapshot is a copy of the collected values at one point in time.
type Snapshot struct {
	Depth        int
	PagesScanned int
	Emails       []string
	Phones       []string
	DomainEmails int
}

// Snapshot returns a copy of the collected values.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Depth:        s.depth,
		PagesScanned: s.pagesScanned,
		Emails:       make([]string, len(s.emails)),
		Phones:       make([]string, len(s.phones)),
		DomainEmails: s.domainEmails,
	}
	copy(snap.Emails, s.emails)
	copy(snap.Phones, s.phones)
	return snap
}
