// Package ledger records which companies have been fully enriched so an
// interrupted batch can resume where it stopped.
//
// The ledger is an append-only text file with one company name per line.
// Open replays the file into an in-memory set; MarkDone appends a line and
// syncs it to disk before returning. A torn last line (a crash mid-write)
// is ignored on the next Open.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrClosed is returned by MarkDone after Close.
var ErrClosed = errors.New("ledger is closed")

// Ledger is the set of completed company names.
// It is safe for concurrent use.
type Ledger struct {
	mu   sync.Mutex
	path string
	file *os.File
	done map[string]struct{}
}

// Open opens the ledger at path, creating it and its directory if needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	done, complete, err := replay(path)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	// Start appends on a fresh line if the last write was torn.
	if !complete {
		if _, err := f.WriteString("\n"); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to repair ledger: %w", err)
		}
	}

	return &Ledger{path: path, file: f, done: done}, nil
}

// replay reads the existing ledger. complete is false when the file does not
// end with a newline.
func replay(path string) (map[string]struct{}, bool, error) {
	done := make(map[string]struct{})

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return done, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read ledger: %w", err)
	}

	complete := len(data) == 0 || data[len(data)-1] == '\n'
	body := string(data)
	if !complete {
		// Drop the torn last line.
		if i := strings.LastIndexByte(body, '\n'); i >= 0 {
			body = body[:i+1]
		} else {
			body = ""
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			done[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to read ledger: %w", err)
	}
	return done, complete, nil
}

// Path returns the ledger file path.
func (l *Ledger) Path() string {
	return l.path
}

// IsDone reports whether name was marked done.
func (l *Ledger) IsDone(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[strings.TrimSpace(name)]
	return ok
}

// MarkDone records name as completed. Marking a name twice writes it once.
func (l *Ledger) MarkDone(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("ledger: empty company name")
	}
	if strings.ContainsAny(name, "\r\n") {
		return fmt.Errorf("ledger: company name %q contains a line break", name)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return ErrClosed
	}
	if _, ok := l.done[name]; ok {
		return nil
	}

	if _, err := l.file.WriteString(name + "\n"); err != nil {
		return fmt.Errorf("failed to append to ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	l.done[name] = struct{}{}
	return nil
}

// Len returns the number of completed companies.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// Close closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
