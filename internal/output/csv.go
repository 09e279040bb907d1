package output

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nao1215/leadcrawl/internal/model"
)

// ErrSinkClosed is returned by Emit after Close.
var ErrSinkClosed = errors.New("sink is closed")

// dateLayout names the daily files.
const dateLayout = "2006-01-02"

// CSVSink writes contact records to one CSV file per kind per day.
type CSVSink struct {
	mu     sync.Mutex
	dir    string
	now    func() time.Time
	files  map[string]*os.File
	closed bool
}

// CSVOption configures a CSVSink.
type CSVOption func(*CSVSink)

// WithClock sets the clock used to pick the file date.
func WithClock(now func() time.Time) CSVOption {
	return func(s *CSVSink) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCSVSink creates dir if needed and returns a sink writing into it.
func NewCSVSink(dir string, opts ...CSVOption) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	s := &CSVSink{
		dir:   dir,
		now:   time.Now,
		files: make(map[string]*os.File),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FileName returns the name of the file records of kind go to on day t.
func FileName(kind model.ContactKind, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", kind, t.Format(dateLayout))
}

// Header returns the CSV header of the file for kind.
func Header(kind model.ContactKind) []string {
	return []string{"company", "site", "page", kind.String()}
}

// Emit appends rec as one row and flushes it.
func (s *CSVSink) Emit(_ context.Context, rec model.ContactRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	f, err := s.file(rec.Kind)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.Company, rec.Site, rec.Page, rec.Value}); err != nil {
		return fmt.Errorf("failed to write %s record: %w", rec.Kind, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s record: %w", rec.Kind, err)
	}
	return nil
}

// file returns the open file for kind and today, opening it and writing the
// header when the file is new.
func (s *CSVSink) file(kind model.ContactKind) (*os.File, error) {
	name := FileName(kind, s.now())
	if f, ok := s.files[name]; ok {
		return f, nil
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // path built from configured directory
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(Header(kind)); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write header to %s: %w", path, err)
		}
	}

	s.files[name] = f
	return f, nil
}

// Close syncs and closes every open file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for name, f := range s.files {
		if err := f.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("failed to sync %s: %w", name, err))
		}
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	s.files = nil
	return errors.Join(errs...)
}
