package output

import (
	"context"

	"github.com/nao1215/leadcrawl/internal/model"
)

// ContactStore is the part of the contact database DBSink needs.
type ContactStore interface {
	InsertContact(ctx context.Context, rec model.ContactRecord) (bool, error)
}

// DBSink stores records in a ContactStore.
type DBSink struct {
	store ContactStore
}

// NewDBSink creates a sink over store.
func NewDBSink(store ContactStore) *DBSink {
	return &DBSink{store: store}
}

// Emit stores rec. A value the company already had is not an error.
func (s *DBSink) Emit(ctx context.Context, rec model.ContactRecord) error {
	_, err := s.store.InsertContact(ctx, rec)
	return err
}
