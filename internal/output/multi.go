package output

import (
	"context"
	"errors"

	"github.com/nao1215/leadcrawl/internal/model"
)

// Sink is implemented by every sink in this package.
type Sink interface {
	Emit(ctx context.Context, rec model.ContactRecord) error
}

// Multi emits each record to every sink in order.
type Multi []Sink

// Emit calls Emit on every sink, even after one fails, and joins the errors.
func (m Multi) Emit(ctx context.Context, rec model.ContactRecord) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
