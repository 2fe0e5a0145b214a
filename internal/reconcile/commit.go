package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
	"github.com/centsible/centsible/internal/service"
	"github.com/google/uuid"
)

// Committer persists validated review batches. Now and NewID exist so tests
// can pin timestamps and IDs; they default to time.Now and uuid.NewString.
type Committer struct {
	Store service.Storage
	Now   func() time.Time
	NewID func() string
}

// NewCommitter creates a committer backed by the given store.
func NewCommitter(store service.Storage) *Committer {
	return &Committer{Store: store}
}

// Commit validates the batch and writes the commit set to the store as one
// atomic insert. On a validation failure the store is never called. On a
// store failure the batch value is untouched, so the caller can retry the
// same commit once the store recovers.
//
// Commit is not idempotent: committing the same batch twice double-inserts.
// The interactive layer ends the session after the first success.
func (c *Committer) Commit(ctx context.Context, batch ReviewBatch) (int, error) {
	commitSet, err := batch.Validate()
	if err != nil {
		return 0, fmt.Errorf("batch validation failed: %w", err)
	}

	now := time.Now().UTC()
	if c.Now != nil {
		now = c.Now()
	}
	newID := uuid.NewString
	if c.NewID != nil {
		newID = c.NewID
	}

	expenses := make([]model.Expense, 0, len(commitSet))
	for _, candidate := range commitSet {
		expenses = append(expenses, candidate.ToExpense(newID(), now))
	}

	if err := c.Store.InsertExpenses(ctx, expenses); err != nil {
		return 0, fmt.Errorf("%w: %w", common.ErrPersistenceFailed, err)
	}

	slog.Info("committed import batch", "imported", len(expenses), "reviewed", len(batch))
	return len(expenses), nil
}
