package reconcile

import (
	"fmt"

	"github.com/centsible/centsible/internal/common"
	"github.com/centsible/centsible/internal/model"
)

// Validate checks the batch's commit set and returns it unchanged on
// success. Validation is all-or-nothing: a single incomplete selected row
// fails the whole batch, so no partial import can slip through. Checks run
// in a fixed order: empty selection, then missing categories, then missing
// payment methods, then rows still flagged from extraction.
func (b ReviewBatch) Validate() ([]model.Candidate, error) {
	commitSet := b.CommitSet()
	if len(commitSet) == 0 {
		return nil, common.ErrEmptySelection
	}

	for i, c := range commitSet {
		if c.CategoryID == nil {
			return nil, fmt.Errorf("%w: row %d (%s)", common.ErrMissingCategory, i+1, describe(c))
		}
	}

	for i, c := range commitSet {
		if c.PaymentMethodID == nil {
			return nil, fmt.Errorf("%w: row %d (%s)", common.ErrMissingPaymentMethod, i+1, describe(c))
		}
	}

	for i, c := range commitSet {
		if c.Flagged || !c.HasValidDate() {
			return nil, fmt.Errorf("%w: row %d (%s)", common.ErrIncompleteCandidate, i+1, describe(c))
		}
	}

	return commitSet, nil
}

func describe(c model.Candidate) string {
	desc := c.Description
	if len(desc) > 40 {
		desc = desc[:37] + "..."
	}
	if desc == "" {
		desc = "no description"
	}
	return desc
}
