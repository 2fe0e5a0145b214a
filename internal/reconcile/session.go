// Package reconcile implements the statement-import review engine: it
// auto-categorizes extracted candidates with the user's import rules, holds
// the editable review batch, validates the selection, and commits the batch
// as one atomic insert.
//
// The engine is a pure functional core. Every operation takes a batch value
// and returns a new one; the interactive layer owns the current value and
// the session lifecycle.
package reconcile

import (
	"strings"

	"github.com/centsible/centsible/internal/extract"
	"github.com/centsible/centsible/internal/model"
)

// Session holds the review batch for one import plus the reference data
// needed to render edit controls. Reference data is loaded once at session
// start; rule or category changes made elsewhere do not affect an active
// session.
type Session struct {
	Batch      ReviewBatch
	Categories []model.Category
	Methods    []model.PaymentMethod
}

// NewSession derives a review batch from raw extraction output. Every
// candidate starts selected, with its payment method defaulted to the first
// available method and its category resolved by rule matching. Malformed
// extraction fields flag the candidate rather than failing the batch. An
// empty extraction produces an empty batch, not an error.
func NewSession(items []extract.ExtractedItem, rules []model.ImportRule, categories []model.Category, methods []model.PaymentMethod) *Session {
	var defaultMethod *string
	if len(methods) > 0 {
		id := methods[0].ID
		defaultMethod = &id
	}

	batch := make(ReviewBatch, 0, len(items))
	for _, item := range items {
		c := model.CandidateFromExtraction(item.Date, item.Description, item.Amount)
		c.Selected = true
		c.CategoryID = MatchRule(rules, item.Description)
		c.PaymentMethodID = defaultMethod
		batch = append(batch, c)
	}

	return &Session{
		Batch:      batch,
		Categories: categories,
		Methods:    methods,
	}
}

// MatchRule returns the category of the first rule whose keyword is a
// case-insensitive substring of the description, or nil if none match.
// Rules are scanned in the order given; reordering the rules can change
// the result, which is why the store returns them in stored order.
func MatchRule(rules []model.ImportRule, description string) *string {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		if strings.Contains(desc, strings.ToLower(rule.Keyword)) {
			categoryID := rule.CategoryID
			return &categoryID
		}
	}
	return nil
}
