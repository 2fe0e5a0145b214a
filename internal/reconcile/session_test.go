package reconcile

import (
	"testing"

	"github.com/centsible/centsible/internal/extract"
	"github.com/centsible/centsible/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRule(t *testing.T) {
	rules := []model.ImportRule{
		{ID: "r1", Keyword: "starbucks", CategoryID: "cat-coffee"},
		{ID: "r2", Keyword: "shell", CategoryID: "cat-fuel"},
	}

	tests := []struct {
		want        *string
		name        string
		description string
	}{
		{
			name:        "case-insensitive substring match",
			description: "STARBUCKS #123 SEATTLE",
			want:        strptr("cat-coffee"),
		},
		{
			name:        "keyword in the middle of the description",
			description: "POS PURCHASE SHELL OIL 5552",
			want:        strptr("cat-fuel"),
		},
		{
			name:        "no rule matches",
			description: "TRADER JOES",
			want:        nil,
		},
		{
			name:        "empty description",
			description: "",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchRule(rules, tt.description)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}

func TestMatchRule_FirstMatchWins(t *testing.T) {
	// The generic "amazon" rule precedes the more specific "amazon prime"
	// rule, so it wins even though both match.
	rules := []model.ImportRule{
		{ID: "r1", Keyword: "amazon", CategoryID: "cat-shopping"},
		{ID: "r2", Keyword: "amazon prime", CategoryID: "cat-subscriptions"},
	}

	got := MatchRule(rules, "AMAZON PRIME VIDEO")
	require.NotNil(t, got)
	assert.Equal(t, "cat-shopping", *got)

	// Reordering the rules changes the outcome; match order is rule
	// storage order, not specificity.
	reordered := []model.ImportRule{rules[1], rules[0]}
	got = MatchRule(reordered, "AMAZON PRIME VIDEO")
	require.NotNil(t, got)
	assert.Equal(t, "cat-subscriptions", *got)
}

func TestNewSession(t *testing.T) {
	rules := []model.ImportRule{
		{ID: "r1", Keyword: "starbucks", CategoryID: "cat-coffee"},
	}
	categories := []model.Category{
		{ID: "cat-coffee", Name: "Dining"},
		{ID: "cat-other", Name: "Other"},
	}
	methods := []model.PaymentMethod{
		{ID: "pm-visa", Name: "Visa"},
		{ID: "pm-cash", Name: "Cash"},
	}

	items := []extract.ExtractedItem{
		{Date: "2024-01-05", Description: "STARBUCKS #123", Amount: 4.50},
		{Date: "2024-01-06", Description: "TRADER JOES", Amount: 32.18},
	}

	session := NewSession(items, rules, categories, methods)
	require.Len(t, session.Batch, 2)

	first := session.Batch[0]
	assert.True(t, first.Selected)
	require.NotNil(t, first.CategoryID)
	assert.Equal(t, "cat-coffee", *first.CategoryID)
	require.NotNil(t, first.PaymentMethodID)
	assert.Equal(t, "pm-visa", *first.PaymentMethodID, "defaults to the first payment method")
	assert.Equal(t, 4.50, first.Amount)
	assert.False(t, first.Flagged)

	second := session.Batch[1]
	assert.True(t, second.Selected)
	assert.Nil(t, second.CategoryID, "unmatched description stays uncategorized")
	require.NotNil(t, second.PaymentMethodID)
	assert.Equal(t, "pm-visa", *second.PaymentMethodID)

	assert.Equal(t, categories, session.Categories)
	assert.Equal(t, methods, session.Methods)
}

func TestNewSession_EmptyExtraction(t *testing.T) {
	session := NewSession(nil, nil, nil, nil)
	assert.Empty(t, session.Batch)
}

func TestNewSession_NoPaymentMethods(t *testing.T) {
	items := []extract.ExtractedItem{
		{Date: "2024-01-05", Description: "STARBUCKS", Amount: 4.50},
	}

	session := NewSession(items, nil, nil, nil)
	require.Len(t, session.Batch, 1)
	assert.Nil(t, session.Batch[0].PaymentMethodID, "left null and surfaced at validation time")
}

func TestNewSession_MalformedExtractionRows(t *testing.T) {
	items := []extract.ExtractedItem{
		{Date: "01/05/2024", Description: "BAD DATE FORMAT", Amount: 12.00},
		{Date: "2024-01-06", Description: "FINE", Amount: 5.00},
	}

	session := NewSession(items, nil, nil, []model.PaymentMethod{{ID: "pm-1"}})
	require.Len(t, session.Batch, 2, "malformed rows are kept, not dropped")

	assert.True(t, session.Batch[0].Flagged)
	assert.NotEmpty(t, session.Batch[0].FlagReason)
	assert.True(t, session.Batch[0].Selected, "flagged rows still start selected for editing")
	assert.False(t, session.Batch[1].Flagged)
}

func strptr(s string) *string {
	return &s
}
