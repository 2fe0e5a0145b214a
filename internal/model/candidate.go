package model

import (
	"math"
	"time"
)

// DateFormat is the calendar date layout used throughout the application.
const DateFormat = "2006-01-02"

// Flag reasons set on candidates built from malformed extraction rows.
const (
	FlagUnrecognizedDate = "unrecognized date"
	FlagUnreadableAmount = "unreadable amount"
)

// Candidate is an unpersisted, editable transaction proposal produced from
// statement extraction. Candidates live only inside a review session; on
// commit the selected ones become Expense records and the session is
// discarded.
type Candidate struct {
	Date            time.Time
	CategoryID      *string
	PaymentMethodID *string
	Description     string
	FlagReason      string
	Amount          float64
	Selected        bool
	Flagged         bool
}

// CandidateFromExtraction builds a Candidate from one raw extraction row.
// Extraction output is untrusted: a malformed date or non-finite amount
// flags the candidate for correction instead of failing the batch.
func CandidateFromExtraction(date, description string, amount float64) Candidate {
	c := Candidate{
		Description: description,
		Amount:      amount,
	}

	parsed, err := time.Parse(DateFormat, date)
	if err != nil {
		c.Flagged = true
		c.FlagReason = FlagUnrecognizedDate
	} else {
		c.Date = parsed
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		c.Amount = 0
		c.Flagged = true
		c.FlagReason = FlagUnreadableAmount
	}

	return c
}

// HasValidDate reports whether the candidate carries a usable calendar date.
func (c Candidate) HasValidDate() bool {
	return !c.Date.IsZero()
}

// ToExpense converts the candidate into an expense insert shape. The comment
// is populated from the extracted description.
func (c Candidate) ToExpense(id string, createdAt time.Time) Expense {
	return Expense{
		ID:              id,
		Date:            c.Date,
		Amount:          c.Amount,
		Comment:         c.Description,
		CategoryID:      c.CategoryID,
		PaymentMethodID: c.PaymentMethodID,
		CreatedAt:       createdAt,
	}
}
