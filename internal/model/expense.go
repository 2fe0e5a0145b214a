package model

import "time"

// Expense is a persisted ledger entry. Expenses are created through the
// import commit path or the add command and never mutated afterwards;
// corrections happen by delete and re-add.
type Expense struct {
	Date            time.Time
	CreatedAt       time.Time
	CategoryID      *string
	PaymentMethodID *string
	ID              string
	Comment         string
	Amount          float64
}
