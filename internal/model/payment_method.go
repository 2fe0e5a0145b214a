package model

import "time"

// PaymentMethod represents a way of paying for an expense.
type PaymentMethod struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Type      string // free-form tag, e.g. "credit_card", "cash"
}
