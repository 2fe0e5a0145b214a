package model

import "time"

// ImportRule maps a keyword to a category for statement imports.
// Matching is case-insensitive substring containment of Keyword in the
// candidate description; when several rules match, the first rule in
// stored order wins.
type ImportRule struct {
	CreatedAt  time.Time
	ID         string
	Keyword    string
	CategoryID string
}
