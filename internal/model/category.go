package model

import "time"

// Category represents a user-defined expense category.
// Icon and Color are opaque display hints consumed by the presentation layer.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Icon      string
	Color     string
	IsDefault bool
}
