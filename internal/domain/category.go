package domain

import "time"

// Category classifies tickets; many tickets reference one category.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
