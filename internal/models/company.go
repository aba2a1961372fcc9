package models

import "time"

// Company is the tenant boundary. Every domain row belongs to exactly one
// company, directly or through its parent.
type Company struct {
	ID        string
	Name      string
	Address   *string
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
