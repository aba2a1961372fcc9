package models

import "time"

type User struct {
	ID              string
	Email           string
	PasswordHash    []byte
	DisplayName     string
	Phone           *string
	EmailConfirmed  bool
	SignupCompleted bool
	SuperUser       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Enabled reports whether the account may act as a principal. Accounts that
// never confirmed their email or never finished signup are rejected even
// when they hold a structurally valid token.
func (u User) Enabled() bool {
	return u.EmailConfirmed && u.SignupCompleted
}
