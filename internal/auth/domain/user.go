package domain

import "time"

type User struct {
	ID            string
	Name          string
	Email         string // unique
	EmailVerified bool
	PasswordHash  string // argon2id encoded
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
