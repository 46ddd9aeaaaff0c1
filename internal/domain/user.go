package domain

import "time"

// User is a registered catalog user.
type User struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	HashedPassword []byte    `db:"hashed_password"`
	IsActive       bool      `db:"is_active"`
	CreatedAt      time.Time `db:"created_at"`
}

// Registration is the input for creating a user.
type Registration struct {
	Username string
	Email    string
	Password string
}
