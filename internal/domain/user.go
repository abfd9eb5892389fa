package domain

import "time"

// User is an account holder. Username is the key for every balance and transaction.
type User struct {
	Username       string
	HashedPassword string
	CreatedAt      time.Time
}
