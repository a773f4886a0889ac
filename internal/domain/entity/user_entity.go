package entity

import (
	"time"
)

// User is the aggregate root for the accounts domain.
// Password holds the bcrypt hash, never the plain text.
type User struct {
	ID         string
	Username   string
	Password   string
	Role       Role
	Phone      string
	Gender     Gender
	Address    string
	ProfilePic string // blob key, empty when no picture was uploaded
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (u *User) String() string { return u.Username }
