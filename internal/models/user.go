package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	// DefaultPicture is the placeholder avatar assigned until a user uploads one.
	DefaultPicture = "/images/default-avatar.png"
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // empty for Google-only accounts
	GoogleID     string // empty for local accounts
	Picture      string
	Role         string // "user" or "admin"
	Verified     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Projection is the minimal user shape returned by auth responses.
type Projection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Project() *Projection {
	return &Projection{ID: u.ID, Name: u.Name, Email: u.Email}
}
