package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are the JWT claims carried by a session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GoogleProfile is the verified profile asserted by the identity provider.
type GoogleProfile struct {
	Subject string // stable Google account id
	Email   string
	Name    string
	Picture string
}
