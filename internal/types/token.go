package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// Identity is the authenticated caller. UID namespaces every document path.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Identity returns the caller described by the claims.
func (c *TokenClaims) Identity() Identity {
	return Identity{UID: c.UserID, Email: c.Email}
}
