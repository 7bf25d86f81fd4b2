package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a JWT token. ClientID names the
// device or CLI that holds the token.
type TokenClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
}
