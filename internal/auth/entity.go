package auth

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload of a session token.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}
