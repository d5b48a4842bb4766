package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the payload of a session token.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}

// Session is returned by a successful login.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
