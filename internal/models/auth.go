package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries a login code and the role the caller claims.
type LoginRequest struct {
	Code      string `json:"code" validate:"required,max=64"`
	Role      string `json:"role" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the session token and the authenticated identity.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        Identity  `json:"user"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
