// Package auth validates the bearer tokens that identify the acting employee.
// Issuing tokens at login is handled outside this service; GenerateToken
// exists for operators and tests.
package auth

import (
	"context"
	"time"
)

// JWTService defines operations for employee access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the employee.
	GenerateToken(ctx context.Context, employeeID int64) (string, error)

	// ValidateToken validates the access token and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	// EmployeeID is the employee the token was issued for.
	EmployeeID int64 `json:"eid"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
