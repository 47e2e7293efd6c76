package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tracker-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token carrying the user's
	// identity claims. Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateToken validates the provided access token string and extracts
	// the claims, or returns an error (expired, invalid signature, wrong
	// token type, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token. Refresh
	// tokens have a longer lifetime and are used to obtain new access
	// tokens.
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateRefreshToken validates the provided refresh token string and
	// extracts the claims, or returns an error.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated identity carried by a token: the bearer-token
// verifier contract is {id, email, role, username}.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid"`

	// Email is the user's email at issuance time.
	Email string `json:"email"`

	// Role is the user's application role at issuance time. Role changes
	// take effect when the token is reissued.
	Role domain.Role `json:"role"`

	// Username is the user's login name.
	Username string `json:"username"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType string `json:"type"`

	ExpiresAt time.Time `json:"exp,omitempty"`
}
