// Package auth provides JWT token issuance/validation and password hashing.
package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken is returned when a token is malformed, has an
	// invalid signature, or otherwise fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's nbf/iat lies in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType is returned when an access token is presented where
	// a refresh token is expected or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken is returned when a refresh token fails validation.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken is returned when a refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")
)
