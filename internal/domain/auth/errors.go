package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrUserNotFound        = errors.New("user not found")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrOAuthDisabled       = errors.New("google login is not configured")
	ErrOAuthStateMismatch  = errors.New("oauth state mismatch")
)
