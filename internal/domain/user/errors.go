package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUsernameExists          = errors.New("username already taken")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrSelfAccessOnly          = errors.New("employees may only access their own records")
)
