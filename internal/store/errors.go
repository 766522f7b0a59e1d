package store

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInvalidRole       = errors.New("invalid role")
	ErrSessionNotFound   = errors.New("session not found")
)
