package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameExists    = errors.New("username already exists")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrRankNotFound      = errors.New("rank not found")

	// Session errors
	ErrAlreadyLoggedIn = errors.New("user is already logged in")
	ErrInvalidToken    = errors.New("invalid token")
)
