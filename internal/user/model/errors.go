package model

import "errors"

var (
	// ErrUserNotFound indicates that no aggregate exists for the user key.
	ErrUserNotFound = errors.New("user not found")
)
