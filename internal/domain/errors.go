package domain

import "errors"

var (
	ErrValidation        = errors.New("invalid request")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrStalePrice        = errors.New("price out of range")
	ErrPersistence       = errors.New("persistence failure")
)
