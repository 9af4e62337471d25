package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound        = errors.New("trend not found")
	ErrInvalidLimit    = errors.New("invalid result limit")
	ErrUnknownDriver   = errors.New("unknown store driver")
	ErrNonFinite       = errors.New("non-finite numeric field")
	ErrInvalidMovement = errors.New("invalid market movement")
)
