package domain

import "errors"

var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidFlightReference = errors.New("invalid flight reference")

	ErrNotFound = errors.New("booking not found")

	ErrFlightNotFound = errors.New("flight not found")

	ErrInvalidTransition = errors.New("invalid status transition")

	ErrConcurrencyConflict = errors.New("booking was modified concurrently")

	ErrDuplicateRefID = errors.New("duplicate booking reference id")
)
