package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrOutOfRange is returned when a score falls outside [0, 1].
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidDifficulty is returned when a difficulty rating is not recognised.
	ErrInvalidDifficulty = errors.New("invalid difficulty rating")

	// ErrInvalidLevel is returned when a CEFR level is not recognised.
	ErrInvalidLevel = errors.New("invalid CEFR level")
)
