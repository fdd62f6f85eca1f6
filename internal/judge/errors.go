package judge

import "errors"

// Common errors returned by the judge package
var (
	// ErrInvalidResponse is returned when the judge output cannot be parsed, misses
	// required fields or carries out-of-range scores. It is never retried.
	ErrInvalidResponse = errors.New("invalid response from semantic judge")

	// ErrContentBlocked is returned when the model refuses to answer due to safety filters.
	ErrContentBlocked = errors.New("content blocked by semantic judge safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during semantic judging")

	// ErrInvalidConfig is returned when the judge configuration is invalid
	ErrInvalidConfig = errors.New("invalid semantic judge configuration")

	// ErrUnavailable is returned by the Adapter once every attempt has failed or the
	// caller gave up waiting.
	ErrUnavailable = errors.New("semantic judge unavailable")
)

// IsPermanent reports whether retrying err cannot help.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidConfig)
}
