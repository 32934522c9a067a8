package services

import "errors"

var (
	// ErrInference marks a failed or unparsable structured-inference call.
	// Handlers map it to a 500 without leaking provider detail.
	ErrInference = errors.New("inference failed")

	// ErrInvalidDate marks a date field that is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmailExists marks an email already taken by another user. Uniqueness
	// is a business rule here, not a schema constraint.
	ErrEmailExists = errors.New("email already exists")
)
