package apperrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNoValue           = errors.New("no value")
	ErrProviderStatus    = errors.New("provider reported failure")
	ErrMalformedResponse = errors.New("malformed provider response")
	ErrEmptyHistory      = errors.New("history is empty")
)
