package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("invalid session state")

	// Profile errors
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile data")

	// Analysis errors
	ErrStructuringFailed = errors.New("structuring failed")
	ErrNoKnownFields     = errors.New("no known fields")
	ErrMalformedText     = errors.New("malformed edited text")
	ErrReportNotFound    = errors.New("report not found")

	// Completion errors
	ErrModelUnavailable = errors.New("no suitable model available")
	ErrEmptyCompletion  = errors.New("empty completion")

	// File errors
	ErrInvalidDocument = errors.New("invalid document")
	ErrFileTooLarge    = errors.New("file too large")

	// Form errors
	ErrInvalidPayload = errors.New("invalid form payload")
	ErrTokenNotFound  = errors.New("form token not found")

	// Delivery errors
	ErrRateLimited = errors.New("rate limit exceeded")

	// Validation errors
	ErrMissingField  = errors.New("required field is missing")
	ErrInvalidFormat = errors.New("invalid format")
	ErrOutOfRange    = errors.New("value out of range")
)
