// Package common defines sentinel errors shared across picshare layers.
// Callers should use errors.Is to match these values; the REST layer maps
// them to HTTP statuses.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Request-scoped authorization errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Malformed or incomplete request payloads.
	ErrorValidation = errors.New("validation error")

	// Anything that should surface as a 500.
	ErrorInternal = errors.New("internal error")
)
