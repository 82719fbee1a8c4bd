package distribution

import "errors"

var (
	// ErrNoFiles is returned when a request carries no files in the upload field
	ErrNoFiles = errors.New("No files uploaded")

	// ErrUnexpectedField is returned when a file arrives under a field other than the upload field
	ErrUnexpectedField = errors.New("unexpected field")

	// ErrCredentials is returned when the service credential cannot be loaded or used
	ErrCredentials = errors.New("invalid service credentials")

	// ErrMissingName is returned when an object spec has no name
	ErrMissingName = errors.New("object name is required")
)
