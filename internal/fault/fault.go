// Package fault defines the error taxonomy shared by the recognition and
// extraction paths. Callers classify failures with errors.Is against the
// sentinels below; the HTTP layer maps them to status codes.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks missing or insufficient request input,
	// e.g. fewer probe images than the configured minimum.
	ErrValidation = errors.New("validation failed")

	// ErrImageDecode marks unreadable image bytes.
	ErrImageDecode = errors.New("image decode failed")

	// ErrExternalService marks a failure or timeout of the embedding or
	// OCR engine. Transient by nature; callers may retry.
	ErrExternalService = errors.New("external service failed")

	// ErrPersistence marks a store read or write failure.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound marks a reference to an absent customer.
	ErrNotFound = errors.New("not found")
)

// Validation wraps a message as a validation error.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ImageDecode wraps a decode failure.
func ImageDecode(err error) error {
	return fmt.Errorf("%w: %v", ErrImageDecode, err)
}

// ExternalService wraps an engine failure.
func ExternalService(err error) error {
	return fmt.Errorf("%w: %v", ErrExternalService, err)
}

// Persistence wraps a store failure.
func Persistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

// NotFound wraps a missing-record failure for the given customer id.
func NotFound(id string) error {
	return fmt.Errorf("%w: customer %s", ErrNotFound, id)
}
