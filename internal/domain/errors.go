package domain

import (
	"errors"
	"fmt"

	"github.com/tokenstd/revert-registry/internal/grammar"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound             = errors.New("not found")
	ErrCollision            = errors.New("name already registered with different parameters")
	ErrInvalidSelector      = errors.New("selector must be 4 bytes of hex, with or without the 0x prefix")
	ErrEmptyDeclaration     = errors.New("declaration is empty: provide a signature or structured fields")
	ErrAmbiguousDeclaration = errors.New("provide either a signature or structured fields, not both")
	ErrMissingSubject       = errors.New("structured declarations require a subject")
	ErrDescriptionTooLong   = errors.New("description must be at most 1024 characters")
	ErrEmptyCheck           = errors.New("check must contain at least one signature")
	ErrEmptyJob             = errors.New("job must contain at least one input")
	ErrBatchEmpty           = errors.New("batch must contain at least one declaration")
	ErrBatchTooLarge        = errors.New("batch exceeds the configured maximum")
	ErrInvalidPriority      = errors.New("invalid priority: must be high, normal, or low")
	ErrInvalidCallback      = errors.New("callback_url must be an absolute http or https URL")
	ErrAlreadyCancelled     = errors.New("job is already cancelled")
	ErrNotCancellable       = errors.New("job cannot be cancelled in its current status")
	ErrQueueFull            = errors.New("queue is at capacity, try again later")
)

// ConformanceError reports that a declaration failed grammar validation.
// It carries the verdict so handlers can return the violations verbatim.
type ConformanceError struct {
	Name       string
	Violations []grammar.Violation
}

func (e *ConformanceError) Error() string {
	n := len(e.Violations)
	if n == 1 {
		return fmt.Sprintf("declaration %s violates the naming convention (1 violation)", e.Name)
	}
	return fmt.Sprintf("declaration %s violates the naming convention (%d violations)", e.Name, n)
}
