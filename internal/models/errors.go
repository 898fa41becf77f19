package models

import (
	"errors"
	"fmt"
)

// ValidationError reports a structural field violation. The caller can
// correct the input and resubmit; the store is unchanged.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s validation failed: %s: %s", e.Entity, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Entity, e.Reason)
}

// ConflictError reports a business-rule violation against other committed
// records (duplicate accountable, illegal lifecycle transition, duplicate
// unique name). Recoverable; the store is unchanged.
type ConflictError struct {
	Entity string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
