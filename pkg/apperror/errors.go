package apperror

import (
	"errors"
	"fmt"
)

// Code classifies an application error for transport mapping.
type Code int

const (
	CodeValidation Code = iota + 1000
	CodeConflict
	CodeNotFound
	CodeUnauthenticated
	CodeForbidden
	CodePersistence
	CodeEmptyUpdate
)

// Error is the application error carried from services to handlers.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports malformed client input, naming the first failing field.
func Validation(field, message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation.
func Conflict(message string, err error) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: message,
		Err:     err,
	}
}

// NotFound reports a missing principal or record.
func NotFound(resource string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Unauthenticated reports a missing or unverifiable credential.
func Unauthenticated(message string, err error) *Error {
	return &Error{
		Code:    CodeUnauthenticated,
		Message: message,
		Err:     err,
	}
}

// Forbidden reports a role check failure.
func Forbidden(message string) *Error {
	return &Error{
		Code:    CodeForbidden,
		Message: message,
	}
}

// Persistence wraps an unexpected store failure so the raw driver error
// is never surfaced to clients.
func Persistence(err error) *Error {
	return &Error{
		Code:    CodePersistence,
		Message: "storage operation failed",
		Err:     err,
	}
}

// EmptyUpdate reports a patch in which every field was unset.
func EmptyUpdate() *Error {
	return &Error{
		Code:    CodeEmptyUpdate,
		Message: "no fields to update",
	}
}

// CodeOf extracts the Code from err, or 0 if err is not an *Error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
