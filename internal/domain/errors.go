package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every rejected operation returns an *Error wrapping one of these,
// and leaves the state it was called on unchanged.
var (
	ErrValidation           = errors.New("validation error")
	ErrConstraint           = errors.New("constraint violation")
	ErrNotFound             = errors.New("not found")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Error is a rejected operation with a message fit for the operator.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func Constraintf(format string, args ...any) error {
	return &Error{Kind: ErrConstraint, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func ConfirmationRequiredf(format string, args ...any) error {
	return &Error{Kind: ErrConfirmationRequired, Message: fmt.Sprintf(format, args...)}
}
