// Package domainerrors defines the error kinds every registry and token operation fails with.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code represents an error category independent of the transport that reports it.
type Code string

const (
	CodeUnauthorized        Code = "unauthorized"         // Caller lacks the required role
	CodePaused              Code = "paused"               // Issuance attempted while the pause gate is engaged
	CodeNotFound            Code = "not_found"            // Referenced record does not exist
	CodeInvalidInput        Code = "invalid_input"        // Malformed argument
	CodeConflict            Code = "conflict"             // State already initialized
	CodeInsufficientBalance Code = "insufficient_balance" // Token transfer exceeds the sender balance
	CodeInternal            Code = "internal_error"       // Host storage failure
)

// Targets for errors.Is. Matching is by code only.
var (
	ErrUnauthorized        = &Error{Code: CodeUnauthorized}
	ErrPaused              = &Error{Code: CodePaused}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrInvalidInput        = &Error{Code: CodeInvalidInput}
	ErrConflict            = &Error{Code: CodeConflict}
	ErrInsufficientBalance = &Error{Code: CodeInsufficientBalance}
	ErrInternal            = &Error{Code: CodeInternal}
)

// Error wraps a failure with a stable code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface. A wrapped cause is appended to the message.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a new error with the given code and a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error wrapping err. If err already carries a code, that code is kept.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if err is an Error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
