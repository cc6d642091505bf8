// Package apperror defines the failures the API knows how to report.
//
// Every error that reaches the HTTP boundary is either an *Error with
// Operational set, which is rendered as-is, or something else, which is
// treated as an unexpected fault and hidden behind a generic 500.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	StatusFail  = "fail"
	StatusError = "error"

	MessageValidation = "Validation error"
	MessageUnexpected = "Something went wrong"
)

type Error struct {
	StatusCode  int
	Status      string
	Message     string
	Fields      map[string]string
	Operational bool

	// Err is the underlying cause, if any. It is logged, never sent to
	// clients outside development mode.
	Err error
	// Stack is set for recovered panics.
	Stack []byte
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an operational error. The envelope status is "fail" for 4xx
// codes and "error" otherwise.
func New(statusCode int, message string) *Error {
	return &Error{
		StatusCode:  statusCode,
		Status:      statusFor(statusCode),
		Message:     message,
		Operational: true,
	}
}

func Validation(fields map[string]string) *Error {
	e := New(http.StatusBadRequest, MessageValidation)
	e.Fields = fields
	return e
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Persistence reports a store write failure. The store does not separate
// bad input from infrastructure trouble, so the failure is surfaced as a
// client error carrying the store's message.
func Persistence(err error) *Error {
	e := New(http.StatusBadRequest, err.Error())
	e.Err = err
	return e
}

func Unexpected(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		Status:     StatusError,
		Message:    MessageUnexpected,
		Err:        err,
	}
}

// Panic wraps a recovered panic value together with the goroutine stack.
func Panic(v any, stack []byte) *Error {
	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	e := Unexpected(err)
	e.Stack = stack
	return e
}

// From finds the *Error in err's chain. Errors that carry none are wrapped
// with Unexpected.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected(err)
}

func statusFor(code int) string {
	if code >= 400 && code < 500 {
		return StatusFail
	}
	return StatusError
}
