// Package apperr defines the error taxonomy shared by every layer of the API.
//
// Handlers never write error responses themselves; they attach an error to the
// request and the terminal handler maps its Code to an HTTP status and a JSON
// body. Errors coming from the identity provider or the record store are
// translated into this taxonomy by Translate.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-stack/stack"
)

// Error codes. The string values are stable and appear in logs.
const (
	EInvalid         = "invalid"
	EUnauthorized    = "unauthorized"
	EForbidden       = "forbidden"
	ENotFound        = "not found"
	EConflict        = "conflict"
	ETooManyRequests = "too many requests"
	ETooLarge        = "request too large"
	EInternal        = "internal error"
	EDatabase        = "database error"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the application error.
//
// Code drives the HTTP status. Msg is safe to show to clients. Op names the
// operation that failed and Err keeps the underlying cause for logs.
type Error struct {
	Code       string
	Msg        string
	Op         string
	Err        error
	Details    []FieldError
	RetryAfter time.Duration

	stack stack.CallStack
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "<%s>", e.Code)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Operational reports whether the error is an expected, client-facing
// condition. Database and internal errors are not.
func (e *Error) Operational() bool {
	return e.Code != EInternal && e.Code != EDatabase
}

// Stack returns the frames captured when the error was constructed.
func (e *Error) Stack() []string {
	out := make([]string, 0, len(e.stack))
	for _, c := range e.stack {
		out = append(out, fmt.Sprintf("%n (%+v)", c, c))
	}
	return out
}

// HTTPStatus maps an error code to its HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case EInvalid:
		return http.StatusBadRequest
	case EUnauthorized:
		return http.StatusUnauthorized
	case EForbidden:
		return http.StatusForbidden
	case ENotFound:
		return http.StatusNotFound
	case EConflict:
		return http.StatusConflict
	case ETooManyRequests:
		return http.StatusTooManyRequests
	case ETooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func newError(code, msg string, err error) *Error {
	return &Error{
		Code:  code,
		Msg:   msg,
		Err:   err,
		stack: stack.Trace().TrimBelow(stack.Caller(2)).TrimRuntime(),
	}
}

func Validation(msg string, details ...FieldError) *Error {
	e := newError(EInvalid, msg, nil)
	e.Details = details
	return e
}

func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "you are not authenticated"
	}
	return newError(EUnauthorized, msg, nil)
}

func Forbidden(msg string) *Error {
	if msg == "" {
		msg = "you do not have permission to perform this action"
	}
	return newError(EForbidden, msg, nil)
}

func NotFound(msg string) *Error {
	if msg == "" {
		msg = "resource not found"
	}
	return newError(ENotFound, msg, nil)
}

func Conflict(msg string) *Error {
	if msg == "" {
		msg = "conflict with the current state of the resource"
	}
	return newError(EConflict, msg, nil)
}

func TooManyRequests(msg string, retryAfter time.Duration) *Error {
	e := newError(ETooManyRequests, msg, nil)
	e.RetryAfter = retryAfter
	return e
}

func TooLarge(msg string) *Error {
	return newError(ETooLarge, msg, nil)
}

func Database(msg string, err error) *Error {
	if msg == "" {
		msg = "database error"
	}
	return newError(EDatabase, msg, err)
}

func Internal(msg string, err error) *Error {
	if msg == "" {
		msg = "internal server error"
	}
	return newError(EInternal, msg, err)
}

// WithOp sets Op on err when it is an *Error and returns it.
func WithOp(err error, op string) error {
	var ae *Error
	if errors.As(err, &ae) && ae.Op == "" {
		ae.Op = op
	}
	return err
}

// Code returns the code of err, EInternal for foreign errors and "" for nil.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return EInternal
}
