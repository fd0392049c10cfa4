// Package errcode carries machine-readable codes on service errors so
// controllers can map them to HTTP statuses without string matching.
package errcode

import (
	"errors"
	"fmt"
)

type Code string

type codedError struct {
	code Code
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}

func (e codedError) Code() Code { return e.code }

func New(c Code) error { return codedError{code: c} }

// Newf attaches a formatted message that controllers may pass through to the client.
func Newf(c Code, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

// Of extracts the code from err, or "" when err carries none.
func Of(err error) Code {
	var ce interface{ Code() Code }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Message returns the client-safe message of a coded error.
func Message(err error) string {
	var ce codedError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return ""
}

// Codes shared by every service; controllers map them to HTTP statuses.
const (
	BadInput          Code = "BAD_INPUT"
	NotFound          Code = "NOT_FOUND"
	Forbidden         Code = "FORBIDDEN"
	Unauthorized      Code = "UNAUTHORIZED"
	Conflict          Code = "CONFLICT"
	InvalidTransition Code = "INVALID_TRANSITION"
	NoStock           Code = "NO_STOCK"
	EmailTaken        Code = "EMAIL_TAKEN"
	InvalidCreds      Code = "INVALID_CREDENTIALS"
)
