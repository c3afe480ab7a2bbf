// Package apierr pairs an HTTP status and a stable machine-readable code
// with an underlying error, so services can signal outcomes like
// NO_ACADEMIC_DATA or INVALID_CREDENTIALS without handlers inspecting
// error strings.
package apierr

import (
	"errors"
	"fmt"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

// Unwrap exposes the cause so errors.Is still matches sentinels wrapped in
// an Error, e.g. the collector's no-data sentinel inside a 404.
func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// From extracts an *Error from anywhere in err's chain. The boundary treats
// anything else as an internal failure.
func From(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
