package webclip

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"

	// ESELECTOR reports a malformed selector, XPath expression or regex in
	// a single rule. Resolution continues with the next rule.
	ESELECTOR = "selector"

	// ETIMEOUT reports that an extraction exceeded its template's time bound.
	ETIMEOUT = "timeout"

	// ETOOLARGE reports that a document exceeded its template's size bound.
	ETOOLARGE = "too_large"

	// EQUALITY reports that a result did not pass the quality gate.
	EQUALITY = "quality"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("webclip error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
