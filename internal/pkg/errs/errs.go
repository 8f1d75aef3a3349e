package errs

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"phonebook/internal/pkg/logx"
)

// CustomError is the error value passed from services to handlers and sent to clients.
type CustomError struct {
	// Code is the business error code (see error_codes.go).
	Code int

	// Message is the user-facing description.
	Message string

	// Status is the HTTP status the error is served with.
	Status int

	// Fields maps form field names to validation messages for ErrValidationFailed.
	Fields map[string]string
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Is reports whether target is a *CustomError with the same code, so callers can
// write errors.Is(err, errs.NewError(errs.ErrContactNotFound)).
func (e *CustomError) Is(target error) bool {
	var other *CustomError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithFields returns a copy of e carrying per-field validation messages.
func (e *CustomError) WithFields(fields map[string]string) *CustomError {
	out := *e
	out.Fields = maps.Clone(fields)
	return &out
}

// NewError builds the *CustomError registered for code. Printf-style details are
// applied to messages containing a verb; for ErrUnknown the first error detail is
// logged instead. Unregistered codes degrade to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("error code %d is not registered", code),
			"Unknown error code requested",
			"requested_code", code,
		)
		template = errorMap[ErrUnknown]
	}

	customErr := template
	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	switch {
	case len(details) == 0:
	case customErr.Code == ErrUnknown:
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	case strings.Contains(customErr.Message, "%"):
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	default:
		logx.Warn("Error details ignored: message has no formatting verbs", "code", code)
	}

	return &customErr
}

// From converts any error into a *CustomError. Errors that are not already
// application errors become ErrUnknown and are logged.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return NewError(ErrUnknown, err)
}

// Message returns the registered user-facing message for code, or the ErrUnknown
// message for unregistered codes.
func Message(code int) string {
	if e, ok := errorMap[code]; ok {
		return e.Message
	}
	return errorMap[ErrUnknown].Message
}
