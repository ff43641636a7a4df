package attendance

import (
	"errors"
	"fmt"
)

// Code is a stable error identifier a client can branch on.
type Code string

const (
	CodeLocationValidationFailed Code = "LOCATION_VALIDATION_FAILED"
	CodeAlreadyCheckedIn         Code = "ALREADY_CHECKED_IN"
	CodeAlreadyCheckedOut        Code = "ALREADY_CHECKED_OUT"
	CodeNoActiveSchedule         Code = "NO_ACTIVE_SCHEDULE"
	CodeScheduleUpdateFailed     Code = "SCHEDULE_UPDATE_FAILED"
	CodeInvalidDateFormat        Code = "INVALID_DATE_FORMAT"
	CodeRestaurantNotConfigured  Code = "RESTAURANT_NOT_CONFIGURED"
	CodeUnknownError             Code = "UNKNOWN_ERROR"
)

// Error is the closed attendance failure type. Every failure out of the
// attendance service carries one of the enumerated codes plus a human
// readable message and a machine detail string.
type Error struct {
	Code    Code
	Message string
	Detail  string
	cause   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewError(code Code, message, detail string) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

// WrapError attaches an underlying cause so callers can still reach it
// through errors.Is / errors.As.
func WrapError(code Code, message string, cause error) *Error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &Error{Code: code, Message: message, Detail: detail, cause: cause}
}

// CodeOf extracts the attendance code from err, or UNKNOWN_ERROR when err is
// not an attendance Error.
func CodeOf(err error) Code {
	var attErr *Error
	if errors.As(err, &attErr) {
		return attErr.Code
	}
	return CodeUnknownError
}

// Repository-level sentinels. ErrScheduleNotFound is translated into a coded
// error by the service; ErrEventNotFound stays a plain sentinel because a
// missing ledger row on a history lookup is a not-found, not a scan failure.
var (
	ErrScheduleNotFound = NewError(CodeNoActiveSchedule, "schedule not found", "")
	ErrEventNotFound    = errors.New("attendance event not found")
)
