package response

import (
	"errors"
	"net/http"

	"github.com/easyreserv/attendance-backend-go/internal/domain/attendance"
	"github.com/easyreserv/attendance-backend-go/internal/domain/restaurant"
	"github.com/easyreserv/attendance-backend-go/internal/domain/staff"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/validator"
)

// statusByCode maps attendance error codes to HTTP statuses. Geofence and
// state-precondition failures are client errors; SCHEDULE_UPDATE_FAILED is
// transient and safe to retry, hence 503.
var statusByCode = map[attendance.Code]int{
	attendance.CodeLocationValidationFailed: http.StatusUnprocessableEntity,
	attendance.CodeRestaurantNotConfigured:  http.StatusUnprocessableEntity,
	attendance.CodeAlreadyCheckedIn:         http.StatusConflict,
	attendance.CodeAlreadyCheckedOut:        http.StatusConflict,
	attendance.CodeNoActiveSchedule:         http.StatusNotFound,
	attendance.CodeInvalidDateFormat:        http.StatusBadRequest,
	attendance.CodeScheduleUpdateFailed:     http.StatusServiceUnavailable,
	attendance.CodeUnknownError:             http.StatusInternalServerError,
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Attendance failures carry a stable code clients branch on.
	var attErr *attendance.Error
	if errors.As(err, &attErr) {
		status, ok := statusByCode[attErr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		ErrorWithCode(w, status, string(attErr.Code), attErr.Message, attErr.Detail)
		return
	}

	switch {
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff member not found")
	case errors.Is(err, restaurant.ErrRestaurantNotFound):
		NotFound(w, "Restaurant not found")
	case errors.Is(err, attendance.ErrEventNotFound):
		NotFound(w, "Attendance event not found")
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
