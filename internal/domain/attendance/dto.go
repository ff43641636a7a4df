package attendance

import (
	"time"

	"github.com/easyreserv/attendance-backend-go/internal/pkg/validator"
)

type ScanStatus string

const (
	ScanStatusCheckIn  ScanStatus = "CHECKIN"
	ScanStatusCheckOut ScanStatus = "CHECKOUT"
)

var scanStatusValues = []string{
	string(ScanStatusCheckIn),
	string(ScanStatusCheckOut),
}

// ScanRequest is one QR scan. Either RestaurantID or QRToken identifies the
// site; the handler resolves QRToken into RestaurantID before the service
// sees the request. Timestamp is optional; when absent the clock supplies
// the current instant.
type ScanRequest struct {
	StaffID      string     `json:"staff_id"`
	RestaurantID string     `json:"restaurant_id"`
	QRToken      string     `json:"qr_token,omitempty"`
	Status       ScanStatus `json:"status"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Timestamp    *string    `json:"timestamp,omitempty"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	if validator.IsEmpty(r.RestaurantID) && validator.IsEmpty(r.QRToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "restaurant_id",
			Message: "restaurant_id or qr_token is required",
		})
	}

	if !validator.IsInSlice(string(r.Status), scanStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be CHECKIN or CHECKOUT",
		})
	}

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ScheduleResponse struct {
	ID            string   `json:"id"`
	StaffID       string   `json:"staff_id"`
	Date          string   `json:"date"`
	PlannedHours  float64  `json:"planned_hours"`
	CheckInTime   *string  `json:"check_in_time"`
	CheckOutTime  *string  `json:"check_out_time"`
	CheckStatus   string   `json:"check_status"`
	WorkedHours   float64  `json:"worked_hours"`
	OvertimeHours float64  `json:"overtime_hours"`
	AnomalyNotice *string  `json:"anomaly_notice,omitempty"`
}

type EventResponse struct {
	ID           string  `json:"id"`
	StaffID      string  `json:"staff_id"`
	ScheduleID   string  `json:"schedule_id"`
	Type         string  `json:"type"`
	Timestamp    string  `json:"timestamp"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RestaurantID string  `json:"restaurant_id"`
}

// ScanResponse is returned on every successful transition.
type ScanResponse struct {
	AttendanceEvent  EventResponse    `json:"attendance_event"`
	Schedule         ScheduleResponse `json:"schedule"`
	ActiveScheduleID *string          `json:"active_schedule_id"`
}

// EventFilter narrows the ledger history listing.
type EventFilter struct {
	ScheduleID *string
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// MapScheduleToResponse converts a Schedule entity to its response shape.
func MapScheduleToResponse(s Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:            s.ID,
		StaffID:       s.StaffID,
		Date:          s.Date.Format("2006-01-02"),
		PlannedHours:  s.PlannedHours,
		CheckInTime:   timePtrToString(s.CheckInTime),
		CheckOutTime:  timePtrToString(s.CheckOutTime),
		CheckStatus:   string(s.CheckStatus),
		WorkedHours:   s.WorkedHours,
		OvertimeHours: s.OvertimeHours,
		AnomalyNotice: s.AnomalyNotice,
	}
}

// MapEventToResponse converts an AttendanceEvent entity to its response shape.
func MapEventToResponse(e AttendanceEvent) EventResponse {
	return EventResponse{
		ID:           e.ID,
		StaffID:      e.StaffID,
		ScheduleID:   e.ScheduleID,
		Type:         string(e.Type),
		Timestamp:    e.Timestamp.Format("2006-01-02 15:04:05"),
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		RestaurantID: e.RestaurantID,
	}
}
