package attendance

import "time"

// CheckStatus is the lifecycle state of a Schedule. It only ever advances
// PENDING -> CHECKED_IN -> CHECKED_OUT; CHECKED_OUT is terminal for the row,
// a later check-in on the same day creates a fresh Schedule.
type CheckStatus string

const (
	CheckStatusPending    CheckStatus = "PENDING"
	CheckStatusCheckedIn  CheckStatus = "CHECKED_IN"
	CheckStatusCheckedOut CheckStatus = "CHECKED_OUT"
)

// Schedule is one staff member's planned-or-actual attendance record for a
// single occurrence, normally one calendar day. PlannedHours of zero means
// the schedule was seeded ad hoc at check-in time.
type Schedule struct {
	ID            string
	StaffID       string
	Date          time.Time
	PlannedHours  float64
	CheckInTime   *time.Time
	CheckOutTime  *time.Time
	CheckStatus   CheckStatus
	WorkedHours   float64
	OvertimeHours float64
	AnomalyNotice *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time
}

type EventType string

const (
	EventTypeCheckIn  EventType = "CHECK_IN"
	EventTypeCheckOut EventType = "CHECK_OUT"
)

// AttendanceEvent is one ledger entry, written once per successful
// transition and never updated afterwards.
type AttendanceEvent struct {
	ID           string
	StaffID      string
	ScheduleID   string
	Type         EventType
	Timestamp    time.Time
	Latitude     float64
	Longitude    float64
	RestaurantID string
	CreatedAt    time.Time
}
