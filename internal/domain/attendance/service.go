package attendance

import (
	"context"
	"time"
)

// AttendanceService drives the check-in/check-out state machine.
type AttendanceService interface {
	// Scan applies one QR scan, dispatching on req.Status.
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)

	// GetStaffSchedules returns a staff member's schedule history.
	GetStaffSchedules(ctx context.Context, staffID string) ([]ScheduleResponse, error)

	// GetStaffEvents returns a staff member's ledger history.
	GetStaffEvents(ctx context.Context, staffID string, filter EventFilter) ([]EventResponse, error)

	// GetMostRecentEventBefore returns the latest ledger entry for the staff
	// member at the restaurant and schedule strictly before the given instant,
	// or ErrEventNotFound when none exists.
	GetMostRecentEventBefore(ctx context.Context, staffID, restaurantID, scheduleID string, before time.Time) (EventResponse, error)
}
