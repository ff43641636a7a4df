package attendance

import (
	"context"
	"time"
)

// ScheduleRepository defines data access for schedule records.
type ScheduleRepository interface {
	// Create inserts a new schedule row.
	Create(ctx context.Context, schedule Schedule) (Schedule, error)

	// GetByID retrieves a schedule by its id.
	GetByID(ctx context.Context, id string) (Schedule, error)

	// FindForDay returns the most recent non-deleted schedule whose date
	// falls on the same UTC calendar day as at, or ErrScheduleNotFound.
	FindForDay(ctx context.Context, staffID string, at time.Time) (Schedule, error)

	// Update persists status, times and duration fields of an existing row.
	Update(ctx context.Context, schedule Schedule) error

	// ListByStaff returns a staff member's schedules, newest first.
	ListByStaff(ctx context.Context, staffID string) ([]Schedule, error)
}

// AttendanceEventRepository is the append-only scan ledger. There are no
// update or delete methods on purpose.
type AttendanceEventRepository interface {
	Append(ctx context.Context, event AttendanceEvent) (AttendanceEvent, error)

	// MostRecentBefore locates the last event for a schedule strictly before
	// the given instant. Audit/debugging only.
	MostRecentBefore(ctx context.Context, staffID, restaurantID, scheduleID string, before time.Time) (AttendanceEvent, error)

	// ListByStaff returns a staff member's events, newest first.
	ListByStaff(ctx context.Context, staffID string, filter EventFilter) ([]AttendanceEvent, error)
}

// TxManager runs fn inside a single atomic unit. Repository calls made with
// the ctx passed to fn join that unit; when fn returns an error every write
// made inside it is rolled back.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
