package staff

import "context"

// StaffRepository defines data access for staff records.
type StaffRepository interface {
	GetByID(ctx context.Context, id string) (StaffMember, error)

	// GetForUpdate loads the staff row with a row lock so concurrent scans
	// for the same member serialize. Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id string) (StaffMember, error)

	// SetActiveSchedule points the member at an open schedule, or clears the
	// pointer when scheduleID is nil.
	SetActiveSchedule(ctx context.Context, staffID string, scheduleID *string) error
}
