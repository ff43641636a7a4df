package staff

import "time"

// StaffMember is the slice of the staff directory this engine needs.
// ActiveScheduleID points at the single schedule currently open for the
// member; at most one schedule per staff member is CHECKED_IN at any time,
// and this pointer is how that invariant is enforced.
type StaffMember struct {
	ID               string
	Name             string
	RestaurantID     string
	ActiveScheduleID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
