package restaurant

import "time"

// Restaurant is the site directory record. Coordinates are nullable: a site
// that has never been geocoded cannot pass any geofence check.
type Restaurant struct {
	ID        string
	Name      string
	Address   *string
	Latitude  *float64
	Longitude *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCoordinates reports whether the site can be geofenced at all.
func (r Restaurant) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}
