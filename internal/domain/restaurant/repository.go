package restaurant

import "context"

// RestaurantRepository defines data access for the site directory.
type RestaurantRepository interface {
	GetByID(ctx context.Context, id string) (Restaurant, error)
}
