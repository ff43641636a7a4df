package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/easyreserv/attendance-backend-go/internal/domain/restaurant"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type restaurantRepository struct {
	db *database.DB
}

func NewRestaurantRepository(db *database.DB) restaurant.RestaurantRepository {
	return &restaurantRepository{db: db}
}

// GetByID implements restaurant.RestaurantRepository.
func (r *restaurantRepository) GetByID(ctx context.Context, id string) (restaurant.Restaurant, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, address, latitude, longitude, created_at, updated_at
		FROM restaurants
		WHERE id = $1
	`

	var site restaurant.Restaurant
	err := q.QueryRow(ctx, query, id).Scan(
		&site.ID, &site.Name, &site.Address, &site.Latitude, &site.Longitude,
		&site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return restaurant.Restaurant{}, restaurant.ErrRestaurantNotFound
		}
		return restaurant.Restaurant{}, fmt.Errorf("failed to get restaurant: %w", err)
	}

	return site, nil
}
