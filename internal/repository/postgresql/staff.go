package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/easyreserv/attendance-backend-go/internal/domain/staff"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type staffRepository struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepository{db: db}
}

const staffColumns = `id, name, restaurant_id, active_schedule_id, created_at, updated_at`

func (r *staffRepository) getByID(ctx context.Context, id string, forUpdate bool) (staff.StaffMember, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + staffColumns + `
		FROM staff_members
		WHERE id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var member staff.StaffMember
	err := q.QueryRow(ctx, query, id).Scan(
		&member.ID, &member.Name, &member.RestaurantID, &member.ActiveScheduleID,
		&member.CreatedAt, &member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.StaffMember{}, staff.ErrStaffNotFound
		}
		return staff.StaffMember{}, fmt.Errorf("failed to get staff member: %w", err)
	}

	return member, nil
}

// GetByID implements staff.StaffRepository.
func (r *staffRepository) GetByID(ctx context.Context, id string) (staff.StaffMember, error) {
	return r.getByID(ctx, id, false)
}

// GetForUpdate implements staff.StaffRepository. The row lock serializes
// concurrent scans for the same member for the rest of the transaction.
func (r *staffRepository) GetForUpdate(ctx context.Context, id string) (staff.StaffMember, error) {
	return r.getByID(ctx, id, true)
}

// SetActiveSchedule implements staff.StaffRepository.
func (r *staffRepository) SetActiveSchedule(ctx context.Context, staffID string, scheduleID *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE staff_members
		SET active_schedule_id = $2,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, staffID, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to set active schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return staff.ErrStaffNotFound
	}

	return nil
}
