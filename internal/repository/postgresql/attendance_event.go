package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easyreserv/attendance-backend-go/internal/domain/attendance"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// attendanceEventRepository is the append-only scan ledger. Rows are never
// updated or deleted.
type attendanceEventRepository struct {
	db *database.DB
}

func NewAttendanceEventRepository(db *database.DB) attendance.AttendanceEventRepository {
	return &attendanceEventRepository{db: db}
}

const eventColumns = `id, staff_id, schedule_id, type, timestamp, latitude, longitude, restaurant_id, created_at`

func scanEvent(row pgx.Row) (attendance.AttendanceEvent, error) {
	var e attendance.AttendanceEvent
	err := row.Scan(
		&e.ID, &e.StaffID, &e.ScheduleID, &e.Type, &e.Timestamp,
		&e.Latitude, &e.Longitude, &e.RestaurantID, &e.CreatedAt,
	)
	return e, err
}

// Append implements attendance.AttendanceEventRepository.
func (r *attendanceEventRepository) Append(ctx context.Context, event attendance.AttendanceEvent) (attendance.AttendanceEvent, error) {
	q := GetQuerier(ctx, r.db)

	if event.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.AttendanceEvent{}, fmt.Errorf("failed to generate event id: %w", err)
		}
		event.ID = id.String()
	}

	query := `
		INSERT INTO attendance_events (
			id, staff_id, schedule_id, type, timestamp, latitude, longitude, restaurant_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		event.ID,
		event.StaffID,
		event.ScheduleID,
		event.Type,
		event.Timestamp,
		event.Latitude,
		event.Longitude,
		event.RestaurantID,
	).Scan(&event.CreatedAt)
	if err != nil {
		return attendance.AttendanceEvent{}, fmt.Errorf("failed to append attendance event: %w", err)
	}

	return event, nil
}

// MostRecentBefore implements attendance.AttendanceEventRepository.
func (r *attendanceEventRepository) MostRecentBefore(ctx context.Context, staffID, restaurantID, scheduleID string, before time.Time) (attendance.AttendanceEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE staff_id = $1
		  AND restaurant_id = $2
		  AND schedule_id = $3
		  AND timestamp < $4
		ORDER BY timestamp DESC
		LIMIT 1
	`

	e, err := scanEvent(q.QueryRow(ctx, query, staffID, restaurantID, scheduleID, before))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceEvent{}, attendance.ErrEventNotFound
		}
		return attendance.AttendanceEvent{}, fmt.Errorf("failed to get most recent event: %w", err)
	}

	return e, nil
}

// ListByStaff implements attendance.AttendanceEventRepository.
func (r *attendanceEventRepository) ListByStaff(ctx context.Context, staffID string, filter attendance.EventFilter) ([]attendance.AttendanceEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE staff_id = $1
		  AND ($2::text IS NULL OR schedule_id = $2)
		ORDER BY timestamp DESC
	`

	rows, err := q.Query(ctx, query, staffID, filter.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	var events []attendance.AttendanceEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance events: %w", err)
	}

	return events, nil
}
