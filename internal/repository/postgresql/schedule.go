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

type scheduleRepository struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) attendance.ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, staff_id, date, planned_hours, check_in_time, check_out_time,
	   check_status, worked_hours, overtime_hours, anomaly_notice,
	   created_at, updated_at, deleted_at`

func scanSchedule(row pgx.Row) (attendance.Schedule, error) {
	var s attendance.Schedule
	err := row.Scan(
		&s.ID, &s.StaffID, &s.Date, &s.PlannedHours, &s.CheckInTime, &s.CheckOutTime,
		&s.CheckStatus, &s.WorkedHours, &s.OvertimeHours, &s.AnomalyNotice,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	return s, err
}

// Create implements attendance.ScheduleRepository.
func (r *scheduleRepository) Create(ctx context.Context, schedule attendance.Schedule) (attendance.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	if schedule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.Schedule{}, fmt.Errorf("failed to generate schedule id: %w", err)
		}
		schedule.ID = id.String()
	}

	query := `
		INSERT INTO schedules (
			id, staff_id, date, planned_hours, check_in_time, check_out_time,
			check_status, worked_hours, overtime_hours, anomaly_notice
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		schedule.ID,
		schedule.StaffID,
		schedule.Date,
		schedule.PlannedHours,
		schedule.CheckInTime,
		schedule.CheckOutTime,
		schedule.CheckStatus,
		schedule.WorkedHours,
		schedule.OvertimeHours,
		schedule.AnomalyNotice,
	).Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return attendance.Schedule{}, fmt.Errorf("failed to create schedule: %w", err)
	}

	return schedule, nil
}

// GetByID implements attendance.ScheduleRepository.
func (r *scheduleRepository) GetByID(ctx context.Context, id string) (attendance.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE id = $1
		  AND deleted_at IS NULL
	`

	s, err := scanSchedule(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Schedule{}, attendance.ErrScheduleNotFound
		}
		return attendance.Schedule{}, fmt.Errorf("failed to get schedule by id: %w", err)
	}

	return s, nil
}

// utcDayBounds returns the half-open UTC calendar-day window containing at.
func utcDayBounds(at time.Time) (time.Time, time.Time) {
	u := at.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

// FindForDay implements attendance.ScheduleRepository. The day window is
// derived from the schedule's own date field in UTC; back-dated scans in
// replay mode resolve against the day they carry, not the server's day.
// The bounds are computed here rather than with date_trunc so the result
// does not depend on the session TimeZone.
func (r *scheduleRepository) FindForDay(ctx context.Context, staffID string, at time.Time) (attendance.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	dayStart, dayEnd := utcDayBounds(at)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE staff_id = $1
		  AND deleted_at IS NULL
		  AND date >= $2
		  AND date < $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	s, err := scanSchedule(q.QueryRow(ctx, query, staffID, dayStart, dayEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Schedule{}, attendance.ErrScheduleNotFound
		}
		return attendance.Schedule{}, fmt.Errorf("failed to find schedule for day: %w", err)
	}

	return s, nil
}

// Update implements attendance.ScheduleRepository.
func (r *scheduleRepository) Update(ctx context.Context, schedule attendance.Schedule) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedules
		SET check_in_time = $2,
			check_out_time = $3,
			check_status = $4,
			worked_hours = $5,
			overtime_hours = $6,
			anomaly_notice = $7,
			updated_at = NOW()
		WHERE id = $1
		  AND deleted_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		schedule.ID,
		schedule.CheckInTime,
		schedule.CheckOutTime,
		schedule.CheckStatus,
		schedule.WorkedHours,
		schedule.OvertimeHours,
		schedule.AnomalyNotice,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrScheduleNotFound
	}

	return nil
}

// ListByStaff implements attendance.ScheduleRepository.
func (r *scheduleRepository) ListByStaff(ctx context.Context, staffID string) ([]attendance.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE staff_id = $1
		  AND deleted_at IS NULL
		ORDER BY date DESC, created_at DESC
	`

	rows, err := q.Query(ctx, query, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []attendance.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}

	return schedules, nil
}
