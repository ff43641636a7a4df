package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/easyreserv/attendance-backend-go/internal/domain/attendance"
	"github.com/easyreserv/attendance-backend-go/internal/domain/restaurant"
	"github.com/easyreserv/attendance-backend-go/internal/domain/staff"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/clock"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/geo"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/validator"
)

// geofenceRadiusKm is the circular boundary around a restaurant's registered
// coordinates; distances at or below it pass.
const geofenceRadiusKm = 0.15

type AttendanceServiceImpl struct {
	tx             attendance.TxManager
	clock          clock.Clock
	scheduleRepo   attendance.ScheduleRepository
	eventRepo      attendance.AttendanceEventRepository
	staffRepo      staff.StaffRepository
	restaurantRepo restaurant.RestaurantRepository
}

func NewAttendanceService(
	tx attendance.TxManager,
	clk clock.Clock,
	scheduleRepo attendance.ScheduleRepository,
	eventRepo attendance.AttendanceEventRepository,
	staffRepo staff.StaffRepository,
	restaurantRepo restaurant.RestaurantRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:             tx,
		clock:          clk,
		scheduleRepo:   scheduleRepo,
		eventRepo:      eventRepo,
		staffRepo:      staffRepo,
		restaurantRepo: restaurantRepo,
	}
}

// Scan implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}

	at, err := s.resolveTimestamp(req.Timestamp)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	switch req.Status {
	case attendance.ScanStatusCheckIn:
		return s.checkIn(ctx, req, at)
	case attendance.ScanStatusCheckOut:
		return s.checkOut(ctx, req, at)
	default:
		return attendance.ScanResponse{}, attendance.NewError(
			attendance.CodeUnknownError,
			"unsupported scan status",
			string(req.Status),
		)
	}
}

// resolveTimestamp returns the explicit scan timestamp when one was
// supplied, otherwise the current instant from the clock.
func (s *AttendanceServiceImpl) resolveTimestamp(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return s.clock.Now().UTC(), nil
	}
	t, ok := validator.ParseScanTimestamp(*raw)
	if !ok {
		return time.Time{}, attendance.NewError(
			attendance.CodeInvalidDateFormat,
			"timestamp could not be parsed",
			fmt.Sprintf("expected layout %q, got %q", validator.ScanTimestampLayout, *raw),
		)
	}
	return t, nil
}

// validateGeofence gates every transition: the scan position must be within
// the geofence radius of the restaurant's registered coordinates.
func (s *AttendanceServiceImpl) validateGeofence(ctx context.Context, req attendance.ScanRequest) (restaurant.Restaurant, error) {
	site, err := s.restaurantRepo.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, restaurant.ErrRestaurantNotFound) {
			return restaurant.Restaurant{}, attendance.NewError(
				attendance.CodeRestaurantNotConfigured,
				"restaurant is not registered",
				req.RestaurantID,
			)
		}
		return restaurant.Restaurant{}, attendance.WrapError(
			attendance.CodeUnknownError,
			"failed to load restaurant",
			err,
		)
	}

	if !site.HasCoordinates() {
		return restaurant.Restaurant{}, attendance.NewError(
			attendance.CodeRestaurantNotConfigured,
			"restaurant has no registered coordinates",
			site.ID,
		)
	}

	distanceKm := geo.HaversineDistanceKm(req.Latitude, req.Longitude, *site.Latitude, *site.Longitude)
	if distanceKm > geofenceRadiusKm {
		return restaurant.Restaurant{}, attendance.NewError(
			attendance.CodeLocationValidationFailed,
			"scan position is outside the allowed radius",
			fmt.Sprintf("distance %.3f km exceeds %.3f km", distanceKm, geofenceRadiusKm),
		)
	}

	return site, nil
}

func (s *AttendanceServiceImpl) checkIn(ctx context.Context, req attendance.ScanRequest, at time.Time) (attendance.ScanResponse, error) {
	site, err := s.validateGeofence(ctx, req)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	var (
		saved attendance.Schedule
		event attendance.AttendanceEvent
	)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := s.staffRepo.GetForUpdate(ctx, req.StaffID)
		if err != nil {
			if errors.Is(err, staff.ErrStaffNotFound) {
				return attendance.WrapError(attendance.CodeUnknownError, "staff member not found", err)
			}
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to load staff record", err)
		}

		if member.ActiveScheduleID != nil {
			return attendance.NewError(
				attendance.CodeAlreadyCheckedIn,
				"staff member already has an open schedule",
				fmt.Sprintf("schedule %s is still open", *member.ActiveScheduleID),
			)
		}

		sched, err := s.resolveSchedule(ctx, req.StaffID, at)
		if err != nil {
			return err
		}

		sched.CheckInTime = &at
		sched.CheckStatus = attendance.CheckStatusCheckedIn

		if sched.ID == "" {
			sched, err = s.scheduleRepo.Create(ctx, sched)
		} else {
			err = s.scheduleRepo.Update(ctx, sched)
		}
		if err != nil {
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to persist schedule", err)
		}

		if err := s.staffRepo.SetActiveSchedule(ctx, member.ID, &sched.ID); err != nil {
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to set active schedule", err)
		}

		event, err = s.eventRepo.Append(ctx, attendance.AttendanceEvent{
			StaffID:      member.ID,
			ScheduleID:   sched.ID,
			Type:         attendance.EventTypeCheckIn,
			Timestamp:    at,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			RestaurantID: site.ID,
		})
		if err != nil {
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to append attendance event", err)
		}

		saved = sched
		return nil
	})
	if err != nil {
		return attendance.ScanResponse{}, asAttendanceError(err)
	}

	return attendance.ScanResponse{
		AttendanceEvent:  attendance.MapEventToResponse(event),
		Schedule:         attendance.MapScheduleToResponse(saved),
		ActiveScheduleID: &saved.ID,
	}, nil
}

func (s *AttendanceServiceImpl) checkOut(ctx context.Context, req attendance.ScanRequest, at time.Time) (attendance.ScanResponse, error) {
	site, err := s.validateGeofence(ctx, req)
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	var (
		saved attendance.Schedule
		event attendance.AttendanceEvent
	)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := s.staffRepo.GetForUpdate(ctx, req.StaffID)
		if err != nil {
			if errors.Is(err, staff.ErrStaffNotFound) {
				return attendance.WrapError(attendance.CodeUnknownError, "staff member not found", err)
			}
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to load staff record", err)
		}

		if member.ActiveScheduleID == nil {
			return attendance.NewError(
				attendance.CodeNoActiveSchedule,
				"staff member has no open schedule",
				member.ID,
			)
		}

		sched, err := s.scheduleRepo.GetByID(ctx, *member.ActiveScheduleID)
		if err != nil {
			if errors.Is(err, attendance.ErrScheduleNotFound) {
				return attendance.NewError(
					attendance.CodeNoActiveSchedule,
					"active schedule no longer exists",
					*member.ActiveScheduleID,
				)
			}
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to load schedule", err)
		}

		if sched.CheckStatus == attendance.CheckStatusCheckedOut {
			return attendance.NewError(
				attendance.CodeAlreadyCheckedOut,
				"schedule is already checked out",
				sched.ID,
			)
		}

		var checkIn time.Time
		if sched.CheckInTime != nil {
			checkIn = *sched.CheckInTime
		}
		result, err := ComputeWorkedHours(checkIn, at, sched.PlannedHours)
		if err != nil {
			return err
		}

		sched.CheckOutTime = &at
		sched.CheckStatus = attendance.CheckStatusCheckedOut
		sched.WorkedHours = result.WorkedHours
		sched.OvertimeHours = result.OvertimeHours
		sched.AnomalyNotice = result.AnomalyNotice

		if err := s.scheduleRepo.Update(ctx, sched); err != nil {
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to persist schedule", err)
		}

		if err := s.staffRepo.SetActiveSchedule(ctx, member.ID, nil); err != nil {
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to clear active schedule", err)
		}

		event, err = s.eventRepo.Append(ctx, attendance.AttendanceEvent{
			StaffID:      member.ID,
			ScheduleID:   sched.ID,
			Type:         attendance.EventTypeCheckOut,
			Timestamp:    at,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
			RestaurantID: site.ID,
		})
		if err != nil {
			return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to append attendance event", err)
		}

		saved = sched
		return nil
	})
	if err != nil {
		return attendance.ScanResponse{}, asAttendanceError(err)
	}

	return attendance.ScanResponse{
		AttendanceEvent:  attendance.MapEventToResponse(event),
		Schedule:         attendance.MapScheduleToResponse(saved),
		ActiveScheduleID: nil,
	}, nil
}

// resolveSchedule finds the schedule the check-in should land on. A terminal
// schedule for the day is never reopened; a fresh unplanned row is created
// instead.
func (s *AttendanceServiceImpl) resolveSchedule(ctx context.Context, staffID string, at time.Time) (attendance.Schedule, error) {
	sched, err := s.scheduleRepo.FindForDay(ctx, staffID, at)
	if err != nil {
		if errors.Is(err, attendance.ErrScheduleNotFound) {
			return newUnplannedSchedule(staffID, at), nil
		}
		return attendance.Schedule{}, attendance.WrapError(attendance.CodeScheduleUpdateFailed, "failed to resolve schedule", err)
	}

	switch sched.CheckStatus {
	case attendance.CheckStatusPending:
		return sched, nil
	case attendance.CheckStatusCheckedOut:
		// Fresh occurrence on the same day; the terminal row stays as is.
		return newUnplannedSchedule(staffID, at), nil
	default:
		// A CHECKED_IN row without an active-schedule pointer means the
		// invariant was broken elsewhere; refuse to open a second one.
		return attendance.Schedule{}, attendance.NewError(
			attendance.CodeAlreadyCheckedIn,
			"staff member already has an open schedule",
			sched.ID,
		)
	}
}

func newUnplannedSchedule(staffID string, at time.Time) attendance.Schedule {
	return attendance.Schedule{
		StaffID:      staffID,
		Date:         startOfDayUTC(at),
		PlannedHours: 0,
		CheckStatus:  attendance.CheckStatusPending,
	}
}

// Calendar boundaries are UTC throughout the engine.
func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// asAttendanceError guarantees every failure leaving the service carries a
// code; transaction begin/commit failures surface as SCHEDULE_UPDATE_FAILED.
func asAttendanceError(err error) error {
	var attErr *attendance.Error
	if errors.As(err, &attErr) {
		return err
	}
	return attendance.WrapError(attendance.CodeScheduleUpdateFailed, "transition could not be committed", err)
}

// GetStaffSchedules implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStaffSchedules(ctx context.Context, staffID string) ([]attendance.ScheduleResponse, error) {
	schedules, err := s.scheduleRepo.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}

	responses := make([]attendance.ScheduleResponse, 0, len(schedules))
	for _, sched := range schedules {
		responses = append(responses, attendance.MapScheduleToResponse(sched))
	}
	return responses, nil
}

// GetStaffEvents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStaffEvents(ctx context.Context, staffID string, filter attendance.EventFilter) ([]attendance.EventResponse, error) {
	events, err := s.eventRepo.ListByStaff(ctx, staffID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}

	responses := make([]attendance.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, attendance.MapEventToResponse(event))
	}
	return responses, nil
}

// GetMostRecentEventBefore implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMostRecentEventBefore(ctx context.Context, staffID, restaurantID, scheduleID string, before time.Time) (attendance.EventResponse, error) {
	event, err := s.eventRepo.MostRecentBefore(ctx, staffID, restaurantID, scheduleID, before)
	if err != nil {
		if errors.Is(err, attendance.ErrEventNotFound) {
			return attendance.EventResponse{}, err
		}
		return attendance.EventResponse{}, fmt.Errorf("failed to find most recent attendance event: %w", err)
	}
	return attendance.MapEventToResponse(event), nil
}
