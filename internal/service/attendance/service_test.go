package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/easyreserv/attendance-backend-go/internal/domain/attendance"
	"github.com/easyreserv/attendance-backend-go/internal/domain/restaurant"
	"github.com/easyreserv/attendance-backend-go/internal/domain/staff"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== in-memory fixture =====

type testEnv struct {
	staffMembers map[string]staff.StaffMember
	schedules    []attendance.Schedule
	events       []attendance.AttendanceEvent
	restaurants  map[string]restaurant.Restaurant

	seq           int
	failSetActive bool
}

func (e *testEnv) nextID(prefix string) string {
	e.seq++
	return fmt.Sprintf("%s-%d", prefix, e.seq)
}

type envSnapshot struct {
	staffMembers map[string]staff.StaffMember
	schedules    []attendance.Schedule
	events       []attendance.AttendanceEvent
}

func (e *testEnv) snapshot() envSnapshot {
	members := make(map[string]staff.StaffMember, len(e.staffMembers))
	for k, v := range e.staffMembers {
		members[k] = v
	}
	return envSnapshot{
		staffMembers: members,
		schedules:    append([]attendance.Schedule(nil), e.schedules...),
		events:       append([]attendance.AttendanceEvent(nil), e.events...),
	}
}

func (e *testEnv) restore(s envSnapshot) {
	e.staffMembers = s.staffMembers
	e.schedules = s.schedules
	e.events = s.events
}

// fakeTxManager emulates transactional semantics by snapshotting the stores
// and restoring them when fn fails.
type fakeTxManager struct {
	env *testEnv
}

func (m fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.env.snapshot()
	if err := fn(ctx); err != nil {
		m.env.restore(snap)
		return err
	}
	return nil
}

type fakeScheduleRepo struct {
	env *testEnv
}

func (r fakeScheduleRepo) Create(_ context.Context, schedule attendance.Schedule) (attendance.Schedule, error) {
	schedule.ID = r.env.nextID("sched")
	schedule.CreatedAt = time.Now()
	r.env.schedules = append(r.env.schedules, schedule)
	return schedule, nil
}

func (r fakeScheduleRepo) GetByID(_ context.Context, id string) (attendance.Schedule, error) {
	for _, s := range r.env.schedules {
		if s.ID == id {
			return s, nil
		}
	}
	return attendance.Schedule{}, attendance.ErrScheduleNotFound
}

func (r fakeScheduleRepo) FindForDay(_ context.Context, staffID string, at time.Time) (attendance.Schedule, error) {
	day := at.UTC().Format("2006-01-02")
	for i := len(r.env.schedules) - 1; i >= 0; i-- {
		s := r.env.schedules[i]
		if s.StaffID == staffID && s.DeletedAt == nil && s.Date.UTC().Format("2006-01-02") == day {
			return s, nil
		}
	}
	return attendance.Schedule{}, attendance.ErrScheduleNotFound
}

func (r fakeScheduleRepo) Update(_ context.Context, schedule attendance.Schedule) error {
	for i, s := range r.env.schedules {
		if s.ID == schedule.ID {
			r.env.schedules[i] = schedule
			return nil
		}
	}
	return attendance.ErrScheduleNotFound
}

func (r fakeScheduleRepo) ListByStaff(_ context.Context, staffID string) ([]attendance.Schedule, error) {
	var out []attendance.Schedule
	for i := len(r.env.schedules) - 1; i >= 0; i-- {
		if r.env.schedules[i].StaffID == staffID {
			out = append(out, r.env.schedules[i])
		}
	}
	return out, nil
}

type fakeEventRepo struct {
	env *testEnv
}

func (r fakeEventRepo) Append(_ context.Context, event attendance.AttendanceEvent) (attendance.AttendanceEvent, error) {
	event.ID = r.env.nextID("event")
	event.CreatedAt = time.Now()
	r.env.events = append(r.env.events, event)
	return event, nil
}

func (r fakeEventRepo) MostRecentBefore(_ context.Context, staffID, restaurantID, scheduleID string, before time.Time) (attendance.AttendanceEvent, error) {
	for i := len(r.env.events) - 1; i >= 0; i-- {
		e := r.env.events[i]
		if e.StaffID == staffID && e.RestaurantID == restaurantID && e.ScheduleID == scheduleID && e.Timestamp.Before(before) {
			return e, nil
		}
	}
	return attendance.AttendanceEvent{}, attendance.ErrEventNotFound
}

func (r fakeEventRepo) ListByStaff(_ context.Context, staffID string, filter attendance.EventFilter) ([]attendance.AttendanceEvent, error) {
	var out []attendance.AttendanceEvent
	for i := len(r.env.events) - 1; i >= 0; i-- {
		e := r.env.events[i]
		if e.StaffID != staffID {
			continue
		}
		if filter.ScheduleID != nil && e.ScheduleID != *filter.ScheduleID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeStaffRepo struct {
	env *testEnv
}

func (r fakeStaffRepo) GetByID(_ context.Context, id string) (staff.StaffMember, error) {
	member, ok := r.env.staffMembers[id]
	if !ok {
		return staff.StaffMember{}, staff.ErrStaffNotFound
	}
	return member, nil
}

func (r fakeStaffRepo) GetForUpdate(ctx context.Context, id string) (staff.StaffMember, error) {
	return r.GetByID(ctx, id)
}

func (r fakeStaffRepo) SetActiveSchedule(_ context.Context, staffID string, scheduleID *string) error {
	if r.env.failSetActive {
		return errors.New("injected staff write failure")
	}
	member, ok := r.env.staffMembers[staffID]
	if !ok {
		return staff.ErrStaffNotFound
	}
	member.ActiveScheduleID = scheduleID
	r.env.staffMembers[staffID] = member
	return nil
}

type fakeRestaurantRepo struct {
	env *testEnv
}

func (r fakeRestaurantRepo) GetByID(_ context.Context, id string) (restaurant.Restaurant, error) {
	site, ok := r.env.restaurants[id]
	if !ok {
		return restaurant.Restaurant{}, restaurant.ErrRestaurantNotFound
	}
	return site, nil
}

// ===== fixture construction =====

const (
	testStaffID      = "staff-100"
	testRestaurantID = "rest-100"
)

var testNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	lat, lng := 47.0000, 28.0000
	return &testEnv{
		staffMembers: map[string]staff.StaffMember{
			testStaffID: {ID: testStaffID, Name: "Ion Rusu", RestaurantID: testRestaurantID},
		},
		restaurants: map[string]restaurant.Restaurant{
			testRestaurantID: {ID: testRestaurantID, Name: "Test Restaurant", Latitude: &lat, Longitude: &lng},
		},
	}
}

func newTestService(env *testEnv, now time.Time) attendance.AttendanceService {
	return NewAttendanceService(
		fakeTxManager{env},
		clock.Fixed{Instant: now},
		fakeScheduleRepo{env},
		fakeEventRepo{env},
		fakeStaffRepo{env},
		fakeRestaurantRepo{env},
	)
}

func scanReq(status attendance.ScanStatus) attendance.ScanRequest {
	return attendance.ScanRequest{
		StaffID:      testStaffID,
		RestaurantID: testRestaurantID,
		Status:       status,
		Latitude:     47.0001,
		Longitude:    28.0001,
	}
}

func strPtr(s string) *string { return &s }

// ===== check-in =====

func TestScan_CheckIn_CreatesUnplannedSchedule(t *testing.T) {
	env := newTestEnv()
	svc := newTestService(env, testNow)

	resp, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckIn))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.CheckStatusCheckedIn), resp.Schedule.CheckStatus)
	assert.Equal(t, 0.0, resp.Schedule.PlannedHours)
	require.NotNil(t, resp.ActiveScheduleID)
	assert.Equal(t, resp.Schedule.ID, *resp.ActiveScheduleID)

	assert.Equal(t, string(attendance.EventTypeCheckIn), resp.AttendanceEvent.Type)
	assert.Equal(t, resp.Schedule.ID, resp.AttendanceEvent.ScheduleID)
	assert.Equal(t, testRestaurantID, resp.AttendanceEvent.RestaurantID)

	member := env.staffMembers[testStaffID]
	require.NotNil(t, member.ActiveScheduleID)
	assert.Equal(t, resp.Schedule.ID, *member.ActiveScheduleID)
}

func TestScan_CheckIn_ReusesPendingSchedule(t *testing.T) {
	env := newTestEnv()
	env.schedules = append(env.schedules, attendance.Schedule{
		ID:           "sched-planned",
		StaffID:      testStaffID,
		Date:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		PlannedHours: 8,
		CheckStatus:  attendance.CheckStatusPending,
	})
	svc := newTestService(env, testNow)

	resp, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckIn))
	require.NoError(t, err)

	assert.Equal(t, "sched-planned", resp.Schedule.ID)
	assert.Equal(t, 8.0, resp.Schedule.PlannedHours)
	assert.Len(t, env.schedules, 1)
}

func TestScan_CheckIn_AlreadyCheckedIn(t *testing.T) {
	env := newTestEnv()
	member := env.staffMembers[testStaffID]
	member.ActiveScheduleID = strPtr("sched-open")
	env.staffMembers[testStaffID] = member
	svc := newTestService(env, testNow)

	_, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckIn))
	require.Error(t, err)
	assert.Equal(t, attendance.CodeAlreadyCheckedIn, attendance.CodeOf(err))

	var attErr *attendance.Error
	require.ErrorAs(t, err, &attErr)
	assert.Contains(t, attErr.Detail, "sched-open")
}

func TestScan_CheckIn_OutsideGeofence(t *testing.T) {
	env := newTestEnv()
	svc := newTestService(env, testNow)

	req := scanReq(attendance.ScanStatusCheckIn)
	req.Latitude = 47.0200
	req.Longitude = 28.0200

	_, err := svc.Scan(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, attendance.CodeLocationValidationFailed, attendance.CodeOf(err))

	assert.Empty(t, env.schedules)
	assert.Empty(t, env.events)
	assert.Nil(t, env.staffMembers[testStaffID].ActiveScheduleID)
}

func TestScan_CheckIn_RestaurantWithoutCoordinates(t *testing.T) {
	env := newTestEnv()
	env.restaurants[testRestaurantID] = restaurant.Restaurant{ID: testRestaurantID, Name: "Unconfigured"}
	svc := newTestService(env, testNow)

	_, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckIn))
	require.Error(t, err)
	assert.Equal(t, attendance.CodeRestaurantNotConfigured, attendance.CodeOf(err))
}

func TestScan_CheckIn_InvalidExplicitTimestamp(t *testing.T) {
	env := newTestEnv()
	svc := newTestService(env, testNow)

	req := scanReq(attendance.ScanStatusCheckIn)
	req.Timestamp = strPtr("15/03/2024 09:00")

	_, err := svc.Scan(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, attendance.CodeInvalidDateFormat, attendance.CodeOf(err))
}

// ===== check-out =====

func checkInThenOut(t *testing.T, env *testEnv, inTS, outTS string) (attendance.ScanResponse, error) {
	t.Helper()
	svc := newTestService(env, testNow)

	in := scanReq(attendance.ScanStatusCheckIn)
	in.Timestamp = strPtr(inTS)
	_, err := svc.Scan(context.Background(), in)
	require.NoError(t, err)

	out := scanReq(attendance.ScanStatusCheckOut)
	out.Timestamp = strPtr(outTS)
	return svc.Scan(context.Background(), out)
}

func TestScan_CheckOut_ComputesWorkedHours(t *testing.T) {
	env := newTestEnv()

	resp, err := checkInThenOut(t, env, "2024-03-15 09:00:00", "2024-03-15 17:30:00")
	require.NoError(t, err)

	assert.Equal(t, string(attendance.CheckStatusCheckedOut), resp.Schedule.CheckStatus)
	assert.InDelta(t, 8.5, resp.Schedule.WorkedHours, 1e-9)
	assert.Equal(t, 0.0, resp.Schedule.OvertimeHours)
	assert.Nil(t, resp.ActiveScheduleID)

	assert.Nil(t, env.staffMembers[testStaffID].ActiveScheduleID)
	require.Len(t, env.events, 2)
	assert.Equal(t, attendance.EventTypeCheckIn, env.events[0].Type)
	assert.Equal(t, attendance.EventTypeCheckOut, env.events[1].Type)
}

func TestScan_CheckOut_PlannedOvertime(t *testing.T) {
	env := newTestEnv()
	env.schedules = append(env.schedules, attendance.Schedule{
		ID:           "sched-planned",
		StaffID:      testStaffID,
		Date:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		PlannedHours: 8,
		CheckStatus:  attendance.CheckStatusPending,
	})

	resp, err := checkInThenOut(t, env, "2024-03-15 09:00:00", "2024-03-15 19:30:00")
	require.NoError(t, err)

	assert.InDelta(t, 8, resp.Schedule.WorkedHours, 1e-9)
	assert.InDelta(t, 2.5, resp.Schedule.OvertimeHours, 1e-9)
}

func TestScan_CheckOut_OvernightShift(t *testing.T) {
	env := newTestEnv()

	resp, err := checkInThenOut(t, env, "2024-03-15 23:30:00", "2024-03-16 00:15:00")
	require.NoError(t, err)

	assert.InDelta(t, 0.75, resp.Schedule.WorkedHours, 1e-9)
	assert.Equal(t, 0.0, resp.Schedule.OvertimeHours)
}

func TestScan_CheckOut_AnomalyCapOnSchedule(t *testing.T) {
	env := newTestEnv()

	resp, err := checkInThenOut(t, env, "2024-03-15 01:00:00", "2024-03-15 21:00:00")
	require.NoError(t, err)

	assert.Equal(t, 6.0, resp.Schedule.WorkedHours)
	assert.Equal(t, 0.0, resp.Schedule.OvertimeHours)
	require.NotNil(t, resp.Schedule.AnomalyNotice)
	assert.NotEmpty(t, *resp.Schedule.AnomalyNotice)
}

func TestScan_CheckOut_NoActiveSchedule(t *testing.T) {
	env := newTestEnv()
	svc := newTestService(env, testNow)

	_, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckOut))
	require.Error(t, err)
	assert.Equal(t, attendance.CodeNoActiveSchedule, attendance.CodeOf(err))
}

func TestScan_CheckOut_MissingReferencedSchedule(t *testing.T) {
	env := newTestEnv()
	member := env.staffMembers[testStaffID]
	member.ActiveScheduleID = strPtr("sched-gone")
	env.staffMembers[testStaffID] = member
	svc := newTestService(env, testNow)

	_, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckOut))
	require.Error(t, err)
	assert.Equal(t, attendance.CodeNoActiveSchedule, attendance.CodeOf(err))
}

func TestScan_CheckOut_AlreadyCheckedOut(t *testing.T) {
	env := newTestEnv()
	checkIn := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC)
	env.schedules = append(env.schedules, attendance.Schedule{
		ID:           "sched-done",
		StaffID:      testStaffID,
		Date:         time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CheckInTime:  &checkIn,
		CheckOutTime: &checkOut,
		CheckStatus:  attendance.CheckStatusCheckedOut,
	})
	member := env.staffMembers[testStaffID]
	member.ActiveScheduleID = strPtr("sched-done")
	env.staffMembers[testStaffID] = member
	svc := newTestService(env, testNow)

	_, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckOut))
	require.Error(t, err)
	assert.Equal(t, attendance.CodeAlreadyCheckedOut, attendance.CodeOf(err))
}

// ===== invariants =====

func TestScan_ReEntryCreatesNewScheduleRow(t *testing.T) {
	env := newTestEnv()

	_, err := checkInThenOut(t, env, "2024-03-15 08:00:00", "2024-03-15 12:00:00")
	require.NoError(t, err)

	svc := newTestService(env, testNow)
	in := scanReq(attendance.ScanStatusCheckIn)
	in.Timestamp = strPtr("2024-03-15 14:00:00")
	resp, err := svc.Scan(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, env.schedules, 2)
	assert.NotEqual(t, env.schedules[0].ID, resp.Schedule.ID)
	assert.Equal(t, attendance.CheckStatusCheckedOut, env.schedules[0].CheckStatus)
	assert.Equal(t, attendance.CheckStatusCheckedIn, env.schedules[1].CheckStatus)
}

func TestScan_CheckIn_StaffWriteFailureRollsBack(t *testing.T) {
	env := newTestEnv()
	env.failSetActive = true
	svc := newTestService(env, testNow)

	_, err := svc.Scan(context.Background(), scanReq(attendance.ScanStatusCheckIn))
	require.Error(t, err)
	assert.Equal(t, attendance.CodeScheduleUpdateFailed, attendance.CodeOf(err))

	// The transition must appear as if it never happened.
	assert.Empty(t, env.schedules)
	assert.Empty(t, env.events)
	assert.Nil(t, env.staffMembers[testStaffID].ActiveScheduleID)
}

func TestScan_CheckOut_StaffWriteFailureRollsBack(t *testing.T) {
	env := newTestEnv()
	svc := newTestService(env, testNow)

	in := scanReq(attendance.ScanStatusCheckIn)
	in.Timestamp = strPtr("2024-03-15 09:00:00")
	_, err := svc.Scan(context.Background(), in)
	require.NoError(t, err)

	env.failSetActive = true
	out := scanReq(attendance.ScanStatusCheckOut)
	out.Timestamp = strPtr("2024-03-15 17:00:00")
	_, err = svc.Scan(context.Background(), out)
	require.Error(t, err)
	assert.Equal(t, attendance.CodeScheduleUpdateFailed, attendance.CodeOf(err))

	// Schedule write rolled back with the pointer write.
	require.Len(t, env.schedules, 1)
	assert.Equal(t, attendance.CheckStatusCheckedIn, env.schedules[0].CheckStatus)
	require.NotNil(t, env.staffMembers[testStaffID].ActiveScheduleID)
}

// ===== history =====

func TestGetStaffSchedulesAndEvents(t *testing.T) {
	env := newTestEnv()

	_, err := checkInThenOut(t, env, "2024-03-15 09:00:00", "2024-03-15 17:00:00")
	require.NoError(t, err)

	svc := newTestService(env, testNow)

	schedules, err := svc.GetStaffSchedules(context.Background(), testStaffID)
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, string(attendance.CheckStatusCheckedOut), schedules[0].CheckStatus)

	events, err := svc.GetStaffEvents(context.Background(), testStaffID, attendance.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	filtered, err := svc.GetStaffEvents(context.Background(), testStaffID, attendance.EventFilter{
		ScheduleID: &env.schedules[0].ID,
	})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestGetMostRecentEventBefore(t *testing.T) {
	env := newTestEnv()

	_, err := checkInThenOut(t, env, "2024-03-15 09:00:00", "2024-03-15 17:00:00")
	require.NoError(t, err)

	svc := newTestService(env, testNow)
	scheduleID := env.schedules[0].ID

	// After the check-out instant the latest entry is the check-out itself.
	latest, err := svc.GetMostRecentEventBefore(context.Background(), testStaffID, testRestaurantID, scheduleID,
		time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, string(attendance.EventTypeCheckOut), latest.Type)
	assert.Equal(t, "2024-03-15 17:00:00", latest.Timestamp)

	// Between the two scans only the check-in has happened yet.
	mid, err := svc.GetMostRecentEventBefore(context.Background(), testStaffID, testRestaurantID, scheduleID,
		time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, string(attendance.EventTypeCheckIn), mid.Type)

	// The bound is strict; an instant equal to the check-in excludes it.
	_, err = svc.GetMostRecentEventBefore(context.Background(), testStaffID, testRestaurantID, scheduleID,
		time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, attendance.ErrEventNotFound)
}
