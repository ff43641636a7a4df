package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/easyreserv/attendance-backend-go/internal/domain/attendance"
	"github.com/easyreserv/attendance-backend-go/internal/handler/http/response"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/qrcode"
	"github.com/easyreserv/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	GetStaffSchedules(w http.ResponseWriter, r *http.Request)
	GetStaffEvents(w http.ResponseWriter, r *http.Request)
	GetLastEvent(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	qrService         qrcode.Service
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, qrService qrcode.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		qrService:         qrService,
	}
}

// Scan implements AttendanceHandler.
func (h *attendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	var req attendance.ScanRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode scan request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// A scan may identify the site through the signed QR payload instead of
	// a raw restaurant id.
	if req.QRToken != "" {
		restaurantID, err := h.qrService.Verify(req.QRToken)
		if err != nil {
			slog.Warn("Rejected scan with invalid QR payload", "error", err)
			response.BadRequest(w, "Invalid or expired QR code", nil)
			return
		}
		req.RestaurantID = restaurantID
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Scan(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Scan processed", result)
}

// GetStaffSchedules implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStaffSchedules(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "id")
	if staffID == "" {
		response.BadRequest(w, "Staff id is required", nil)
		return
	}

	schedules, err := h.attendanceService.GetStaffSchedules(r.Context(), staffID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, schedules)
}

// GetStaffEvents implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetStaffEvents(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "id")
	if staffID == "" {
		response.BadRequest(w, "Staff id is required", nil)
		return
	}

	var filter attendance.EventFilter
	if scheduleID := r.URL.Query().Get("schedule_id"); scheduleID != "" {
		filter.ScheduleID = &scheduleID
	}

	events, err := h.attendanceService.GetStaffEvents(r.Context(), staffID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, events)
}

// GetLastEvent implements AttendanceHandler. It returns the latest ledger
// entry for a staff member at a restaurant and schedule strictly before the
// given instant.
func (h *attendanceHandlerImpl) GetLastEvent(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "id")
	if staffID == "" {
		response.BadRequest(w, "Staff id is required", nil)
		return
	}

	query := r.URL.Query()

	restaurantID := query.Get("restaurant_id")
	if restaurantID == "" {
		response.BadRequest(w, "restaurant_id is required", nil)
		return
	}

	scheduleID := query.Get("schedule_id")
	if scheduleID == "" {
		response.BadRequest(w, "schedule_id is required", nil)
		return
	}

	before, ok := validator.ParseScanTimestamp(query.Get("before"))
	if !ok {
		response.BadRequest(w, "before must use layout "+validator.ScanTimestampLayout, nil)
		return
	}

	event, err := h.attendanceService.GetMostRecentEventBefore(r.Context(), staffID, restaurantID, scheduleID, before)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, event)
}
