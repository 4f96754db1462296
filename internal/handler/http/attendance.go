package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn records the caller's arrival. The body is optional.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if !decodeJSON(w, r, &req, "CheckIn") {
		return
	}

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Checked in successfully", result)
}

func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if !decodeJSON(w, r, &req, "CheckOut") {
		return
	}

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", result)
}

func (h *attendanceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateAttendanceRequest
	if !decodeJSON(w, r, &req, "UpdateAttendance") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.UpdateAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance updated successfully", result)
}

// List returns attendance records, newest first. Filters: employee_id,
// start_date/end_date or month/year, status, page, limit.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	filter := attendance.AttendanceFilter{
		EmployeeID: q.String("employee_id"),
		StartDate:  q.String("start_date"),
		EndDate:    q.String("end_date"),
		Month:      q.Int("month"),
		Year:       q.Int("year"),
		Status:     q.String("status"),
		Page:       q.IntOr("page", 1),
		Limit:      q.IntOr("limit", 20),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.attendanceService.GetAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, result.Attendances, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
		Showing:    result.Showing,
	})
}

func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := attendance.StatsRequest{
		EmployeeID: q.String("employee_id"),
		Month:      q.Int("month"),
		Year:       q.Int("year"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.attendanceService.GetAttendanceStats(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}
