package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	UpdateAllocation(w http.ResponseWriter, r *http.Request)
	Balance(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{leaveService: leaveService}
}

func (h *leaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	var req leave.ApplyLeaveRequest
	if !decodeJSON(w, r, &req, "ApplyLeave") {
		return
	}

	result, err := h.leaveService.ApplyLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	message := "Leave application submitted successfully"
	if result.IsExtraLeave {
		message = "Leave application submitted as extra leave"
	}
	response.Created(w, message, result)
}

func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	filter := leave.LeaveFilter{
		EmployeeID: q.String("employee_id"),
		Status:     q.String("status"),
		LeaveType:  q.String("leave_type"),
		StartDate:  q.String("start_date"),
		EndDate:    q.String("end_date"),
		Page:       q.IntOr("page", 1),
		Limit:      q.IntOr("limit", 20),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.leaveService.GetLeaves(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, result.Leaves, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
		Showing:    result.Showing,
	})
}

func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.GetLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Approve accepts an optional {"allow_overdraw": true} body.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	var req leave.ApproveLeaveRequest
	if !decodeJSON(w, r, &req, "ApproveLeave") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.leaveService.ApproveLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Leave approved successfully", result)
}

func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req leave.RejectLeaveRequest
	if !decodeJSON(w, r, &req, "RejectLeave") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.leaveService.RejectLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Leave rejected successfully", result)
}

func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.CancelLeave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Leave cancelled successfully", result)
}

func (h *leaveHandlerImpl) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateAllocationRequest
	if !decodeJSON(w, r, &req, "UpdateLeaveAllocation") {
		return
	}

	result, err := h.leaveService.UpdateLeaveAllocation(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Leave allocation updated successfully", result)
}

func (h *leaveHandlerImpl) Balance(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := leave.BalanceRequest{
		EmployeeID: q.String("employee_id"),
		Year:       q.Int("year"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.leaveService.GetLeaveBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}
