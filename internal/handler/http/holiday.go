package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

type HolidayHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type holidayHandlerImpl struct {
	holidayService holiday.HolidayService
}

func NewHolidayHandler(holidayService holiday.HolidayService) HolidayHandler {
	return &holidayHandlerImpl{holidayService: holidayService}
}

func (h *holidayHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	filter := holiday.HolidayFilter{
		Year:     q.Int("year"),
		IsActive: q.Bool("is_active"),
	}
	if t := q.String("type"); t != nil {
		holidayType := holiday.Type(*t)
		filter.Type = &holidayType
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.holidayService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

func (h *holidayHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.holidayService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

func (h *holidayHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req holiday.CreateHolidayRequest
	if !decodeJSON(w, r, &req, "CreateHoliday") {
		return
	}

	result, err := h.holidayService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Holiday created successfully", result)
}

func (h *holidayHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req holiday.UpdateHolidayRequest
	if !decodeJSON(w, r, &req, "UpdateHoliday") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.holidayService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday updated successfully", result)
}

func (h *holidayHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.holidayService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}
