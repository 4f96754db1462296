package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/handler/http/response"
)

type CalendarHandler interface {
	Monthly(w http.ResponseWriter, r *http.Request)
}

type calendarHandlerImpl struct {
	calendarService calendar.CalendarService
}

func NewCalendarHandler(calendarService calendar.CalendarService) CalendarHandler {
	return &calendarHandlerImpl{calendarService: calendarService}
}

func (h *calendarHandlerImpl) Monthly(w http.ResponseWriter, r *http.Request) {
	q := newQueryParser(r)
	req := calendar.MonthlyCalendarRequest{
		EmployeeID: q.String("employee_id"),
		Month:      q.Int("month"),
		Year:       q.Int("year"),
	}
	if err := q.Err(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	result, err := h.calendarService.GetMonthlyCalendar(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}
