package calendar

import "context"

type CalendarService interface {
	// GetMonthlyCalendar merges attendance, leave and holidays for one
	// employee and month. Read only.
	GetMonthlyCalendar(ctx context.Context, req MonthlyCalendarRequest) (MonthlyCalendarResponse, error)
}
