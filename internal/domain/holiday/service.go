package holiday

import (
	"context"
	"time"
)

type HolidayService interface {
	// IsHoliday is true iff an active holiday exists on date.
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)

	List(ctx context.Context, filter HolidayFilter) (ListHolidayResponse, error)
	GetByID(ctx context.Context, id string) (HolidayResponse, error)
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	Update(ctx context.Context, req UpdateHolidayRequest) (HolidayResponse, error)
	Delete(ctx context.Context, id string) error
}
