package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	GetByID(ctx context.Context, id string) (Holiday, error)
	Update(ctx context.Context, h Holiday) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, error)

	// ExistsOnDate reports whether a holiday other than excludeID already
	// uses date in year. Active and inactive holidays both count.
	ExistsOnDate(ctx context.Context, date time.Time, year int, excludeID string) (bool, error)

	// ListActiveBetween returns active holidays in [from, to] ordered by date.
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
