package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
)

type holidayRepository struct {
	s *Store
}

func (r *holidayRepository) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	defer r.s.lock(ctx)()

	if r.existsOnDate(h.Date, h.Year, "") {
		return holiday.Holiday{}, holiday.ErrHolidayExists
	}
	h.ID = newID()
	h.CreatedAt = r.s.now()
	h.UpdatedAt = h.CreatedAt
	r.s.holidays[h.ID] = h
	return h, nil
}

func (r *holidayRepository) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	defer r.s.lock(ctx)()

	h, ok := r.s.holidays[id]
	if !ok {
		return holiday.Holiday{}, holiday.ErrHolidayNotFound
	}
	return h, nil
}

func (r *holidayRepository) Update(ctx context.Context, h holiday.Holiday) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.holidays[h.ID]; !ok {
		return holiday.ErrHolidayNotFound
	}
	if r.existsOnDate(h.Date, h.Year, h.ID) {
		return holiday.ErrHolidayExists
	}
	r.s.holidays[h.ID] = h
	return nil
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.holidays[id]; !ok {
		return holiday.ErrHolidayNotFound
	}
	delete(r.s.holidays, id)
	return nil
}

func (r *holidayRepository) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.Holiday, error) {
	defer r.s.lock(ctx)()

	matched := []holiday.Holiday{}
	for _, h := range r.s.holidays {
		if filter.Year != nil && h.Year != *filter.Year {
			continue
		}
		if filter.Type != nil && h.Type != *filter.Type {
			continue
		}
		if filter.IsActive != nil && h.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, h)
	}
	sortHolidays(matched)
	return matched, nil
}

func (r *holidayRepository) ExistsOnDate(ctx context.Context, date time.Time, year int, excludeID string) (bool, error) {
	defer r.s.lock(ctx)()
	return r.existsOnDate(date, year, excludeID), nil
}

func (r *holidayRepository) existsOnDate(date time.Time, year int, excludeID string) bool {
	for _, h := range r.s.holidays {
		if h.ID != excludeID && h.Year == year && h.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (r *holidayRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	defer r.s.lock(ctx)()

	matched := []holiday.Holiday{}
	for _, h := range r.s.holidays {
		if h.IsActive && !h.Date.Before(from) && !h.Date.After(to) {
			matched = append(matched, h)
		}
	}
	sortHolidays(matched)
	return matched, nil
}

func sortHolidays(hs []holiday.Holiday) {
	sort.Slice(hs, func(i, j int) bool {
		return hs[i].Date.Before(hs[j].Date)
	})
}
