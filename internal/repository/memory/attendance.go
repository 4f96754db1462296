package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
)

type attendanceRepository struct {
	s *Store
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	for _, existing := range r.s.attendances {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
	}
	a.ID = newID()
	a.CreatedAt = r.s.now()
	a.UpdatedAt = a.CreatedAt
	r.s.attendances[a.ID] = a
	return a, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	a, ok := r.s.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *attendanceRepository) LockByID(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.GetByID(ctx, id)
}

func (r *attendanceRepository) LockByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	for _, a := range r.s.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return &a, nil
		}
	}
	return nil, nil
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.attendances[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.s.attendances[a.ID] = a
	return nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	defer r.s.lock(ctx)()

	var matched []attendance.Attendance
	for _, a := range r.s.attendances {
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && a.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && a.Date.After(*filter.To) {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(a.Status) != *filter.Status {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *attendanceRepository) ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	defer r.s.lock(ctx)()

	matched := []attendance.Attendance{}
	for _, a := range r.s.attendances {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	return matched, nil
}
