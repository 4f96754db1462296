package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type leaveApplicationRepository struct {
	s *Store
}

func (r *leaveApplicationRepository) Create(ctx context.Context, l leave.Application) (leave.Application, error) {
	defer r.s.lock(ctx)()

	l.ID = newID()
	l.CreatedAt = r.s.now()
	l.UpdatedAt = l.CreatedAt
	r.s.leaves[l.ID] = l
	return l, nil
}

func (r *leaveApplicationRepository) GetByID(ctx context.Context, id string) (leave.Application, error) {
	defer r.s.lock(ctx)()

	l, ok := r.s.leaves[id]
	if !ok {
		return leave.Application{}, leave.ErrLeaveNotFound
	}
	return l, nil
}

func (r *leaveApplicationRepository) LockByID(ctx context.Context, id string) (leave.Application, error) {
	return r.GetByID(ctx, id)
}

// LockEmployee is a no-op: Store transactions already run one at a time.
func (r *leaveApplicationRepository) LockEmployee(ctx context.Context, employeeID string) error {
	return nil
}

func (r *leaveApplicationRepository) Update(ctx context.Context, l leave.Application) error {
	defer r.s.lock(ctx)()

	if _, ok := r.s.leaves[l.ID]; !ok {
		return leave.ErrLeaveNotFound
	}
	r.s.leaves[l.ID] = l
	return nil
}

func (r *leaveApplicationRepository) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.Application, int64, error) {
	defer r.s.lock(ctx)()

	var matched []leave.Application
	for _, l := range r.s.leaves {
		if filter.EmployeeID != nil && *filter.EmployeeID != "" && l.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && *filter.Status != "" && string(l.Status) != *filter.Status {
			continue
		}
		if filter.LeaveType != nil && *filter.LeaveType != "" && string(l.LeaveType) != *filter.LeaveType {
			continue
		}
		if filter.From != nil && filter.To != nil && !workday.Overlaps(l.StartDate, l.EndDate, *filter.From, *filter.To) {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func active(l leave.Application) bool {
	return l.Status == leave.StatusPending || l.Status == leave.StatusApproved
}

func (r *leaveApplicationRepository) HasOverlapping(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	defer r.s.lock(ctx)()

	for _, l := range r.s.leaves {
		if l.EmployeeID == employeeID && active(l) && workday.Overlaps(l.StartDate, l.EndDate, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveApplicationRepository) ListActiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.Application, error) {
	defer r.s.lock(ctx)()

	matched := []leave.Application{}
	for _, l := range r.s.leaves {
		if l.EmployeeID == employeeID && active(l) && workday.Overlaps(l.StartDate, l.EndDate, from, to) {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StartDate.Before(matched[j].StartDate)
	})
	return matched, nil
}

type leaveBalanceRepository struct {
	s *Store
}

func balanceKey(employeeID string, year int, t leave.Type) string {
	return fmt.Sprintf("%s|%d|%s", employeeID, year, t)
}

func (r *leaveBalanceRepository) Lock(ctx context.Context, employeeID string, year int, t leave.Type) (*leave.Balance, error) {
	defer r.s.lock(ctx)()

	b, ok := r.s.balances[balanceKey(employeeID, year, t)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *leaveBalanceRepository) CreateIfAbsent(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	defer r.s.lock(ctx)()

	key := balanceKey(b.EmployeeID, b.Year, b.LeaveType)
	if existing, ok := r.s.balances[key]; ok {
		return existing, nil
	}
	b.ID = newID()
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	r.s.balances[key] = b
	return b, nil
}

func (r *leaveBalanceRepository) Save(ctx context.Context, b leave.Balance) error {
	defer r.s.lock(ctx)()

	key := balanceKey(b.EmployeeID, b.Year, b.LeaveType)
	existing, ok := r.s.balances[key]
	if !ok || existing.ID != b.ID {
		return fmt.Errorf("leave balance %s not found", b.ID)
	}
	r.s.balances[key] = b
	return nil
}

func (r *leaveBalanceRepository) ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	defer r.s.lock(ctx)()

	balances := []leave.Balance{}
	for _, b := range r.s.balances {
		if b.EmployeeID == employeeID && b.Year == year {
			balances = append(balances, b)
		}
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].LeaveType < balances[j].LeaveType
	})
	return balances, nil
}
