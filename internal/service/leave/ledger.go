package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
)

// LedgerImpl applies balance arithmetic on top of a BalanceRepository. It
// never opens a transaction of its own.
type LedgerImpl struct {
	leave.BalanceRepository
	allocations leave.Allocations
	now         func() time.Time
}

func NewLedger(balanceRepo leave.BalanceRepository, allocations leave.Allocations) *LedgerImpl {
	if allocations == nil {
		allocations = leave.DefaultAllocations()
	}
	return &LedgerImpl{
		BalanceRepository: balanceRepo,
		allocations:       allocations,
		now:               time.Now,
	}
}

var _ leave.Ledger = (*LedgerImpl)(nil)

// GetOrCreate implements leave.Ledger.
func (l *LedgerImpl) GetOrCreate(ctx context.Context, employeeID string, year int, leaveType leave.Type) (leave.Balance, error) {
	existing, err := l.BalanceRepository.Lock(ctx, employeeID, year, leaveType)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	if existing != nil {
		return *existing, nil
	}

	seed := leave.Balance{
		EmployeeID:     employeeID,
		Year:           year,
		LeaveType:      leaveType,
		TotalAllocated: l.allocations.For(leaveType),
	}
	seed.Recompute()

	created, err := l.BalanceRepository.CreateIfAbsent(ctx, seed)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	slog.Debug("Leave balance created", "employee_id", employeeID, "year", year, "leave_type", leaveType, "allocated", created.TotalAllocated)
	return created, nil
}

// Find implements leave.Ledger.
func (l *LedgerImpl) Find(ctx context.Context, employeeID string, year int, leaveType leave.Type) (*leave.Balance, error) {
	b, err := l.BalanceRepository.Lock(ctx, employeeID, year, leaveType)
	if err != nil {
		return nil, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return b, nil
}

// ChargeUnreserved implements leave.Ledger.
func (l *LedgerImpl) ChargeUnreserved(ctx context.Context, employeeID string, year int, leaveType leave.Type, days float64) (leave.Balance, error) {
	b, err := l.BalanceRepository.CreateIfAbsent(ctx, leave.Balance{
		EmployeeID: employeeID,
		Year:       year,
		LeaveType:  leaveType,
	})
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	b.Used += days
	return l.save(ctx, b)
}

// Reserve implements leave.Ledger. The balance may go negative.
func (l *LedgerImpl) Reserve(ctx context.Context, b leave.Balance, days float64) (leave.Balance, error) {
	b.Pending += days
	return l.save(ctx, b)
}

// Commit implements leave.Ledger.
func (l *LedgerImpl) Commit(ctx context.Context, b leave.Balance, days float64) (leave.Balance, error) {
	b.Pending -= days
	b.Used += days
	return l.save(ctx, b)
}

// Release implements leave.Ledger.
func (l *LedgerImpl) Release(ctx context.Context, b leave.Balance, days float64) (leave.Balance, error) {
	b.Pending -= days
	return l.save(ctx, b)
}

// SetAllocation implements leave.Ledger. before is nil when the row was
// created by this call.
func (l *LedgerImpl) SetAllocation(ctx context.Context, employeeID string, year int, leaveType leave.Type, total float64) (*leave.Balance, leave.Balance, error) {
	existing, err := l.Find(ctx, employeeID, year, leaveType)
	if err != nil {
		return nil, leave.Balance{}, err
	}

	var b leave.Balance
	if existing != nil {
		snapshot := *existing
		b = snapshot
		existing = &snapshot
	} else {
		b, err = l.BalanceRepository.CreateIfAbsent(ctx, leave.Balance{
			EmployeeID: employeeID,
			Year:       year,
			LeaveType:  leaveType,
		})
		if err != nil {
			return nil, leave.Balance{}, fmt.Errorf("failed to create leave balance: %w", err)
		}
	}

	b.TotalAllocated = total
	after, err := l.save(ctx, b)
	if err != nil {
		return nil, leave.Balance{}, err
	}
	return existing, after, nil
}

// List implements leave.Ledger.
func (l *LedgerImpl) List(ctx context.Context, employeeID string, year int) ([]leave.Balance, error) {
	balances, err := l.BalanceRepository.ListByEmployeeYear(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	return balances, nil
}

func (l *LedgerImpl) save(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	b.Recompute()
	b.UpdatedAt = l.now().UTC()
	if err := l.BalanceRepository.Save(ctx, b); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to save leave balance: %w", err)
	}
	return b, nil
}
