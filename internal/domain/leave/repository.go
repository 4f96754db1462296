package leave

import (
	"context"
	"time"
)

// ApplicationRepository - interface for the leaves table
type ApplicationRepository interface {
	Create(ctx context.Context, application Application) (Application, error)
	GetByID(ctx context.Context, id string) (Application, error)

	// LockByID is GetByID holding a row lock until the transaction ends.
	LockByID(ctx context.Context, id string) (Application, error)
	Update(ctx context.Context, application Application) error
	List(ctx context.Context, filter LeaveFilter) ([]Application, int64, error)

	// LockEmployee serializes leave applications of one employee until the
	// transaction ends, so overlap checks across leave types cannot interleave.
	LockEmployee(ctx context.Context, employeeID string) error

	// HasOverlapping reports whether the employee has a Pending or Approved
	// application sharing at least one day with [start, end].
	HasOverlapping(ctx context.Context, employeeID string, start, end time.Time) (bool, error)

	// ListActiveBetween returns Pending and Approved applications overlapping [from, to].
	ListActiveBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Application, error)
}

// BalanceRepository - interface for the leave_balances table
type BalanceRepository interface {
	// Lock returns the row for the key with a row lock, or nil when absent.
	Lock(ctx context.Context, employeeID string, year int, leaveType Type) (*Balance, error)

	// CreateIfAbsent inserts b unless a row for its key exists, then returns
	// the stored row locked. Concurrent callers converge on one row.
	CreateIfAbsent(ctx context.Context, b Balance) (Balance, error)

	// Save persists the counters and balance of an existing row.
	Save(ctx context.Context, b Balance) error

	ListByEmployeeYear(ctx context.Context, employeeID string, year int) ([]Balance, error)
}
