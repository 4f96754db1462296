package leave

import (
	"context"
)

type LeaveService interface {
	ApplyLeave(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	GetLeaves(ctx context.Context, filter LeaveFilter) (ListLeaveResponse, error)
	GetLeave(ctx context.Context, id string) (LeaveResponse, error)
	ApproveLeave(ctx context.Context, req ApproveLeaveRequest) (LeaveResponse, error)
	RejectLeave(ctx context.Context, req RejectLeaveRequest) (LeaveResponse, error)
	CancelLeave(ctx context.Context, id string) (LeaveResponse, error)

	UpdateLeaveAllocation(ctx context.Context, req UpdateAllocationRequest) (BalanceResponse, error)
	GetLeaveBalance(ctx context.Context, req BalanceRequest) (LeaveBalanceResponse, error)
}

// Ledger owns every mutation of Balance rows. Calls are expected to run
// inside the caller's transaction.
type Ledger interface {
	// GetOrCreate locks the row, inserting it seeded from the allocation
	// table when missing.
	GetOrCreate(ctx context.Context, employeeID string, year int, leaveType Type) (Balance, error)

	// Find locks the row and returns nil when it does not exist.
	Find(ctx context.Context, employeeID string, year int, leaveType Type) (*Balance, error)

	// ChargeUnreserved books days as used on a row that never reserved
	// them, creating it with nothing allocated when missing.
	ChargeUnreserved(ctx context.Context, employeeID string, year int, leaveType Type, days float64) (Balance, error)

	Reserve(ctx context.Context, b Balance, days float64) (Balance, error)
	Commit(ctx context.Context, b Balance, days float64) (Balance, error)
	Release(ctx context.Context, b Balance, days float64) (Balance, error)
	SetAllocation(ctx context.Context, employeeID string, year int, leaveType Type, total float64) (before *Balance, after Balance, err error)
	List(ctx context.Context, employeeID string, year int) ([]Balance, error)
}
