package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/repository/memory"
	auditsvc "github.com/cmlabs-hris/hris-leave-ledger/internal/service/audit"
)

// Friday. The following week, 2024-03-04..08, is five working days.
var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *LeaveServiceImpl
	store *memory.Store
	hub   *sse.Hub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.NewStore()
	hub := sse.NewHub()
	ledger := NewLedger(store.Balances(), leave.DefaultAllocations())
	svc := NewLeaveService(store, store.Leaves(), ledger, auditsvc.NewRecorder(store.AuditLogs()), hub,
		Config{OverdrawRequiresFlag: true}).(*LeaveServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	return fixture{svc: svc, store: store, hub: hub}
}

func employeeCtx(id string) context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "u-" + id, EmployeeID: id, Role: user.RoleEmployee})
}

func hrCtx() context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "u-hr", EmployeeID: "hr-1", Role: user.RoleHR})
}

func (f fixture) balance(t *testing.T, employeeID string, leaveType leave.Type) leave.Balance {
	t.Helper()
	b, err := f.store.Balances().Lock(context.Background(), employeeID, 2024, leaveType)
	require.NoError(t, err)
	require.NotNil(t, b, "balance row for %s/%s", employeeID, leaveType)
	return *b
}

// assertBalanceInvariant checks balance = allocated - used - pending on every row.
func (f fixture) assertBalanceInvariant(t *testing.T, employeeIDs ...string) {
	t.Helper()
	for _, id := range employeeIDs {
		rows, err := f.store.Balances().ListByEmployeeYear(context.Background(), id, 2024)
		require.NoError(t, err)
		for _, b := range rows {
			assert.InDelta(t, b.TotalAllocated-b.Used-b.Pending, b.Balance, 1e-9, "%s %s", id, b.LeaveType)
		}
	}
}

func (f fixture) apply(t *testing.T, employeeID string, leaveType leave.Type, start, end string) leave.LeaveResponse {
	t.Helper()
	resp, err := f.svc.ApplyLeave(employeeCtx(employeeID), leave.ApplyLeaveRequest{
		LeaveType: string(leaveType), StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	return resp
}

func (f fixture) auditActions() []string {
	var actions []string
	for _, e := range f.store.AuditEntries() {
		actions = append(actions, e.Action)
	}
	return actions
}

func TestApplyLeave_ReservesPendingDays(t *testing.T) {
	f := newFixture(t)

	resp := f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-08")
	assert.Equal(t, 5, resp.TotalDays)
	assert.Equal(t, "Pending", resp.Status)
	assert.False(t, resp.IsExtraLeave)
	assert.Equal(t, "u-emp-1", resp.AppliedBy)

	b := f.balance(t, "emp-1", leave.TypeCasual)
	assert.Equal(t, 12.0, b.TotalAllocated)
	assert.Equal(t, 5.0, b.Pending)
	assert.Equal(t, 7.0, b.Balance)
	f.assertBalanceInvariant(t, "emp-1")

	assert.Equal(t, []string{audit.ActionApplyLeave}, f.auditActions())
}

func TestApplyLeave_InvalidRanges(t *testing.T) {
	f := newFixture(t)
	ctx := employeeCtx("emp-1")

	cases := []struct {
		name       string
		start, end string
		want       error
	}{
		{"start in the past", "2024-02-29", "2024-03-04", leave.ErrStartDateInPast},
		{"end before start", "2024-03-08", "2024-03-04", leave.ErrEndBeforeStart},
		{"weekend only", "2024-03-09", "2024-03-10", leave.ErrInvalidRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{
				LeaveType: string(leave.TypeSick), StartDate: tc.start, EndDate: tc.end,
			})
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		})
	}

	_, err := f.svc.ApplyLeave(ctx, leave.ApplyLeaveRequest{LeaveType: "Gap Year", StartDate: "2024-03-04", EndDate: "2024-03-05"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leave_type")

	// Today is allowed.
	resp := f.apply(t, "emp-1", leave.TypeSick, "2024-03-01", "2024-03-01")
	assert.Equal(t, 1, resp.TotalDays)
}

func TestApplyLeave_OverlapIsRejectedWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-08")

	_, err := f.svc.ApplyLeave(employeeCtx("emp-1"), leave.ApplyLeaveRequest{
		LeaveType: string(leave.TypeSick), StartDate: "2024-03-08", EndDate: "2024-03-12",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	assert.Equal(t, 5.0, f.balance(t, "emp-1", leave.TypeCasual).Pending)
	sick, err := f.store.Balances().Lock(context.Background(), "emp-1", 2024, leave.TypeSick)
	require.NoError(t, err)
	assert.Nil(t, sick, "rolled back transaction must not leave a balance row")

	// Other employees and non-overlapping periods are fine.
	f.apply(t, "emp-2", leave.TypeCasual, "2024-03-04", "2024-03-08")
	f.apply(t, "emp-1", leave.TypeSick, "2024-03-11", "2024-03-12")
}

// orderedApplications records the order of locking and overlap checks.
type orderedApplications struct {
	leave.ApplicationRepository
	calls   []string
	lockErr error
}

func (r *orderedApplications) LockEmployee(ctx context.Context, employeeID string) error {
	r.calls = append(r.calls, "lock:"+employeeID)
	if r.lockErr != nil {
		return r.lockErr
	}
	return r.ApplicationRepository.LockEmployee(ctx, employeeID)
}

func (r *orderedApplications) HasOverlapping(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	r.calls = append(r.calls, "overlap:"+employeeID)
	return r.ApplicationRepository.HasOverlapping(ctx, employeeID, start, end)
}

func TestApplyLeave_LocksEmployeeBeforeOverlapCheck(t *testing.T) {
	f := newFixture(t)
	repo := &orderedApplications{ApplicationRepository: f.store.Leaves()}
	f.svc.ApplicationRepository = repo

	f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-05")
	f.apply(t, "emp-1", leave.TypeSick, "2024-03-11", "2024-03-11")
	assert.Equal(t, []string{"lock:emp-1", "overlap:emp-1", "lock:emp-1", "overlap:emp-1"}, repo.calls)

	repo.calls, repo.lockErr = nil, errors.New("lock timeout")
	_, err := f.svc.ApplyLeave(employeeCtx("emp-1"), leave.ApplyLeaveRequest{
		LeaveType: string(leave.TypeEarned), StartDate: "2024-03-18", EndDate: "2024-03-18",
	})
	assert.ErrorIs(t, err, repo.lockErr)
	assert.Equal(t, []string{"lock:emp-1"}, repo.calls)

	earned, err := f.store.Balances().Lock(context.Background(), "emp-1", 2024, leave.TypeEarned)
	require.NoError(t, err)
	assert.Nil(t, earned)
}

func TestApplyLeave_ExtraLeaveUsesAvailable(t *testing.T) {
	f := newFixture(t)

	// Casual: 12 allocated. After 5 pending, balance is 7 and available is 2.
	f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-08")
	resp := f.apply(t, "emp-1", leave.TypeCasual, "2024-03-11", "2024-03-13")
	assert.True(t, resp.IsExtraLeave)

	b := f.balance(t, "emp-1", leave.TypeCasual)
	assert.Equal(t, 8.0, b.Pending)
	assert.Equal(t, 4.0, b.Balance)
	f.assertBalanceInvariant(t, "emp-1")
}

func TestApplyLeave_UnpaidIsNeverExtra(t *testing.T) {
	f := newFixture(t)
	zero := 0.0
	_, err := f.svc.UpdateLeaveAllocation(hrCtx(), leave.UpdateAllocationRequest{
		EmployeeID: "emp-1", Year: 2024, LeaveType: string(leave.TypeUnpaid), TotalAllocated: &zero,
	})
	require.NoError(t, err)

	resp := f.apply(t, "emp-1", leave.TypeUnpaid, "2024-03-04", "2024-03-15")
	assert.Equal(t, 10, resp.TotalDays)
	assert.False(t, resp.IsExtraLeave)
	assert.Equal(t, -10.0, f.balance(t, "emp-1", leave.TypeUnpaid).Balance)
}

func TestCancelLeave_RestoresPending(t *testing.T) {
	f := newFixture(t)
	initial := f.apply(t, "emp-1", leave.TypeSick, "2024-03-04", "2024-03-05")
	before := f.balance(t, "emp-1", leave.TypeSick)

	applied := f.apply(t, "emp-1", leave.TypeSick, "2024-03-11", "2024-03-15")
	resp, err := f.svc.CancelLeave(employeeCtx("emp-1"), applied.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", resp.Status)

	after := f.balance(t, "emp-1", leave.TypeSick)
	assert.Equal(t, before.Pending, after.Pending)
	assert.Equal(t, before.Balance, after.Balance)
	f.assertBalanceInvariant(t, "emp-1")

	t.Run("not owner", func(t *testing.T) {
		_, err := f.svc.CancelLeave(employeeCtx("emp-2"), initial.ID)
		assert.ErrorIs(t, err, leave.ErrNotOwner)
		assert.Equal(t, apperror.KindPermission, apperror.KindOf(err))
	})

	t.Run("privileged callers are not owners either", func(t *testing.T) {
		_, err := f.svc.CancelLeave(hrCtx(), initial.ID)
		assert.ErrorIs(t, err, leave.ErrNotOwner)
	})

	t.Run("already cancelled", func(t *testing.T) {
		_, err := f.svc.CancelLeave(employeeCtx("emp-1"), applied.ID)
		assert.ErrorIs(t, err, leave.ErrNotPending)
		assert.Contains(t, err.Error(), "cancelled")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := f.svc.CancelLeave(employeeCtx("emp-1"), "missing")
		assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
	})
}

func TestApproveLeave_MovesPendingToUsed(t *testing.T) {
	f := newFixture(t)
	events, cancel := f.hub.Subscribe("emp-1")
	defer cancel()

	applied := f.apply(t, "emp-1", leave.TypeEarned, "2024-03-04", "2024-03-08")
	before := f.balance(t, "emp-1", leave.TypeEarned)

	resp, err := f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: applied.ID})
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.Status)
	require.NotNil(t, resp.ApprovedBy)
	assert.Equal(t, "u-hr", *resp.ApprovedBy)
	require.NotNil(t, resp.ApprovedByRole)
	assert.Equal(t, "HR", *resp.ApprovedByRole)
	assert.NotNil(t, resp.ApprovedAt)

	after := f.balance(t, "emp-1", leave.TypeEarned)
	assert.Equal(t, before.Pending-5, after.Pending)
	assert.Equal(t, before.Used+5, after.Used)
	assert.Equal(t, before.Balance, after.Balance)
	f.assertBalanceInvariant(t, "emp-1")

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventLeaveApproved, ev.Name)
	default:
		t.Fatal("expected a leave.approved event")
	}

	_, err = f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: applied.ID})
	assert.ErrorIs(t, err, leave.ErrNotPending)
	assert.Equal(t, apperror.KindState, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "approved")

	_, err = f.svc.CancelLeave(employeeCtx("emp-1"), applied.ID)
	assert.ErrorIs(t, err, leave.ErrNotPending)
}

func TestApproveLeave_RequiresPrivilegedRole(t *testing.T) {
	f := newFixture(t)
	applied := f.apply(t, "emp-1", leave.TypeSick, "2024-03-04", "2024-03-04")

	_, err := f.svc.ApproveLeave(employeeCtx("emp-2"), leave.ApproveLeaveRequest{ID: applied.ID})
	assert.ErrorIs(t, err, user.ErrPrivilegedRoleRequired)

	_, err = f.svc.RejectLeave(employeeCtx("emp-2"), leave.RejectLeaveRequest{ID: applied.ID, RejectionReason: "no"})
	assert.ErrorIs(t, err, user.ErrPrivilegedRoleRequired)
}

func TestApproveLeave_OverdrawNeedsAcknowledgement(t *testing.T) {
	f := newFixture(t)

	// Paternity: 7 allocated, 10 requested.
	applied := f.apply(t, "emp-1", leave.TypePaternity, "2024-03-04", "2024-03-15")
	require.True(t, applied.IsExtraLeave)

	_, err := f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: applied.ID})
	assert.ErrorIs(t, err, leave.ErrOverdrawNotAcknowledged)
	assert.Equal(t, apperror.KindState, apperror.KindOf(err))
	assert.Equal(t, 10.0, f.balance(t, "emp-1", leave.TypePaternity).Pending)

	resp, err := f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: applied.ID, AllowOverdraw: true})
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.Status)

	b := f.balance(t, "emp-1", leave.TypePaternity)
	assert.Equal(t, 10.0, b.Used)
	assert.Equal(t, -3.0, b.Balance)

	entries := f.store.AuditEntries()
	last := entries[len(entries)-1]
	assert.Equal(t, audit.ActionApproveLeave, last.Action)
	assert.Contains(t, string(last.Metadata), `"allow_overdraw":true`)
}

func TestApproveLeave_OverdrawFlagDisabled(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.OverdrawRequiresFlag = false

	applied := f.apply(t, "emp-1", leave.TypePaternity, "2024-03-04", "2024-03-15")
	_, err := f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: applied.ID})
	assert.NoError(t, err)
}

func TestApproveLeave_WithoutBalanceRowChargesUnreserved(t *testing.T) {
	f := newFixture(t)
	created, err := f.store.Leaves().Create(context.Background(), leave.Application{
		EmployeeID: "emp-1",
		LeaveType:  leave.TypeBereavement,
		StartDate:  workday.MustParseDate("2024-03-04"),
		EndDate:    workday.MustParseDate("2024-03-06"),
		TotalDays:  3,
		Status:     leave.StatusPending,
		AppliedBy:  "u-emp-1",
	})
	require.NoError(t, err)

	_, err = f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: created.ID})
	require.NoError(t, err)

	b := f.balance(t, "emp-1", leave.TypeBereavement)
	assert.Zero(t, b.TotalAllocated)
	assert.Equal(t, 3.0, b.Used)
	assert.Zero(t, b.Pending)
	assert.Equal(t, -3.0, b.Balance)
}

func TestRejectLeave(t *testing.T) {
	f := newFixture(t)
	events, cancel := f.hub.Subscribe("emp-1")
	defer cancel()
	applied := f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-06")

	_, err := f.svc.RejectLeave(hrCtx(), leave.RejectLeaveRequest{ID: applied.ID, RejectionReason: "  "})
	assert.ErrorIs(t, err, leave.ErrRejectionReasonRequired)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	resp, err := f.svc.RejectLeave(hrCtx(), leave.RejectLeaveRequest{ID: applied.ID, RejectionReason: "Quarter end"})
	require.NoError(t, err)
	assert.Equal(t, "Rejected", resp.Status)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "Quarter end", *resp.RejectionReason)

	b := f.balance(t, "emp-1", leave.TypeCasual)
	assert.Zero(t, b.Pending)
	assert.Equal(t, 12.0, b.Balance)

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventLeaveRejected, ev.Name)
	default:
		t.Fatal("expected a leave.rejected event")
	}

	_, err = f.svc.RejectLeave(hrCtx(), leave.RejectLeaveRequest{ID: applied.ID, RejectionReason: "again"})
	assert.ErrorIs(t, err, leave.ErrNotPending)
	assert.Contains(t, err.Error(), "rejected")

	// A rejected period no longer blocks a new application.
	f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-06")
}

func TestGetLeaves_Visibility(t *testing.T) {
	f := newFixture(t)
	f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-05")
	f.apply(t, "emp-1", leave.TypeSick, "2024-04-01", "2024-04-02")
	f.apply(t, "emp-2", leave.TypeSick, "2024-03-04", "2024-03-05")

	own, err := f.svc.GetLeaves(employeeCtx("emp-1"), leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), own.TotalCount)
	assert.Equal(t, "1-2 of 2", own.Showing)

	other := "emp-2"
	_, err = f.svc.GetLeaves(employeeCtx("emp-1"), leave.LeaveFilter{EmployeeID: &other})
	assert.ErrorIs(t, err, user.ErrForbidden)

	theirs, err := f.svc.GetLeaves(hrCtx(), leave.LeaveFilter{EmployeeID: &other})
	require.NoError(t, err)
	assert.Equal(t, int64(1), theirs.TotalCount)

	sick := string(leave.TypeSick)
	filtered, err := f.svc.GetLeaves(employeeCtx("emp-1"), leave.LeaveFilter{LeaveType: &sick})
	require.NoError(t, err)
	require.Len(t, filtered.Leaves, 1)
	assert.Equal(t, "2024-04-01", filtered.Leaves[0].StartDate)

	start, end := "2024-03-01", "2024-03-31"
	march, err := f.svc.GetLeaves(employeeCtx("emp-1"), leave.LeaveFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, int64(1), march.TotalCount)

	bad := "Unknown"
	_, err = f.svc.GetLeaves(employeeCtx("emp-1"), leave.LeaveFilter{Status: &bad})
	assert.Error(t, err)
}

func TestGetLeave(t *testing.T) {
	f := newFixture(t)
	applied := f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-05")

	got, err := f.svc.GetLeave(employeeCtx("emp-1"), applied.ID)
	require.NoError(t, err)
	assert.Equal(t, applied.ID, got.ID)

	_, err = f.svc.GetLeave(employeeCtx("emp-2"), applied.ID)
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.GetLeave(hrCtx(), applied.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetLeave(hrCtx(), "missing")
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

func TestUpdateLeaveAllocation(t *testing.T) {
	f := newFixture(t)
	total := 20.0
	req := leave.UpdateAllocationRequest{EmployeeID: "emp-1", Year: 2024, LeaveType: string(leave.TypeSick), TotalAllocated: &total}

	_, err := f.svc.UpdateLeaveAllocation(employeeCtx("emp-1"), req)
	assert.ErrorIs(t, err, user.ErrPrivilegedRoleRequired)

	resp, err := f.svc.UpdateLeaveAllocation(hrCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, 20.0, resp.TotalAllocated)
	assert.Equal(t, 20.0, resp.Balance)

	f.apply(t, "emp-1", leave.TypeSick, "2024-03-04", "2024-03-05")
	total = 1
	resp, err = f.svc.UpdateLeaveAllocation(hrCtx(), req)
	require.NoError(t, err)
	assert.Equal(t, 2.0, resp.Pending)
	assert.Equal(t, -1.0, resp.Balance)
	f.assertBalanceInvariant(t, "emp-1")

	var changes []string
	for _, e := range f.store.AuditEntries() {
		if e.Action == audit.ActionUpdateLeaveAllocation {
			assert.Equal(t, audit.EntityLeaveBalance, e.EntityType)
			changes = append(changes, string(e.Changes))
		}
	}
	require.Len(t, changes, 2)
	assert.Contains(t, changes[0], `"created"`)
	assert.Contains(t, changes[1], `"before"`)

	negative := -1.0
	_, err = f.svc.UpdateLeaveAllocation(hrCtx(), leave.UpdateAllocationRequest{
		EmployeeID: "emp-1", Year: 2024, LeaveType: string(leave.TypeSick), TotalAllocated: &negative,
	})
	assert.Error(t, err)
}

func TestGetLeaveBalance(t *testing.T) {
	f := newFixture(t)
	f.apply(t, "emp-1", leave.TypeCasual, "2024-03-04", "2024-03-05")
	sick := f.apply(t, "emp-1", leave.TypeSick, "2024-03-06", "2024-03-06")
	_, err := f.svc.ApproveLeave(hrCtx(), leave.ApproveLeaveRequest{ID: sick.ID})
	require.NoError(t, err)

	resp, err := f.svc.GetLeaveBalance(employeeCtx("emp-1"), leave.BalanceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, 2024, resp.Year)
	require.Len(t, resp.LeaveBalances, 2)
	assert.Equal(t, leave.Totals{
		TotalAllocated: 24,
		TotalUsed:      1,
		TotalPending:   2,
		TotalBalance:   21,
	}, resp.Totals)

	other := "emp-1"
	_, err = f.svc.GetLeaveBalance(employeeCtx("emp-2"), leave.BalanceRequest{EmployeeID: &other})
	assert.ErrorIs(t, err, user.ErrForbidden)

	year := 2023
	empty, err := f.svc.GetLeaveBalance(hrCtx(), leave.BalanceRequest{EmployeeID: &other, Year: &year})
	require.NoError(t, err)
	assert.Empty(t, empty.LeaveBalances)
	assert.Equal(t, leave.Totals{}, empty.Totals)
}
