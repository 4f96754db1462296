package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/repository/memory"
)

func employeeCtx(id string) context.Context {
	return user.WithActor(context.Background(), user.Actor{UserID: "u-" + id, EmployeeID: id, Role: user.RoleEmployee})
}

func newService(store *memory.Store) *CalendarServiceImpl {
	svc := NewCalendarService(store.Attendances(), store.Leaves(), store.Balances(), store.Holidays()).(*CalendarServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC) }
	return svc
}

func seedMarch(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	for _, h := range []holiday.Holiday{
		{Name: "Nyepi", Date: workday.MustParseDate("2024-03-11"), Year: 2024, Type: holiday.TypeReligious, IsActive: true},
		{Name: "Retired", Date: workday.MustParseDate("2024-03-13"), Year: 2024, Type: holiday.TypeCompany, IsActive: false},
	} {
		_, err := store.Holidays().Create(ctx, h)
		require.NoError(t, err)
	}

	for _, l := range []leave.Application{
		{EmployeeID: "emp-1", LeaveType: leave.TypeCasual, StartDate: workday.MustParseDate("2024-03-11"),
			EndDate: workday.MustParseDate("2024-03-12"), TotalDays: 2, Status: leave.StatusApproved},
		{EmployeeID: "emp-1", LeaveType: leave.TypeSick, StartDate: workday.MustParseDate("2024-03-14"),
			EndDate: workday.MustParseDate("2024-03-14"), TotalDays: 1, Status: leave.StatusPending},
		{EmployeeID: "emp-1", LeaveType: leave.TypeSick, StartDate: workday.MustParseDate("2024-03-15"),
			EndDate: workday.MustParseDate("2024-03-15"), TotalDays: 1, Status: leave.StatusRejected},
	} {
		_, err := store.Leaves().Create(ctx, l)
		require.NoError(t, err)
	}

	for _, d := range []struct{ date, in, out string }{
		{"2024-03-04", "09:15", "18:00"},
		{"2024-03-05", "09:00", "17:00"},
	} {
		a := attendance.Attendance{
			EmployeeID:       "emp-1",
			Date:             workday.MustParseDate(d.date),
			ExpectedCheckIn:  workday.DefaultExpectedCheckIn,
			ExpectedCheckOut: workday.DefaultExpectedCheckOut,
			Status:           attendance.StatusPresent,
		}
		a.ApplyCheckIn(workday.MustClock(d.in))
		a.ApplyCheckOut(workday.MustClock(d.out))
		_, err := store.Attendances().Create(ctx, a)
		require.NoError(t, err)
	}

	_, err := store.Balances().CreateIfAbsent(ctx, leave.Balance{
		EmployeeID: "emp-1", Year: 2024, LeaveType: leave.TypeCasual, TotalAllocated: 12, Used: 2, Balance: 10,
	})
	require.NoError(t, err)
}

func dayOf(t *testing.T, resp calendar.MonthlyCalendarResponse, date string) calendar.Day {
	t.Helper()
	for _, d := range resp.Calendar {
		if d.Date == date {
			return d
		}
	}
	t.Fatalf("no calendar entry for %s", date)
	return calendar.Day{}
}

func TestGetMonthlyCalendar(t *testing.T) {
	store := memory.NewStore()
	seedMarch(t, store)
	svc := newService(store)

	resp, err := svc.GetMonthlyCalendar(employeeCtx("emp-1"), calendar.MonthlyCalendarRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Month)
	assert.Equal(t, 2024, resp.Year)
	require.Len(t, resp.Calendar, 31)

	nyepi := dayOf(t, resp, "2024-03-11")
	assert.Equal(t, calendar.StatusHoliday, nyepi.Status, "holiday outranks approved leave")
	require.NotNil(t, nyepi.Holiday)
	assert.Equal(t, "Nyepi", nyepi.Holiday.Name)
	require.NotNil(t, nyepi.Leave)

	assert.Equal(t, calendar.StatusLeave, dayOf(t, resp, "2024-03-12").Status)
	assert.Equal(t, calendar.StatusAbsent, dayOf(t, resp, "2024-03-13").Status, "inactive holidays are ignored")
	assert.Equal(t, calendar.StatusLeavePending, dayOf(t, resp, "2024-03-14").Status)
	assert.Equal(t, calendar.StatusAbsent, dayOf(t, resp, "2024-03-15").Status, "rejected leave is ignored")

	sat := dayOf(t, resp, "2024-03-02")
	assert.Equal(t, calendar.StatusWeekend, sat.Status)
	assert.True(t, sat.IsWeekend)
	assert.Equal(t, "Saturday", sat.DayOfWeek)

	present := dayOf(t, resp, "2024-03-04")
	assert.Equal(t, "Present", present.Status)
	require.NotNil(t, present.Attendance)
	assert.Equal(t, 15, present.Attendance.LateMinutes)

	s := resp.Statistics
	assert.Equal(t, 31, s.TotalDays)
	assert.Equal(t, 10, s.Weekend)
	assert.Equal(t, 1, s.Holiday)
	assert.Equal(t, 2, s.Leave)
	assert.Equal(t, 2, s.Present)
	assert.Equal(t, 16, s.Absent)
	assert.Equal(t, 1, s.LateCount)
	assert.Equal(t, 15, s.TotalLateMinutes)
	assert.Equal(t, 1, s.EarlyExitCount)
	assert.Equal(t, 60, s.TotalEarlyExitMinutes)
	assert.InDelta(t, 16.75, s.TotalWorkHours, 1e-9)
	assert.InDelta(t, 8.375, s.AverageWorkHours, 1e-9)

	require.Len(t, resp.LeaveBalances, 1)
	assert.Equal(t, 10.0, resp.LeaveBalances[0].Balance)
}

func TestGetMonthlyCalendar_OtherMonth(t *testing.T) {
	store := memory.NewStore()
	seedMarch(t, store)
	svc := newService(store)

	month, year := 2, 2024
	resp, err := svc.GetMonthlyCalendar(employeeCtx("emp-1"), calendar.MonthlyCalendarRequest{Month: &month, Year: &year})
	require.NoError(t, err)
	require.Len(t, resp.Calendar, 29)
	assert.Zero(t, resp.Statistics.Present)
	assert.Equal(t, 21, resp.Statistics.Absent)
}

func TestGetMonthlyCalendar_Access(t *testing.T) {
	store := memory.NewStore()
	seedMarch(t, store)
	svc := newService(store)
	target := "emp-1"

	_, err := svc.GetMonthlyCalendar(employeeCtx("emp-2"), calendar.MonthlyCalendarRequest{EmployeeID: &target})
	assert.ErrorIs(t, err, user.ErrForbidden)

	hr := user.WithActor(context.Background(), user.Actor{UserID: "u-hr", EmployeeID: "hr-1", Role: user.RoleHR})
	resp, err := svc.GetMonthlyCalendar(hr, calendar.MonthlyCalendarRequest{EmployeeID: &target})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", resp.EmployeeID)
	assert.Equal(t, 2, resp.Statistics.Present)

	bad := 13
	_, err = svc.GetMonthlyCalendar(hr, calendar.MonthlyCalendarRequest{Month: &bad})
	assert.Error(t, err)

	_, err = svc.GetMonthlyCalendar(context.Background(), calendar.MonthlyCalendarRequest{})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}
