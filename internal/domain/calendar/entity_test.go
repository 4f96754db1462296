package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

func day(s string) time.Time {
	d, err := workday.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestResolve_Priority(t *testing.T) {
	approved := &leave.Application{Status: leave.StatusApproved}
	pending := &leave.Application{Status: leave.StatusPending}
	present := &attendance.Attendance{Status: attendance.StatusPresent}
	hol := &holiday.Holiday{Name: "New Year"}

	tests := []struct {
		name string
		ctx  DayContext
		want string
	}{
		{"holiday beats approved leave", DayContext{Date: day("2024-01-01"), Holiday: hol, Approved: approved}, StatusHoliday},
		{"approved beats pending", DayContext{Date: day("2024-01-02"), Approved: approved, Pending: pending}, StatusLeave},
		{"pending beats attendance", DayContext{Date: day("2024-01-02"), Pending: pending, Attendance: present}, StatusLeavePending},
		{"attendance beats weekend", DayContext{Date: day("2024-01-06"), Attendance: present}, "Present"},
		{"weekend", DayContext{Date: day("2024-01-06")}, StatusWeekend},
		{"absent by default", DayContext{Date: day("2024-01-03")}, StatusAbsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(DefaultRules, tt.ctx))
		})
	}
}

func TestBuild(t *testing.T) {
	hours := 8.5
	checkIn := workday.MustClock("09:15:00")
	m := Month{
		EmployeeID: "emp-1",
		Year:       2024,
		Month:      time.January,
		Holidays: []holiday.Holiday{
			{Name: "New Year", Date: day("2024-01-01"), Type: holiday.TypeNational, IsActive: true},
		},
		Leaves: []leave.Application{
			{ID: "l1", Status: leave.StatusApproved, LeaveType: leave.TypeSick, StartDate: day("2024-01-01"), EndDate: day("2024-01-03"), TotalDays: 3},
			{ID: "l2", Status: leave.StatusPending, LeaveType: leave.TypeCasual, StartDate: day("2024-01-10"), EndDate: day("2024-01-10"), TotalDays: 1},
		},
		Attendances: []attendance.Attendance{
			{Date: day("2024-01-04"), Status: attendance.StatusPresent, CheckInTime: &checkIn, IsLate: true, LateMinutes: 15, WorkHours: &hours},
		},
		Balances: []leave.Balance{
			{EmployeeID: "emp-1", Year: 2024, LeaveType: leave.TypeSick, TotalAllocated: 12, Used: 3, Balance: 9},
		},
	}

	resp := Build(DefaultRules, m)
	require.Len(t, resp.Calendar, 31)

	assert.Equal(t, StatusHoliday, resp.Calendar[0].Status)
	require.NotNil(t, resp.Calendar[0].Holiday)
	require.NotNil(t, resp.Calendar[0].Leave, "leave detail is kept even when a holiday wins")
	assert.Equal(t, StatusLeave, resp.Calendar[1].Status)
	assert.Equal(t, "Present", resp.Calendar[3].Status)
	assert.Equal(t, "Thursday", resp.Calendar[3].DayOfWeek)
	require.NotNil(t, resp.Calendar[3].Attendance)
	assert.Equal(t, "09:15:00", *resp.Calendar[3].Attendance.CheckInTime)
	assert.Equal(t, StatusWeekend, resp.Calendar[5].Status)
	assert.Equal(t, StatusLeavePending, resp.Calendar[9].Status)

	s := resp.Statistics
	assert.Equal(t, 31, s.TotalDays)
	assert.Equal(t, 1, s.Holiday)
	assert.Equal(t, 3, s.Leave)
	assert.Equal(t, 1, s.Present)
	assert.Equal(t, 8, s.Weekend)
	assert.Equal(t, 31-1-3-1-8, s.Absent)
	assert.Equal(t, 1, s.LateCount)
	assert.Equal(t, 15, s.TotalLateMinutes)
	assert.InDelta(t, 8.5, s.TotalWorkHours, 0.001)
	assert.InDelta(t, 8.5, s.AverageWorkHours, 0.001)

	require.Len(t, resp.LeaveBalances, 1)
	assert.Equal(t, 9.0, resp.LeaveBalances[0].Balance)
}
