package calendar

import (
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type MonthlyCalendarRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

func (r *MonthlyCalendarRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Month != nil && (*r.Month < 1 || *r.Month > 12) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if r.Year != nil && (*r.Year < 1900 || *r.Year > 9999) {
		errs.Add("year", "year is out of range")
	}
	return errs.Err()
}

type AttendanceDetail struct {
	CheckInTime      *string  `json:"check_in_time"`
	CheckOutTime     *string  `json:"check_out_time"`
	WorkHours        *float64 `json:"work_hours"`
	IsLate           bool     `json:"is_late"`
	LateMinutes      int      `json:"late_minutes"`
	IsEarlyExit      bool     `json:"is_early_exit"`
	EarlyExitMinutes int      `json:"early_exit_minutes"`
}

type HolidayDetail struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type LeaveDetail struct {
	ID        string `json:"id"`
	LeaveType string `json:"leave_type"`
	Status    string `json:"status"`
	TotalDays int    `json:"total_days"`
}

type Day struct {
	Date       string            `json:"date"`
	Day        int               `json:"day"`
	DayOfWeek  string            `json:"day_of_week"`
	IsWeekend  bool              `json:"is_weekend"`
	Status     string            `json:"status"`
	Attendance *AttendanceDetail `json:"attendance"`
	Holiday    *HolidayDetail    `json:"holiday"`
	Leave      *LeaveDetail      `json:"leave"`
}

type Statistics struct {
	TotalDays             int     `json:"total_days"`
	Present               int     `json:"present"`
	Absent                int     `json:"absent"`
	Leave                 int     `json:"leave"`
	Holiday               int     `json:"holiday"`
	Weekend               int     `json:"weekend"`
	HalfDay               int     `json:"half_day"`
	LateCount             int     `json:"late_count"`
	EarlyExitCount        int     `json:"early_exit_count"`
	TotalWorkHours        float64 `json:"total_work_hours"`
	AverageWorkHours      float64 `json:"average_work_hours"`
	TotalLateMinutes      int     `json:"total_late_minutes"`
	TotalEarlyExitMinutes int     `json:"total_early_exit_minutes"`
}

type MonthlyCalendarResponse struct {
	EmployeeID    string                  `json:"employee_id"`
	Month         int                     `json:"month"`
	Year          int                     `json:"year"`
	Calendar      []Day                   `json:"calendar"`
	Statistics    Statistics              `json:"statistics"`
	LeaveBalances []leave.BalanceResponse `json:"leave_balances"`
}

// Build lays out every day of m and computes the month statistics.
func Build(rules []Rule, m Month) MonthlyCalendarResponse {
	first, last := workday.MonthRange(m.Year, m.Month)
	resp := MonthlyCalendarResponse{
		EmployeeID:    m.EmployeeID,
		Month:         int(m.Month),
		Year:          m.Year,
		Calendar:      make([]Day, 0, last.Day()),
		LeaveBalances: make([]leave.BalanceResponse, 0, len(m.Balances)),
	}

	worked := 0
	stats := &resp.Statistics
	for date := first; !date.After(last); date = date.AddDate(0, 0, 1) {
		ctx := m.DayContextFor(date)
		day := Day{
			Date:      workday.FormatDate(date),
			Day:       date.Day(),
			DayOfWeek: date.Weekday().String(),
			IsWeekend: workday.IsWeekend(date),
			Status:    Resolve(rules, ctx),
		}

		if a := ctx.Attendance; a != nil {
			detail := attendanceDetail(*a)
			day.Attendance = &detail
			if a.IsLate {
				stats.LateCount++
			}
			if a.IsEarlyExit {
				stats.EarlyExitCount++
			}
			stats.TotalLateMinutes += a.LateMinutes
			stats.TotalEarlyExitMinutes += a.EarlyExitMinutes
			if a.WorkHours != nil && *a.WorkHours > 0 {
				stats.TotalWorkHours += *a.WorkHours
				worked++
			}
		}
		if h := ctx.Holiday; h != nil {
			day.Holiday = &HolidayDetail{Name: h.Name, Type: string(h.Type)}
		}
		if l := leaveFor(ctx); l != nil {
			day.Leave = &LeaveDetail{
				ID:        l.ID,
				LeaveType: string(l.LeaveType),
				Status:    string(l.Status),
				TotalDays: l.TotalDays,
			}
		}

		stats.TotalDays++
		if day.IsWeekend {
			stats.Weekend++
		}
		switch day.Status {
		case string(attendance.StatusPresent):
			stats.Present++
		case StatusAbsent:
			stats.Absent++
		case StatusLeave, StatusLeavePending:
			stats.Leave++
		case StatusHoliday:
			stats.Holiday++
		case string(attendance.StatusHalfDay):
			stats.HalfDay++
		}

		resp.Calendar = append(resp.Calendar, day)
	}
	if worked > 0 {
		stats.AverageWorkHours = stats.TotalWorkHours / float64(worked)
	}

	for _, b := range m.Balances {
		resp.LeaveBalances = append(resp.LeaveBalances, leave.ToBalanceResponse(b))
	}
	return resp
}

func attendanceDetail(a attendance.Attendance) AttendanceDetail {
	r := attendance.ToResponse(a)
	return AttendanceDetail{
		CheckInTime:      r.CheckInTime,
		CheckOutTime:     r.CheckOutTime,
		WorkHours:        a.WorkHours,
		IsLate:           a.IsLate,
		LateMinutes:      a.LateMinutes,
		IsEarlyExit:      a.IsEarlyExit,
		EarlyExitMinutes: a.EarlyExitMinutes,
	}
}

func leaveFor(d DayContext) *leave.Application {
	if d.Approved != nil {
		return d.Approved
	}
	return d.Pending
}
