package calendar

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

const (
	StatusHoliday      = "Holiday"
	StatusLeave        = "Leave"
	StatusLeavePending = "Leave (Pending)"
	StatusWeekend      = "Weekend"
	StatusAbsent       = "Absent"
)

// DayContext is everything known about one calendar date.
type DayContext struct {
	Date       time.Time
	Holiday    *holiday.Holiday
	Approved   *leave.Application
	Pending    *leave.Application
	Attendance *attendance.Attendance
}

// Rule yields a status when it applies to a day.
type Rule struct {
	Name  string
	Match func(d DayContext) (string, bool)
}

// DefaultRules is evaluated top-down; the first match wins.
var DefaultRules = []Rule{
	{Name: "holiday", Match: func(d DayContext) (string, bool) {
		return StatusHoliday, d.Holiday != nil
	}},
	{Name: "approved_leave", Match: func(d DayContext) (string, bool) {
		return StatusLeave, d.Approved != nil
	}},
	{Name: "pending_leave", Match: func(d DayContext) (string, bool) {
		return StatusLeavePending, d.Pending != nil
	}},
	{Name: "attendance", Match: func(d DayContext) (string, bool) {
		if d.Attendance == nil {
			return "", false
		}
		return string(d.Attendance.Status), true
	}},
	{Name: "weekend", Match: func(d DayContext) (string, bool) {
		return StatusWeekend, workday.IsWeekend(d.Date)
	}},
}

// Resolve returns the status of the first matching rule, or Absent.
func Resolve(rules []Rule, d DayContext) string {
	for _, r := range rules {
		if status, ok := r.Match(d); ok {
			return status
		}
	}
	return StatusAbsent
}

// Month holds the raw data a calendar is built from.
type Month struct {
	EmployeeID  string
	Year        int
	Month       time.Month
	Attendances []attendance.Attendance
	Leaves      []leave.Application
	Holidays    []holiday.Holiday
	Balances    []leave.Balance
}

// DayContextFor indexes m for date. Approved leave is preferred over pending
// when both cover the date.
func (m Month) DayContextFor(date time.Time) DayContext {
	d := DayContext{Date: date}
	for i := range m.Holidays {
		if m.Holidays[i].Date.Equal(date) {
			d.Holiday = &m.Holidays[i]
			break
		}
	}
	for i := range m.Leaves {
		l := &m.Leaves[i]
		if !l.Covers(date) {
			continue
		}
		switch l.Status {
		case leave.StatusApproved:
			if d.Approved == nil {
				d.Approved = l
			}
		case leave.StatusPending:
			if d.Pending == nil {
				d.Pending = l
			}
		}
	}
	for i := range m.Attendances {
		if m.Attendances[i].Date.Equal(date) {
			d.Attendance = &m.Attendances[i]
			break
		}
	}
	return d
}
