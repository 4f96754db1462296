package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusHalfDay Status = "Half Day"
	StatusLeave   Status = "Leave"
	StatusHoliday Status = "Holiday"
)

var Statuses = []string{
	string(StatusPresent),
	string(StatusAbsent),
	string(StatusHalfDay),
	string(StatusLeave),
	string(StatusHoliday),
}

// Attendance is the record of one employee on one calendar date.
type Attendance struct {
	ID               string
	EmployeeID       string
	Date             time.Time
	CheckInTime      *workday.Clock
	CheckOutTime     *workday.Clock
	CheckInLocation  *string
	CheckOutLocation *string
	ExpectedCheckIn  workday.Clock
	ExpectedCheckOut workday.Clock
	IsLate           bool
	LateMinutes      int
	IsEarlyExit      bool
	EarlyExitMinutes int
	WorkHours        *float64
	Status           Status
	Remarks          *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ApplyCheckIn sets the check-in time and the lateness derived from it.
func (a *Attendance) ApplyCheckIn(at workday.Clock) {
	a.CheckInTime = &at
	a.LateMinutes = workday.LateMinutes(at, a.ExpectedCheckIn)
	a.IsLate = a.LateMinutes > 0
}

// ApplyCheckOut sets the check-out time, the early exit derived from it and,
// when a check-in exists, the work hours.
func (a *Attendance) ApplyCheckOut(at workday.Clock) {
	a.CheckOutTime = &at
	a.EarlyExitMinutes = workday.EarlyMinutes(at, a.ExpectedCheckOut)
	a.IsEarlyExit = a.EarlyExitMinutes > 0
	a.recomputeWorkHours()
}

// Recompute derives lateness, early exit and work hours from the stored times
// and expectations.
func (a *Attendance) Recompute() {
	if a.CheckInTime != nil {
		a.ApplyCheckIn(*a.CheckInTime)
	}
	if a.CheckOutTime != nil {
		a.ApplyCheckOut(*a.CheckOutTime)
	}
}

// ChecksOutBeforeCheckIn reports whether both times are set and out < in.
func (a Attendance) ChecksOutBeforeCheckIn() bool {
	return a.CheckInTime != nil && a.CheckOutTime != nil && *a.CheckOutTime < *a.CheckInTime
}

func (a *Attendance) recomputeWorkHours() {
	if a.CheckInTime == nil || a.CheckOutTime == nil {
		return
	}
	hours := workday.HoursBetween(*a.CheckInTime, *a.CheckOutTime)
	a.WorkHours = &hours
}
