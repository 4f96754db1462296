package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

// Type is the leave category an application draws from.
type Type string

const (
	TypeSick         Type = "Sick Leave"
	TypeCasual       Type = "Casual Leave"
	TypeEarned       Type = "Earned Leave"
	TypeCompensatory Type = "Compensatory Off"
	TypeMaternity    Type = "Maternity Leave"
	TypePaternity    Type = "Paternity Leave"
	TypeBereavement  Type = "Bereavement Leave"
	TypeUnpaid       Type = "Unpaid Leave"
	TypeOther        Type = "Other"
)

var Types = []string{
	string(TypeSick),
	string(TypeCasual),
	string(TypeEarned),
	string(TypeCompensatory),
	string(TypeMaternity),
	string(TypePaternity),
	string(TypeBereavement),
	string(TypeUnpaid),
	string(TypeOther),
}

func (t Type) Valid() bool {
	for _, v := range Types {
		if string(t) == v {
			return true
		}
	}
	return false
}

// Unlimited leave types are never flagged as extra leave.
func (t Type) Unlimited() bool {
	return t == TypeUnpaid
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

var Statuses = []string{
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusCancelled),
}

// Application is a leave request and its decision.
type Application struct {
	ID              string
	EmployeeID      string
	LeaveType       Type
	StartDate       time.Time
	EndDate         time.Time
	TotalDays       int
	Status          Status
	IsExtraLeave    bool
	Reason          *string
	AppliedBy       string
	ApprovedBy      *string
	ApprovedByRole  *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Year is the balance year the application is charged to.
func (a Application) Year() int {
	return a.StartDate.Year()
}

func (a Application) Covers(d time.Time) bool {
	return workday.Covers(a.StartDate, a.EndDate, d)
}

// Balance is the ledger row for one employee, year and leave type.
type Balance struct {
	ID             string
	EmployeeID     string
	Year           int
	LeaveType      Type
	TotalAllocated float64
	Used           float64
	Pending        float64
	Balance        float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Recompute derives Balance from the three stored counters.
func (b *Balance) Recompute() {
	b.Balance = b.TotalAllocated - b.Used - b.Pending
}

// Available is the figure extra leave is judged against. Pending is
// subtracted from the already-net balance, so outstanding requests weigh
// twice against a new one.
func (b Balance) Available() float64 {
	return b.Balance - b.Pending
}
