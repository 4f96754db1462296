package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type HolidayLister interface {
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error)
}

type CalendarServiceImpl struct {
	attendances attendance.AttendanceRepository
	leaves      leave.ApplicationRepository
	balances    leave.BalanceRepository
	holidays    HolidayLister
	rules       []calendar.Rule
	now         func() time.Time
}

func NewCalendarService(
	attendanceRepo attendance.AttendanceRepository,
	applicationRepo leave.ApplicationRepository,
	balanceRepo leave.BalanceRepository,
	holidays HolidayLister,
) calendar.CalendarService {
	return &CalendarServiceImpl{
		attendances: attendanceRepo,
		leaves:      applicationRepo,
		balances:    balanceRepo,
		holidays:    holidays,
		rules:       calendar.DefaultRules,
		now:         time.Now,
	}
}

// GetMonthlyCalendar implements calendar.CalendarService.
func (s *CalendarServiceImpl) GetMonthlyCalendar(ctx context.Context, req calendar.MonthlyCalendarRequest) (calendar.MonthlyCalendarResponse, error) {
	if err := req.Validate(); err != nil {
		return calendar.MonthlyCalendarResponse{}, err
	}
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return calendar.MonthlyCalendarResponse{}, err
	}

	requested := ""
	if req.EmployeeID != nil {
		requested = *req.EmployeeID
	}
	subject, err := user.ResolveSubject(actor, requested)
	if err != nil {
		return calendar.MonthlyCalendarResponse{}, err
	}

	now := s.now()
	m := calendar.Month{EmployeeID: subject, Year: now.Year(), Month: now.Month()}
	if req.Year != nil {
		m.Year = *req.Year
	}
	if req.Month != nil {
		m.Month = time.Month(*req.Month)
	}
	from, to := workday.MonthRange(m.Year, m.Month)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := s.attendances.ListBetween(gctx, subject, from, to)
		if err != nil {
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		m.Attendances = records
		return nil
	})
	g.Go(func() error {
		applications, err := s.leaves.ListActiveBetween(gctx, subject, from, to)
		if err != nil {
			return fmt.Errorf("failed to load leave applications: %w", err)
		}
		m.Leaves = applications
		return nil
	})
	g.Go(func() error {
		holidays, err := s.holidays.ListActiveBetween(gctx, from, to)
		if err != nil {
			return fmt.Errorf("failed to load holidays: %w", err)
		}
		m.Holidays = holidays
		return nil
	})
	g.Go(func() error {
		balances, err := s.balances.ListByEmployeeYear(gctx, subject, m.Year)
		if err != nil {
			return fmt.Errorf("failed to load leave balances: %w", err)
		}
		m.Balances = balances
		return nil
	})
	if err := g.Wait(); err != nil {
		return calendar.MonthlyCalendarResponse{}, err
	}

	return calendar.Build(s.rules, m), nil
}
