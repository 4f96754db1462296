package holiday

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

type HolidayServiceImpl struct {
	tx database.Transactor
	holiday.HolidayRepository
	audit audit.Recorder
	now   func() time.Time
}

func NewHolidayService(tx database.Transactor, holidayRepo holiday.HolidayRepository, recorder audit.Recorder) holiday.HolidayService {
	return &HolidayServiceImpl{
		tx:                tx,
		HolidayRepository: holidayRepo,
		audit:             recorder,
		now:               time.Now,
	}
}

// IsHoliday implements holiday.HolidayService.
func (s *HolidayServiceImpl) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	date = workday.DateOf(date)
	holidays, err := s.HolidayRepository.ListActiveBetween(ctx, date, date)
	if err != nil {
		return false, fmt.Errorf("failed to look up holiday: %w", err)
	}
	return len(holidays) > 0, nil
}

// ListActiveBetween implements holiday.HolidayService.
func (s *HolidayServiceImpl) ListActiveBetween(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	return s.HolidayRepository.ListActiveBetween(ctx, workday.DateOf(from), workday.DateOf(to))
}

// List implements holiday.HolidayService.
func (s *HolidayServiceImpl) List(ctx context.Context, filter holiday.HolidayFilter) (holiday.ListHolidayResponse, error) {
	holidays, err := s.HolidayRepository.List(ctx, filter)
	if err != nil {
		return holiday.ListHolidayResponse{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	resp := holiday.ListHolidayResponse{
		Holidays: make([]holiday.HolidayResponse, 0, len(holidays)),
		Total:    len(holidays),
	}
	for _, h := range holidays {
		resp.Holidays = append(resp.Holidays, holiday.ToResponse(h))
	}
	return resp, nil
}

// GetByID implements holiday.HolidayService.
func (s *HolidayServiceImpl) GetByID(ctx context.Context, id string) (holiday.HolidayResponse, error) {
	h, err := s.HolidayRepository.GetByID(ctx, id)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}
	return holiday.ToResponse(h), nil
}

// Create implements holiday.HolidayService.
func (s *HolidayServiceImpl) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	actor, err := requirePrivileged(ctx)
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	date, _ := workday.ParseDate(req.Date)
	h := holiday.Holiday{
		Name:        req.Name,
		Date:        date,
		Year:        date.Year(),
		Type:        holiday.TypeNational,
		Description: req.Description,
		IsActive:    true,
		CreatedBy:   &actor.EmployeeID,
	}
	if req.Year != nil {
		h.Year = *req.Year
	}
	if req.Type != "" {
		h.Type = holiday.Type(req.Type)
	}

	var created holiday.Holiday
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.HolidayRepository.ExistsOnDate(ctx, h.Date, h.Year, "")
		if err != nil {
			return fmt.Errorf("failed to check holiday date: %w", err)
		}
		if exists {
			return holiday.ErrHolidayExists
		}
		created, err = s.HolidayRepository.Create(ctx, h)
		return err
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	resp := holiday.ToResponse(created)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionCreateHoliday,
		EntityType: audit.EntityHoliday,
		EntityID:   created.ID,
		Created:    resp,
	})
	return resp, nil
}

// Update implements holiday.HolidayService.
func (s *HolidayServiceImpl) Update(ctx context.Context, req holiday.UpdateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}
	if _, err := requirePrivileged(ctx); err != nil {
		return holiday.HolidayResponse{}, err
	}

	var before, after holiday.Holiday
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		before, err = s.HolidayRepository.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		after = before
		if req.Name != nil {
			after.Name = *req.Name
		}
		if req.Date != nil {
			date, _ := workday.ParseDate(*req.Date)
			after.Date = date
			if req.Year == nil {
				after.Year = date.Year()
			}
		}
		if req.Year != nil {
			after.Year = *req.Year
		}
		if req.Type != nil {
			after.Type = holiday.Type(*req.Type)
		}
		if req.Description != nil {
			after.Description = req.Description
		}
		if req.IsActive != nil {
			after.IsActive = *req.IsActive
		}
		after.UpdatedAt = s.now().UTC()

		if !after.Date.Equal(before.Date) || after.Year != before.Year {
			exists, err := s.HolidayRepository.ExistsOnDate(ctx, after.Date, after.Year, after.ID)
			if err != nil {
				return fmt.Errorf("failed to check holiday date: %w", err)
			}
			if exists {
				return holiday.ErrHolidayExists
			}
		}
		return s.HolidayRepository.Update(ctx, after)
	})
	if err != nil {
		return holiday.HolidayResponse{}, err
	}

	resp := holiday.ToResponse(after)
	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionUpdateHoliday,
		EntityType: audit.EntityHoliday,
		EntityID:   after.ID,
		Before:     holiday.ToResponse(before),
		After:      resp,
	})
	return resp, nil
}

// Delete implements holiday.HolidayService.
func (s *HolidayServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := requirePrivileged(ctx); err != nil {
		return err
	}

	var deleted holiday.Holiday
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		if deleted, err = s.HolidayRepository.GetByID(ctx, id); err != nil {
			return err
		}
		return s.HolidayRepository.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Event{
		Action:     audit.ActionDeleteHoliday,
		EntityType: audit.EntityHoliday,
		EntityID:   id,
		Deleted:    holiday.ToResponse(deleted),
	})
	return nil
}

func requirePrivileged(ctx context.Context) (user.Actor, error) {
	actor, err := user.RequireActor(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.IsPrivileged() {
		return user.Actor{}, user.ErrPrivilegedRoleRequired
	}
	return actor, nil
}
