// Package memory is an in-process implementation of the repositories, used by
// STORAGE=memory and by service and handler tests.
//
// A Store serializes transactions behind one mutex and restores its previous
// contents when the transaction function fails.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
)

type txKey struct{}

type Store struct {
	mu sync.Mutex

	attendances map[string]attendance.Attendance
	leaves      map[string]leave.Application
	balances    map[string]leave.Balance
	holidays    map[string]holiday.Holiday
	audits      []audit.Entry

	// Now stamps created_at on inserted rows.
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		attendances: make(map[string]attendance.Attendance),
		leaves:      make(map[string]leave.Application),
		balances:    make(map[string]leave.Balance),
		holidays:    make(map[string]holiday.Holiday),
		Now:         time.Now,
	}
}

type snapshot struct {
	attendances map[string]attendance.Attendance
	leaves      map[string]leave.Application
	balances    map[string]leave.Balance
	holidays    map[string]holiday.Holiday
	audits      []audit.Entry
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		attendances: maps.Clone(s.attendances),
		leaves:      maps.Clone(s.leaves),
		balances:    maps.Clone(s.balances),
		holidays:    maps.Clone(s.holidays),
		audits:      append([]audit.Entry(nil), s.audits...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.attendances = snap.attendances
	s.leaves = snap.leaves
	s.balances = snap.balances
	s.holidays = snap.holidays
	s.audits = snap.audits
}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// lock takes the store mutex unless ctx already runs inside a transaction,
// which holds it. The returned func releases it.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) now() time.Time {
	return s.Now().UTC()
}

func newID() string {
	return uuid.NewString()
}

// Transactor returns s as a database.Transactor.
func (s *Store) Transactor() database.Transactor { return s }

func (s *Store) Attendances() attendance.AttendanceRepository { return &attendanceRepository{s: s} }
func (s *Store) Leaves() leave.ApplicationRepository          { return &leaveApplicationRepository{s: s} }
func (s *Store) Balances() leave.BalanceRepository            { return &leaveBalanceRepository{s: s} }
func (s *Store) Holidays() holiday.HolidayRepository          { return &holidayRepository{s: s} }
func (s *Store) AuditLogs() audit.Repository                  { return &auditLogRepository{s: s} }

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}
