package postgresql

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/workday"
)

// TIME columns travel as pgtype.Time; the domain uses workday.Clock.

func timeParam(c *workday.Clock) pgtype.Time {
	if c == nil {
		return pgtype.Time{}
	}
	return pgtype.Time{Microseconds: c.Microseconds(), Valid: true}
}

func clockParam(c workday.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: c.Microseconds(), Valid: true}
}

func clockPtr(t pgtype.Time) *workday.Clock {
	if !t.Valid {
		return nil
	}
	c := workday.ClockFromMicroseconds(t.Microseconds)
	return &c
}

func offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
