package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-leave-ledger/internal/pkg/database"
)

const holidayColumns = `
	id, name, date, year, type, description, is_active, created_by, created_at, updated_at`

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepository{db: db}
}

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := row.Scan(
		&h.ID, &h.Name, &h.Date, &h.Year, &h.Type, &h.Description, &h.IsActive, &h.CreatedBy,
		&h.CreatedAt, &h.UpdatedAt,
	)
	return h, err
}

func (r *holidayRepository) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (name, date, year, type, description, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, h.Name, h.Date, h.Year, h.Type, h.Description, h.IsActive, h.CreatedBy).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
		return holiday.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return h, nil
}

func (r *holidayRepository) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	h, err := scanHoliday(q.QueryRow(ctx, "SELECT "+holidayColumns+" FROM holidays WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, fmt.Errorf("failed to get holiday: %w", err)
	}
	return h, nil
}

func (r *holidayRepository) Update(ctx context.Context, h holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE holidays SET
			name = $2, date = $3, year = $4, type = $5, description = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, h.ID, h.Name, h.Date, h.Year, h.Type, h.Description, h.IsActive, h.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return holiday.ErrHolidayExists
		}
		return fmt.Errorf("failed to update holiday: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

func (r *holidayRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM holidays WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}

func (r *holidayRepository) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	where := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		where += fmt.Sprintf(" AND year = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Type != nil {
		where += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.IsActive != nil {
		where += fmt.Sprintf(" AND is_active = $%d", argIdx)
		args = append(args, *filter.IsActive)
	}

	rows, err := q.Query(ctx, "SELECT "+holidayColumns+" FROM holidays WHERE "+where+" ORDER BY date ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	return collectHolidays(rows)
}

func (r *holidayRepository) ExistsOnDate(ctx context.Context, date time.Time, year int, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM holidays
			WHERE date = $1 AND year = $2 AND ($3 = '' OR id::text <> $3)
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, date, year, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check holiday date: %w", err)
	}
	return exists, nil
}

func (r *holidayRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + holidayColumns + `
		FROM holidays
		WHERE is_active = TRUE AND date BETWEEN $1 AND $2
		ORDER BY date ASC`

	rows, err := q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	return collectHolidays(rows)
}

func collectHolidays(rows pgx.Rows) ([]holiday.Holiday, error) {
	holidays := []holiday.Holiday{}
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
