// Package workday holds the calendar and time-of-day arithmetic shared by
// attendance, leave and the monthly calendar.
//
// Dates are represented as time.Time values at midnight UTC. Times of day are
// represented as Clock, a count of seconds since midnight.
package workday

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf drops the time-of-day part of t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// BusinessDaysBetween counts the days in [start, end] that are not Saturday
// or Sunday. It returns 0 when end is before start.
func BusinessDaysBetween(start, end time.Time) int {
	start, end = DateOf(start), DateOf(end)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			count++
		}
	}
	return count
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the first and last date of the month.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	return first, last
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// Covers reports whether d falls within the inclusive range [start, end].
func Covers(start, end, d time.Time) bool {
	d = DateOf(d)
	return !d.Before(DateOf(start)) && !d.After(DateOf(end))
}

// Clock is a time of day in seconds since midnight.
type Clock int

const (
	secondsPerDay = 24 * 60 * 60

	DefaultExpectedCheckIn  Clock = 9 * 60 * 60
	DefaultExpectedCheckOut Clock = 18 * 60 * 60
)

// ParseClock accepts "HH:MM" or "HH:MM:SS" with hours in [0, 24).
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM or HH:MM:SS", s)
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		values[i] = v
	}

	return Clock(values[0]*3600 + values[1]*60 + values[2]), nil
}

// MustClock is ParseClock for constants and tests.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the time of day of t in its own location.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// Minutes returns whole minutes since midnight. Seconds are dropped, so
// 09:15:59 compares as 09:15.
func (c Clock) Minutes() int {
	return int(c) / 60
}

func (c Clock) String() string {
	s := int(c) % secondsPerDay
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Microseconds is the representation Postgres uses for TIME values.
func (c Clock) Microseconds() int64 {
	return int64(c) * 1_000_000
}

func ClockFromMicroseconds(us int64) Clock {
	return Clock(us / 1_000_000)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// LateMinutes is how many minutes actual is after expected, or 0.
func LateMinutes(actual, expected Clock) int {
	if d := actual.Minutes() - expected.Minutes(); d > 0 {
		return d
	}
	return 0
}

// EarlyMinutes is how many minutes actual is before expected, or 0.
func EarlyMinutes(actual, expected Clock) int {
	if d := expected.Minutes() - actual.Minutes(); d > 0 {
		return d
	}
	return 0
}

// HoursBetween is the same-day difference out - in, in hours.
func HoursBetween(in, out Clock) float64 {
	return float64(out-in) / 3600
}
