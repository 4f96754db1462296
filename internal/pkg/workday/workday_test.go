package workday

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDaysBetween(t *testing.T) {
	cases := []struct {
		start, end string
		want       int
	}{
		{"2024-01-01", "2024-01-07", 5}, // Mon..Sun
		{"2024-01-06", "2024-01-07", 0}, // Sat..Sun
		{"2024-01-05", "2024-01-08", 2}, // Fri..Mon
		{"2024-01-03", "2024-01-03", 1},
		{"2024-02-26", "2024-03-01", 5}, // leap year boundary
		{"2024-01-10", "2024-01-09", 0},
	}
	for _, c := range cases {
		got := BusinessDaysBetween(MustParseDate(c.start), MustParseDate(c.end))
		assert.Equal(t, c.want, got, "%s..%s", c.start, c.end)
	}
}

func TestParseClock(t *testing.T) {
	valid := map[string]Clock{
		"09:00":    9 * 3600,
		"09:15:00": 9*3600 + 15*60,
		"23:59:59": 23*3600 + 59*60 + 59,
		"00:00:00": 0,
		" 8:05 ":   8*3600 + 5*60,
	}
	for in, want := range valid {
		got, err := ParseClock(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, got, in)
		}
	}

	for _, in := range []string{"", "9", "24:00", "12:60", "12:00:60", "ab:cd", "-1:00", "12:00:00:00", "123:00"} {
		_, err := ParseClock(in)
		assert.Error(t, err, in)
	}
}

func TestLateAndEarlyMinutes(t *testing.T) {
	assert.Equal(t, 15, LateMinutes(MustClock("09:15:00"), DefaultExpectedCheckIn))
	assert.Equal(t, 0, LateMinutes(MustClock("08:50:00"), DefaultExpectedCheckIn))
	assert.Equal(t, 0, LateMinutes(MustClock("09:00:45"), DefaultExpectedCheckIn), "seconds are ignored")
	assert.Equal(t, 30, EarlyMinutes(MustClock("17:30:00"), DefaultExpectedCheckOut))
	assert.Equal(t, 0, EarlyMinutes(MustClock("18:10:00"), DefaultExpectedCheckOut))
}

func TestHoursBetween(t *testing.T) {
	assert.Equal(t, 8.5, HoursBetween(MustClock("09:00"), MustClock("17:30")))
}

func TestClockJSON(t *testing.T) {
	b, err := json.Marshal(MustClock("07:05:09"))
	require.NoError(t, err)
	assert.Equal(t, `"07:05:09"`, string(b))

	var c Clock
	require.NoError(t, json.Unmarshal([]byte(`"18:00"`), &c))
	assert.Equal(t, DefaultExpectedCheckOut, c)

	assert.Error(t, json.Unmarshal([]byte(`"25:00"`), &c))
}

func TestMonthHelpers(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))

	first, last := MonthRange(2024, time.April)
	assert.Equal(t, "2024-04-01", FormatDate(first))
	assert.Equal(t, "2024-04-30", FormatDate(last))
}

func TestOverlapsAndCovers(t *testing.T) {
	a1, a2 := MustParseDate("2024-03-04"), MustParseDate("2024-03-08")
	cases := []struct {
		start, end string
		want       bool
	}{
		{"2024-03-01", "2024-03-04", true},  // touches start
		{"2024-03-08", "2024-03-12", true},  // touches end
		{"2024-03-05", "2024-03-06", true},  // contained
		{"2024-03-01", "2024-03-31", true},  // contains
		{"2024-03-09", "2024-03-12", false}, // after
		{"2024-02-20", "2024-03-03", false}, // before
	}
	for _, c := range cases {
		got := Overlaps(a1, a2, MustParseDate(c.start), MustParseDate(c.end))
		assert.Equal(t, c.want, got, "%s..%s", c.start, c.end)
	}

	assert.True(t, Covers(a1, a2, time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)), "last day counts at any hour")
	assert.False(t, Covers(a1, a2, MustParseDate("2024-03-09")))
}
