package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/indexlog/internal/errors"
)

// Wednesday, 2024-03-06 14:30 UTC
var refNow = time.Date(2024, 3, 6, 14, 30, 15, 0, time.UTC)

func TestParseTimestamp(t *testing.T) {
	t.Run("empty_string_returns_now", func(t *testing.T) {
		result := ParseTimestamp("", refNow)
		assert.Nil(t, result.Error)
		assert.Equal(t, refNow, result.Time)
	})

	t.Run("NOW_case_insensitive", func(t *testing.T) {
		result := ParseTimestamp("  NOW ", refNow)
		assert.Nil(t, result.Error)
		assert.Equal(t, refNow, result.Time)
	})

	t.Run("rfc3339", func(t *testing.T) {
		result := ParseTimestamp("2024-03-05T09:07:00Z", refNow)
		require.Nil(t, result.Error)
		assert.Equal(t, time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC), result.Time)
	})

	t.Run("iso_date", func(t *testing.T) {
		result := ParseTimestamp("2024-03-01", refNow)
		require.Nil(t, result.Error)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), result.Time)
	})

	t.Run("date_and_minutes", func(t *testing.T) {
		result := ParseTimestamp("2024-03-01 08:15", refNow)
		require.Nil(t, result.Error)
		assert.Equal(t, time.Date(2024, 3, 1, 8, 15, 0, 0, time.UTC), result.Time)
	})

	t.Run("relative", func(t *testing.T) {
		result := ParseTimestamp("2 hours ago", refNow)
		require.Nil(t, result.Error)
		assert.WithinDuration(t, refNow.Add(-2*time.Hour), result.Time, time.Minute)
	})

	t.Run("garbage", func(t *testing.T) {
		result := ParseTimestamp("not a time at all xyz", refNow)
		require.Error(t, result.Error)
		assert.ErrorIs(t, result.Error, errors.ErrInvalidTimestamp)
	})
}

func TestParseTimestampPeriods(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"this hour", time.Date(2024, 3, 6, 14, 0, 0, 0, time.UTC)},
		{"last hour", time.Date(2024, 3, 6, 13, 0, 0, 0, time.UTC)},
		{"this day", time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)},
		{"previous day", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"this week", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"last week", time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)},
		{"current month", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"last month", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"this quarter", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"last quarter", time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"This Year", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"last year", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseTimestamp(tt.input, refNow)
			require.Nil(t, result.Error)
			assert.Equal(t, tt.want, result.Time)
		})
	}
}

func TestPeriodStartSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), periodStart("this", "week", sunday))
}

func TestPeriodRange(t *testing.T) {
	t.Run("today", func(t *testing.T) {
		r, ok := PeriodRange("today", refNow)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), r.End)
	})

	t.Run("yesterday", func(t *testing.T) {
		r, ok := PeriodRange("Yesterday", refNow)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), r.End)
	})

	t.Run("this_week", func(t *testing.T) {
		r, ok := PeriodRange("this week", refNow)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), r.End)
	})

	t.Run("last_month", func(t *testing.T) {
		r, ok := PeriodRange("last month", refNow)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), r.Start)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), r.End)
	})

	t.Run("not_a_period", func(t *testing.T) {
		_, ok := PeriodRange("2024-03-01", refNow)
		assert.False(t, ok)
	})
}

func TestParseWindow(t *testing.T) {
	t.Run("both_empty", func(t *testing.T) {
		from, to, err := ParseWindow("", "", refNow)
		require.NoError(t, err)
		assert.True(t, from.IsZero())
		assert.True(t, to.IsZero())
	})

	t.Run("period_bounds_are_inclusive", func(t *testing.T) {
		from, to, err := ParseWindow("yesterday", "yesterday", refNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), to)
	})

	t.Run("absolute", func(t *testing.T) {
		from, to, err := ParseWindow("2024-03-01", "2024-03-05T12:00:00Z", refNow)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), to)
	})

	t.Run("until_before_since", func(t *testing.T) {
		_, _, err := ParseWindow("2024-03-05", "2024-03-01", refNow)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidTimestamp)
	})

	t.Run("bad_since_names_the_flag", func(t *testing.T) {
		_, _, err := ParseWindow("not a time at all xyz", "", refNow)
		require.Error(t, err)
		var tpe *TimeParseError
		require.ErrorAs(t, err, &tpe)
		assert.Equal(t, "since", tpe.Field)
	})
}
