package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	t.Run("Valid date", func(t *testing.T) {
		date, err := ParseDate("2024-01-15")
		assert.NoError(t, err)
		assert.Equal(t, Date{Year: 2024, Month: 1, Day: 15}, date)
		assert.Equal(t, "2024-01-15", date.String())
	})

	t.Run("Invalid format", func(t *testing.T) {
		_, err := ParseDate("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid date format")
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := ParseDate("2024-13-01")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "month must be between 1 and 12")
	})

	t.Run("Day past end of month", func(t *testing.T) {
		_, err := ParseDate("2023-02-29")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "day must be between 1 and 28")
	})
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year     int
		month    int
		expected int
	}{
		{2024, 1, 31},
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 4, 30},
		{2024, 11, 30},
		{2000, 2, 29},
		{1900, 2, 28},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysInMonth(tt.year, tt.month))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	t.Run("Same day", func(t *testing.T) {
		d := Date{Year: 2026, Month: 3, Day: 2}
		assert.Equal(t, int64(0), DaysBetween(d, d))
	})

	t.Run("Cross month boundary", func(t *testing.T) {
		assert.Equal(t, int64(11), DaysBetween(Date{2024, 1, 25}, Date{2024, 2, 5}))
	})

	t.Run("Backwards", func(t *testing.T) {
		assert.Equal(t, int64(-3), DaysBetween(Date{2024, 3, 4}, Date{2024, 3, 1}))
	})
}

func TestDateOf(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 23:30 UTC is already the next day in Berlin.
	ts := time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Date{2026, 3, 2}, DateOf(ts, time.UTC))
	assert.Equal(t, Date{2026, 3, 3}, DateOf(ts, berlin))
	assert.Equal(t, Date{2026, 3, 2}, DateOf(ts, nil))
}
