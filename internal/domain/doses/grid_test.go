package doses

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonthGrid_WholeWeeks(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		g, err := NewMonthGrid(2024, m)
		require.NoError(t, err)

		assert.Equal(t, time.Monday, g.Start.Weekday(), m.String())
		assert.Equal(t, time.Sunday, g.End.Weekday(), m.String())
		assert.False(t, g.Start.After(g.First))
		assert.False(t, g.End.Before(g.Last))
		assert.True(t, len(g.Weeks) >= 4 && len(g.Weeks) <= 6, m.String())
		for _, w := range g.Weeks {
			assert.Len(t, w, 7)
		}
	}
}

func TestNewMonthGrid_January2024(t *testing.T) {
	// 2024-01-01 cae lunes: sin días del mes anterior
	g, err := NewMonthGrid(2024, time.January)
	require.NoError(t, err)

	assert.Equal(t, day("2024-01-01"), g.Start)
	assert.Equal(t, day("2024-02-04"), g.End)
	assert.Len(t, g.Weeks, 5)
	assert.True(t, g.InMonth(day("2024-01-31")))
	assert.False(t, g.InMonth(day("2024-02-01")))
}

func TestNewMonthGrid_LeadingDays(t *testing.T) {
	// 2024-09-01 es domingo
	g, err := NewMonthGrid(2024, time.September)
	require.NoError(t, err)

	assert.Equal(t, day("2024-08-26"), g.Start)
	assert.False(t, g.InMonth(g.Weeks[0][0]))
	assert.True(t, g.InMonth(g.Weeks[0][6]))
	assert.Len(t, g.Weeks, 6)
}

func TestNewMonthGrid_PrevNext(t *testing.T) {
	tests := []struct {
		year       int
		month      time.Month
		prev, next MonthRef
	}{
		{2024, time.January, MonthRef{2023, 12}, MonthRef{2024, 2}},
		{2024, time.December, MonthRef{2024, 11}, MonthRef{2025, 1}},
		{2024, time.February, MonthRef{2024, 1}, MonthRef{2024, 3}},
		{2023, time.March, MonthRef{2023, 2}, MonthRef{2023, 4}},
	}

	for _, tt := range tests {
		g, err := NewMonthGrid(tt.year, tt.month)
		require.NoError(t, err)
		assert.Equal(t, tt.prev, g.Prev, "%d-%02d", tt.year, tt.month)
		assert.Equal(t, tt.next, g.Next, "%d-%02d", tt.year, tt.month)
	}
}

func TestNewMonthGrid_Invalid(t *testing.T) {
	_, err := NewMonthGrid(2024, 13)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewMonthGrid(2024, 0)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewMonthGrid(0, time.May)
	assert.ErrorIs(t, err, ErrInvalidRange)
}
