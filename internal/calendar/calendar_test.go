package calendar

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDaysBetween(t *testing.T) {
	tests := map[string]struct {
		start    Date
		end      Date
		holidays HolidaySet
		want     int
		wantErr  error
	}{
		"full week counts five days": {
			start: NewDate(2024, time.March, 4),
			end:   NewDate(2024, time.March, 10),
			want:  5,
		},
		"weekend only counts zero": {
			start: NewDate(2024, time.March, 9),
			end:   NewDate(2024, time.March, 10),
			want:  0,
		},
		"single business day is inclusive": {
			start: NewDate(2024, time.March, 4),
			end:   NewDate(2024, time.March, 4),
			want:  1,
		},
		"holiday removed from count": {
			start:    NewDate(2024, time.March, 4),
			end:      NewDate(2024, time.March, 8),
			holidays: HolidaySet{NewDate(2024, time.March, 6): {}},
			want:     4,
		},
		"reversed range fails": {
			start:   NewDate(2024, time.March, 10),
			end:     NewDate(2024, time.March, 4),
			wantErr: ErrInvalidRange,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := BusinessDaysBetween(tc.start, tc.end, tc.holidays)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDurationHours(t *testing.T) {
	tests := map[string]struct {
		start           ClockTime
		end             ClockTime
		crossesMidnight bool
		want            string
		wantErr         error
	}{
		"standard shift": {
			start: ClockTime{Hour: 9},
			end:   ClockTime{Hour: 17, Minute: 30},
			want:  "8.5",
		},
		"night shift crossing midnight": {
			start:           ClockTime{Hour: 22},
			end:             ClockTime{Hour: 6},
			crossesMidnight: true,
			want:            "8",
		},
		"full day via midnight flag": {
			start:           ClockTime{Hour: 0},
			end:             ClockTime{Hour: 0},
			crossesMidnight: true,
			want:            "24",
		},
		"end before start fails": {
			start:   ClockTime{Hour: 13},
			end:     ClockTime{Hour: 9},
			wantErr: ErrInvalidTimeRange,
		},
		"zero length fails": {
			start:   ClockTime{Hour: 9},
			end:     ClockTime{Hour: 9},
			wantErr: ErrInvalidTimeRange,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DurationHours(tc.start, tc.end, tc.crossesMidnight)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(mustDecimal(t, tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestWeekOfUsesISONumbering(t *testing.T) {
	// 2024-12-30 is a Monday belonging to ISO week 1 of 2025.
	year, week := WeekOf(NewDate(2024, time.December, 30))
	assert.Equal(t, 2025, year)
	assert.Equal(t, 1, week)

	// 2021-01-01 is a Friday belonging to ISO week 53 of 2020.
	year, week = WeekOf(NewDate(2021, time.January, 1))
	assert.Equal(t, 2020, year)
	assert.Equal(t, 53, week)
}

func TestDateRange(t *testing.T) {
	r, err := NewDateRange(NewDate(2024, time.March, 4), NewDate(2024, time.March, 6))
	require.NoError(t, err)

	assert.Len(t, r.Days(), 3)
	assert.True(t, r.Contains(NewDate(2024, time.March, 5)))
	assert.False(t, r.Contains(NewDate(2024, time.March, 7)))

	_, err = NewDateRange(NewDate(2024, time.March, 6), NewDate(2024, time.March, 4))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestDateRangeIntersects(t *testing.T) {
	base := DateRange{Start: NewDate(2024, time.March, 4), End: NewDate(2024, time.March, 8)}

	assert.True(t, base.Intersects(DateRange{Start: NewDate(2024, time.March, 8), End: NewDate(2024, time.March, 12)}))
	assert.True(t, base.Intersects(SingleDay(NewDate(2024, time.March, 6))))
	assert.False(t, base.Intersects(DateRange{Start: NewDate(2024, time.March, 9), End: NewDate(2024, time.March, 12)}))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 4), d)

	_, err = ParseDate("04/03/2024")
	require.Error(t, err)
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}
