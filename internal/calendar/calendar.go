// Package calendar provides the date and clock-time arithmetic shared by the
// planning, workload and alert packages. All computations are pure; callers
// supply the holiday calendar when business-day rules apply.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRange indicates a date range whose end precedes its start.
var ErrInvalidRange = errors.New("calendar: range end precedes start")

// ErrInvalidTimeRange indicates a same-day time pair whose end does not
// follow its start.
var ErrInvalidTimeRange = errors.New("calendar: end time must follow start time")

// Date identifies a calendar day independent of wall-clock time and zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate constructs a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates an instant to the calendar day it falls on in the
// instant's own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: parse date %q: %w", value, err)
	}
	return DateOf(t), nil
}

// Time returns the date at midnight UTC, suitable for arithmetic.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Weekday returns the day of week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays returns the date shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d follows other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time().Format("2006-01-02")
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange validates and constructs an inclusive range.
func NewDateRange(start, end Date) (DateRange, error) {
	if end.Before(start) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{Start: start, End: end}, nil
}

// SingleDay returns the range covering exactly one day.
func SingleDay(d Date) DateRange {
	return DateRange{Start: d, End: d}
}

// Contains reports whether the range covers d.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days enumerates every day in the range in ascending order.
func (r DateRange) Days() []Date {
	if r.End.Before(r.Start) {
		return nil
	}
	days := make([]Date, 0, 8)
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Intersects reports whether two inclusive ranges share at least one day.
func (r DateRange) Intersects(other DateRange) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// HolidayCalendar reports organization-specific non-working days. The zero
// calendar (nil) treats every weekday as a working day.
type HolidayCalendar interface {
	IsHoliday(d Date) bool
}

// HolidaySet is a fixed HolidayCalendar backed by an explicit day set.
type HolidaySet map[Date]struct{}

// IsHoliday implements HolidayCalendar.
func (s HolidaySet) IsHoliday(d Date) bool {
	_, ok := s[d]
	return ok
}

// IsBusinessDay reports whether d is a working day: not a Saturday, not a
// Sunday and not listed in the holiday calendar.
func IsBusinessDay(d Date, holidays HolidayCalendar) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if holidays != nil && holidays.IsHoliday(d) {
		return false
	}
	return true
}

// BusinessDaysBetween counts working days in the inclusive range [start, end].
func BusinessDaysBetween(start, end Date, holidays HolidayCalendar) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if IsBusinessDay(d, holidays) {
			count++
		}
	}
	return count, nil
}

// WeekOf buckets a date by ISO-8601 week numbering. The ISO year can differ
// from the calendar year near year boundaries.
func WeekOf(d Date) (isoYear, isoWeek int) {
	return d.Time().ISOWeek()
}

// MonthOf buckets a date by calendar month.
func MonthOf(d Date) (year int, month time.Month) {
	return d.Year, d.Month
}

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses an HH:MM value.
func ParseClockTime(value string) (ClockTime, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return ClockTime{}, fmt.Errorf("calendar: parse clock time %q: %w", value, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Minutes returns the offset from midnight in minutes.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

const minutesPerDay = 24 * 60

var sixty = decimal.NewFromInt(60)

// DurationHours computes the elapsed hours between two clock times. When
// crossesMidnight is set the end time is interpreted as belonging to the
// following day; otherwise end must strictly follow start.
func DurationHours(start, end ClockTime, crossesMidnight bool) (decimal.Decimal, error) {
	startMin := start.Minutes()
	endMin := end.Minutes()
	if crossesMidnight {
		endMin += minutesPerDay
	} else if endMin <= startMin {
		return decimal.Decimal{}, ErrInvalidTimeRange
	}
	return decimal.NewFromInt(int64(endMin - startMin)).Div(sixty), nil
}
