package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
)

// Column conversion helpers. Dates are stored as YYYY-MM-DD, clock times as
// HH:MM, timestamps as RFC3339 UTC and decimals as their canonical string
// form, so every comparison the schema needs works lexicographically.

func dateValue(d calendar.Date) string {
	return d.String()
}

func scanDate(value string) (calendar.Date, error) {
	return calendar.ParseDate(value)
}

func datePtrValue(d *calendar.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanDatePtr(value sql.NullString) (*calendar.Date, error) {
	if !value.Valid {
		return nil, nil
	}
	d, err := calendar.ParseDate(value.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func clockValue(c calendar.ClockTime) string {
	return c.String()
}

func scanClock(value string) (calendar.ClockTime, error) {
	return calendar.ParseClockTime(value)
}

func decimalValue(d decimal.Decimal) string {
	return d.String()
}

func scanDecimal(value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("sqlite: parse decimal %q: %w", value, err)
	}
	return d, nil
}

func decimalPtrValue(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanDecimalPtr(value sql.NullString) (*decimal.Decimal, error) {
	if !value.Valid {
		return nil, nil
	}
	d, err := scanDecimal(value.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func timeValue(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func scanTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func timePtrValue(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: timeValue(*t), Valid: true}
}

func scanTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := scanTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func stringPtrValue(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}
