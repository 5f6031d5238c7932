// Package workload converts raw planned/actual hour records into
// utilization and efficiency metrics per employee and period. Like the
// planning package it is a pure function library over value snapshots.
package workload

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
)

// Record is one employee-day of planned and optionally actual hours.
type Record struct {
	EmployeeID string
	Date       calendar.Date
	Planned    decimal.Decimal
	Actual     *decimal.Decimal
}

// Summary is the per-day aggregation output. Utilization is nil when no
// hours were planned for the day; efficiency is always bounded to [0,100].
type Summary struct {
	EmployeeID  string
	Date        calendar.Date
	Planned     decimal.Decimal
	Actual      decimal.Decimal
	Utilization *decimal.Decimal
	Efficiency  decimal.Decimal
}

// WeeklySummary aggregates an employee's records over one ISO week.
type WeeklySummary struct {
	EmployeeID  string
	ISOYear     int
	ISOWeek     int
	Days        int
	Planned     decimal.Decimal
	Actual      decimal.Decimal
	Utilization *decimal.Decimal
	Efficiency  decimal.Decimal
}

// MonthlySummary aggregates an employee's records over one calendar month.
type MonthlySummary struct {
	EmployeeID  string
	Year        int
	Month       time.Month
	Days        int
	Planned     decimal.Decimal
	Actual      decimal.Decimal
	Utilization *decimal.Decimal
	Efficiency  decimal.Decimal
}

var (
	zero       = decimal.Decimal{}
	oneHundred = decimal.NewFromInt(100)
	ten        = decimal.NewFromInt(10)
)

// Aggregate produces one Summary per calendar day that has at least one
// record inside the range, in ascending date order. Days without data are
// not synthesized. Multiple records for the same day are summed first.
func Aggregate(records []Record, dailyCapacity decimal.Decimal, r calendar.DateRange) ([]Summary, error) {
	if _, err := calendar.NewDateRange(r.Start, r.End); err != nil {
		return nil, err
	}

	type bucket struct {
		planned decimal.Decimal
		actual  decimal.Decimal
	}
	byDay := make(map[calendar.Date]*bucket)
	var employeeID string
	for _, record := range records {
		if !r.Contains(record.Date) {
			continue
		}
		if employeeID == "" {
			employeeID = record.EmployeeID
		}
		b, ok := byDay[record.Date]
		if !ok {
			b = &bucket{}
			byDay[record.Date] = b
		}
		b.planned = b.planned.Add(record.Planned)
		if record.Actual != nil {
			b.actual = b.actual.Add(*record.Actual)
		}
	}

	summaries := make([]Summary, 0, len(byDay))
	for d, b := range byDay {
		utilization := utilizationPercent(b.actual, b.planned)
		summaries = append(summaries, Summary{
			EmployeeID:  employeeID,
			Date:        d,
			Planned:     b.planned,
			Actual:      b.actual,
			Utilization: utilization,
			Efficiency:  efficiencyScore(utilization, b.actual, dailyCapacity),
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Date.Before(summaries[j].Date)
	})
	return summaries, nil
}

// RollupWeekly sums daily summaries into ISO-week buckets and recomputes
// utilization and efficiency on the sums. Averaging the daily percentages
// would distort weeks with uneven planned hours, so the rollup never does.
func RollupWeekly(daily []Summary, dailyCapacity decimal.Decimal) []WeeklySummary {
	type key struct {
		year int
		week int
	}
	byWeek := make(map[key]*WeeklySummary)
	order := make([]key, 0)
	for _, day := range daily {
		year, week := calendar.WeekOf(day.Date)
		k := key{year: year, week: week}
		summary, ok := byWeek[k]
		if !ok {
			summary = &WeeklySummary{EmployeeID: day.EmployeeID, ISOYear: year, ISOWeek: week}
			byWeek[k] = summary
			order = append(order, k)
		}
		summary.Days++
		summary.Planned = summary.Planned.Add(day.Planned)
		summary.Actual = summary.Actual.Add(day.Actual)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].week < order[j].week
	})

	result := make([]WeeklySummary, 0, len(order))
	for _, k := range order {
		summary := byWeek[k]
		summary.Utilization = utilizationPercent(summary.Actual, summary.Planned)
		capacity := dailyCapacity.Mul(decimal.NewFromInt(int64(summary.Days)))
		summary.Efficiency = efficiencyScore(summary.Utilization, summary.Actual, capacity)
		result = append(result, *summary)
	}
	return result
}

// RollupMonthly sums daily summaries into calendar-month buckets.
func RollupMonthly(daily []Summary, dailyCapacity decimal.Decimal) []MonthlySummary {
	type key struct {
		year  int
		month time.Month
	}
	byMonth := make(map[key]*MonthlySummary)
	order := make([]key, 0)
	for _, day := range daily {
		year, month := calendar.MonthOf(day.Date)
		k := key{year: year, month: month}
		summary, ok := byMonth[k]
		if !ok {
			summary = &MonthlySummary{EmployeeID: day.EmployeeID, Year: year, Month: month}
			byMonth[k] = summary
			order = append(order, k)
		}
		summary.Days++
		summary.Planned = summary.Planned.Add(day.Planned)
		summary.Actual = summary.Actual.Add(day.Actual)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].month < order[j].month
	})

	result := make([]MonthlySummary, 0, len(order))
	for _, k := range order {
		summary := byMonth[k]
		summary.Utilization = utilizationPercent(summary.Actual, summary.Planned)
		capacity := dailyCapacity.Mul(decimal.NewFromInt(int64(summary.Days)))
		summary.Efficiency = efficiencyScore(summary.Utilization, summary.Actual, capacity)
		result = append(result, *summary)
	}
	return result
}

// utilizationPercent is actual/planned*100, or nil when nothing was planned.
// Division by zero is never attempted.
func utilizationPercent(actual, planned decimal.Decimal) *decimal.Decimal {
	if !planned.IsPositive() {
		return nil
	}
	utilization := actual.Div(planned).Mul(oneHundred)
	return &utilization
}

// efficiencyScore bounds utilization to [0,100] and penalizes unsustainable
// overtime linearly: one point per 10% of capacity worked above capacity,
// floored at zero. Days with no planned hours score zero.
func efficiencyScore(utilization *decimal.Decimal, actual, capacity decimal.Decimal) decimal.Decimal {
	if utilization == nil {
		return zero
	}
	score := *utilization
	if score.GreaterThan(oneHundred) {
		score = oneHundred
	}
	if capacity.IsPositive() && actual.GreaterThan(capacity) {
		overPercent := actual.Sub(capacity).Div(capacity).Mul(oneHundred)
		score = score.Sub(overPercent.Div(ten))
	}
	if score.IsNegative() {
		return zero
	}
	return score
}
