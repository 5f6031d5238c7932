package workload

import "github.com/shopspring/decimal"

// BreachKind distinguishes the two threshold classifications.
type BreachKind string

const (
	// BreachOverloaded marks a week whose utilization exceeds the overload threshold.
	BreachOverloaded BreachKind = "OVERLOADED"
	// BreachUnderutilized marks a week whose utilization falls below the floor.
	BreachUnderutilized BreachKind = "UNDERUTILIZED"
)

// Thresholds are the utilization bounds for classification, in percent.
type Thresholds struct {
	Overloaded    decimal.Decimal
	Underutilized decimal.Decimal
}

// DefaultThresholds returns the stock 110% / 50% bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Overloaded:    decimal.NewFromInt(110),
		Underutilized: decimal.NewFromInt(50),
	}
}

// Breach reports one employee-week outside the configured bounds.
type Breach struct {
	Kind        BreachKind
	EmployeeID  string
	ISOYear     int
	ISOWeek     int
	Utilization decimal.Decimal
}

// Classification splits weekly summaries into the two breach lists the
// alert engine consumes.
type Classification struct {
	Overloaded    []Breach
	Underutilized []Breach
}

// Classify inspects weekly summaries against the thresholds. Weeks with no
// planned hours carry no utilization and are never classified.
func Classify(weekly []WeeklySummary, thresholds Thresholds) Classification {
	var result Classification
	for _, week := range weekly {
		if week.Utilization == nil {
			continue
		}
		switch {
		case week.Utilization.GreaterThan(thresholds.Overloaded):
			result.Overloaded = append(result.Overloaded, Breach{
				Kind:        BreachOverloaded,
				EmployeeID:  week.EmployeeID,
				ISOYear:     week.ISOYear,
				ISOWeek:     week.ISOWeek,
				Utilization: *week.Utilization,
			})
		case week.Utilization.LessThan(thresholds.Underutilized):
			result.Underutilized = append(result.Underutilized, Breach{
				Kind:        BreachUnderutilized,
				EmployeeID:  week.EmployeeID,
				ISOYear:     week.ISOYear,
				ISOWeek:     week.ISOWeek,
				Utilization: *week.Utilization,
			})
		}
	}
	return result
}
