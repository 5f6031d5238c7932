package planning

import (
	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
)

// DayState classifies what an employee is doing on a single day.
type DayState string

const (
	// StateFree means no commitment claims the day.
	StateFree DayState = "FREE"
	// StateScheduled means at least one schedule entry claims the day.
	StateScheduled DayState = "SCHEDULED"
	// StateOnVacation means an approved vacation covers the day.
	StateOnVacation DayState = "ON_VACATION"
	// StateAssigned means only project assignments claim the day.
	StateAssigned DayState = "ASSIGNED"
	// StateOverallocated means assignment hours exceed the daily capacity.
	StateOverallocated DayState = "OVERALLOCATED"
	// StateUncertain means an assignment claims the day without a
	// quantifiable allocation, so the claim cannot be summed.
	StateUncertain DayState = "UNCERTAIN"
)

// DayAvailability is the resolved picture of one employee-day.
type DayAvailability struct {
	Date             calendar.Date
	State            DayState
	Entries          []ScheduleEntry
	Vacation         *VacationRequest
	PendingVacations []VacationRequest
	Assignments      []ProjectAssignment
	AllocatedHours   decimal.Decimal
	Uncertain        bool
}

// Timeline is the per-day availability of one employee over a range.
type Timeline struct {
	EmployeeID    string
	DailyCapacity decimal.Decimal
	Days          []DayAvailability
}

// Day returns the resolved availability for the given date.
func (t Timeline) Day(d calendar.Date) (DayAvailability, bool) {
	for _, day := range t.Days {
		if day.Date == d {
			return day, true
		}
	}
	return DayAvailability{}, false
}

// ResolveAvailability builds the availability timeline for one employee over
// an inclusive date range. Only approved vacations block a day; pending ones
// are carried as advisory context. A day is free when no schedule entry, no
// approved vacation and no assignment claims it.
func ResolveAvailability(snapshot Snapshot, employeeID string, r calendar.DateRange) (Timeline, error) {
	employee, ok := snapshot.Employees[employeeID]
	if !ok {
		return Timeline{}, ErrEmployeeNotFound
	}
	if _, err := calendar.NewDateRange(r.Start, r.End); err != nil {
		return Timeline{}, err
	}

	timeline := Timeline{
		EmployeeID:    employeeID,
		DailyCapacity: employee.DailyCapacity(),
		Days:          make([]DayAvailability, 0, len(r.Days())),
	}

	for _, d := range r.Days() {
		day := DayAvailability{Date: d}

		for _, entry := range snapshot.Schedules {
			if entry.EmployeeID == employeeID && entry.Date == d {
				day.Entries = append(day.Entries, entry)
			}
		}

		for _, vacation := range snapshot.Vacations {
			if vacation.EmployeeID != employeeID || !vacation.Covers(d) {
				continue
			}
			switch vacation.Status {
			case VacationApproved:
				if day.Vacation == nil {
					v := vacation
					day.Vacation = &v
				}
			case VacationPending:
				day.PendingVacations = append(day.PendingVacations, vacation)
			}
		}

		for _, assignment := range snapshot.Assignments {
			if assignment.EmployeeID != employeeID || !assignment.ActiveOn(d) {
				continue
			}
			day.Assignments = append(day.Assignments, assignment)
			hours, quantified := assignment.DailyHours()
			if !quantified {
				day.Uncertain = true
				continue
			}
			day.AllocatedHours = day.AllocatedHours.Add(hours)
		}

		day.State = classifyDay(day, timeline.DailyCapacity)
		timeline.Days = append(timeline.Days, day)
	}

	return timeline, nil
}

func classifyDay(day DayAvailability, capacity decimal.Decimal) DayState {
	switch {
	case day.Vacation != nil:
		return StateOnVacation
	case day.AllocatedHours.GreaterThan(capacity):
		return StateOverallocated
	case len(day.Entries) > 0:
		return StateScheduled
	case day.Uncertain:
		return StateUncertain
	case len(day.Assignments) > 0:
		return StateAssigned
	default:
		return StateFree
	}
}
