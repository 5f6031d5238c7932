// Package planning holds the pure availability and conflict-detection core.
// It consumes immutable snapshots assembled by the service layer and returns
// value decisions; it performs no I/O, no logging and keeps no state between
// calls, so invocations for different employees may run concurrently.
package planning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
)

// VacationStatus is the closed set of vacation request states.
type VacationStatus string

const (
	VacationPending   VacationStatus = "PENDING"
	VacationApproved  VacationStatus = "APPROVED"
	VacationRejected  VacationStatus = "REJECTED"
	VacationCancelled VacationStatus = "CANCELLED"
)

// ParseVacationStatus maps a stored value onto the closed status set.
// Unrecognized values are rejected rather than defaulted.
func ParseVacationStatus(value string) (VacationStatus, error) {
	switch VacationStatus(value) {
	case VacationPending, VacationApproved, VacationRejected, VacationCancelled:
		return VacationStatus(value), nil
	}
	return "", fmt.Errorf("planning: unknown vacation status %q", value)
}

// Employee is the capacity snapshot the core needs; the full catalog record
// lives in persistence.
type Employee struct {
	ID            string
	Qualification string
	WeeklyHours   decimal.Decimal
	Available     bool
}

var (
	five           = decimal.NewFromInt(5)
	eight          = decimal.NewFromInt(8)
	oneHundred     = decimal.NewFromInt(100)
	baselineDay    = eight
	consistencyTol = decimal.RequireFromString("0.4")
)

// DailyCapacity derives the per-day hour budget: weekly hours spread over a
// five-day week, or the 8-hour baseline when no weekly figure is recorded.
func (e Employee) DailyCapacity() decimal.Decimal {
	if e.WeeklyHours.IsPositive() {
		return e.WeeklyHours.Div(five)
	}
	return baselineDay
}

// ScheduleEntry is a time-bounded claim on an employee's day.
type ScheduleEntry struct {
	ID              string
	EmployeeID      string
	Date            calendar.Date
	Start           calendar.ClockTime
	End             calendar.ClockTime
	CrossesMidnight bool
	ProjectID       string
	TeamID          string
	StatusCode      string
}

// interval returns the entry's minute span relative to midnight of its date.
// Entries crossing midnight extend past the 1440-minute mark.
func (e ScheduleEntry) interval() (startMin, endMin int) {
	startMin = e.Start.Minutes()
	endMin = e.End.Minutes()
	if e.CrossesMidnight {
		endMin += 24 * 60
	}
	return startMin, endMin
}

// overlaps reports whether two entries on the same date share any time, with
// half-open semantics so back-to-back entries do not collide.
func (e ScheduleEntry) overlaps(other ScheduleEntry) bool {
	if e.Date != other.Date {
		return false
	}
	aStart, aEnd := e.interval()
	bStart, bEnd := other.interval()
	return aStart < bEnd && bStart < aEnd
}

// VacationRequest is an inclusive date-range absence request.
type VacationRequest struct {
	ID         string
	EmployeeID string
	Start      calendar.Date
	End        calendar.Date
	Type       string
	Status     VacationStatus
}

// Covers reports whether the request spans the given day.
func (v VacationRequest) Covers(d calendar.Date) bool {
	return !d.Before(v.Start) && !d.After(v.End)
}

// Range returns the request's inclusive date range.
func (v VacationRequest) Range() calendar.DateRange {
	return calendar.DateRange{Start: v.Start, End: v.End}
}

// ProjectAssignment allocates part of an employee's capacity to a project
// over an open or closed date range. At least one of HoursPerDay and Percent
// should be set; both nil marks the allocation as uncertain.
type ProjectAssignment struct {
	ID          string
	EmployeeID  string
	ProjectID   string
	Start       calendar.Date
	End         *calendar.Date
	HoursPerDay *decimal.Decimal
	Percent     *decimal.Decimal
}

// ActiveOn reports whether the assignment claims the given day.
func (a ProjectAssignment) ActiveOn(d calendar.Date) bool {
	if d.Before(a.Start) {
		return false
	}
	if a.End != nil && d.After(*a.End) {
		return false
	}
	return true
}

// DailyHours resolves the assignment's daily hour claim. Percentage
// allocations convert against the 8-hour baseline day. ok is false when
// neither field is set and the claim cannot be quantified.
func (a ProjectAssignment) DailyHours() (hours decimal.Decimal, ok bool) {
	if a.HoursPerDay != nil {
		return *a.HoursPerDay, true
	}
	if a.Percent != nil {
		return a.Percent.Mul(baselineDay).Div(oneHundred), true
	}
	return decimal.Decimal{}, false
}

// Snapshot is the immutable read model one availability evaluation works on.
// Entities reference each other by id only; the service layer resolves the
// object graph before handing it over.
type Snapshot struct {
	Employees   map[string]Employee
	Schedules   []ScheduleEntry
	Vacations   []VacationRequest
	Assignments []ProjectAssignment
}

// CommitmentKind tags the record type behind a commitment reference.
type CommitmentKind string

const (
	CommitmentSchedule    CommitmentKind = "SCHEDULE_ENTRY"
	CommitmentVacation    CommitmentKind = "VACATION_REQUEST"
	CommitmentAssignment  CommitmentKind = "PROJECT_ASSIGNMENT"
	CommitmentRequirement CommitmentKind = "STAFFING_REQUIREMENT"
)

// CommitmentRef points at a commitment by kind and id.
type CommitmentRef struct {
	Kind CommitmentKind
	ID   string
}
