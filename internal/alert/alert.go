// Package alert turns conflicts and workload-threshold breaches into
// deduplicated alert upsert instructions. The engine is a pure reconciler:
// it never persists anything itself, so the caller owns the serialization
// of concurrent passes over the same cause keys.
package alert

import (
	"errors"
	"fmt"
	"sort"

	"github.com/example/resource-planner/internal/planning"
	"github.com/example/resource-planner/internal/workload"
)

// ErrUnknownConflictKind is returned when a conflict kind has no alert
// mapping. Unmapped kinds fail loudly; silently dropping one would hide a
// real scheduling problem.
var ErrUnknownConflictKind = errors.New("alert: unknown conflict kind")

// Type is the closed set of alert categories.
type Type string

const (
	TypeOverlap              Type = "OVERLAP"
	TypeOverallocation       Type = "OVERALLOCATION"
	TypeVacationConflict     Type = "VACATION_CONFLICT"
	TypeInsufficientStaffing Type = "INSUFFICIENT_STAFFING"
	TypeOverload             Type = "OVERLOAD"
	TypeUnderutilization     Type = "UNDERUTILIZATION"
)

// Priority grades an alert for triage.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Status is the alert lifecycle state.
type Status string

const (
	// StatusActive marks a detected, unhandled cause.
	StatusActive Status = "ACTIVE"
	// StatusAcknowledged marks an alert a user has seen; the cause persists.
	StatusAcknowledged Status = "ACKNOWLEDGED"
	// StatusResolved marks an alert whose cause disappeared or was closed.
	StatusResolved Status = "RESOLVED"
)

// Alert is the durable record materialized from a cause.
type Alert struct {
	ID              string
	CauseKey        string
	Type            Type
	Priority        Priority
	Title           string
	Message         string
	EmployeeID      string
	ProjectID       string
	ScheduleEntryID string
	Status          Status
}

// Op is the instruction kind of an upsert.
type Op string

const (
	// OpCreate materializes a new alert for a newly detected cause.
	OpCreate Op = "CREATE"
	// OpResolve transitions an existing alert to RESOLVED.
	OpResolve Op = "RESOLVE"
)

// Upsert is one reconciliation instruction for the persistence layer.
type Upsert struct {
	Op    Op
	Alert Alert
}

// ConflictCauseKey derives the stable identity of a conflict cause:
// kind plus subject ids plus date. Reevaluations of the same state always
// produce the same key.
func ConflictCauseKey(c planning.Conflict) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", c.Kind, c.EmployeeID, c.ProjectID, c.Existing.ID, c.Date)
}

// BreachCauseKey derives the stable identity of a threshold breach.
func BreachCauseKey(b workload.Breach) string {
	return fmt.Sprintf("%s|%s|%04d-W%02d", b.Kind, b.EmployeeID, b.ISOYear, b.ISOWeek)
}

// Reconcile compares the causes detected in this pass against the alerts
// already on record and returns the create/resolve instructions that bring
// the record in line. The pass is idempotent: an ACTIVE or ACKNOWLEDGED
// alert whose cause persists is left untouched, and acknowledged alerts are
// never bumped back to active.
func Reconcile(conflicts []planning.Conflict, breaches []workload.Breach, existing []Alert) ([]Upsert, error) {
	desired := make(map[string]Alert)

	for _, conflict := range conflicts {
		built, err := fromConflict(conflict)
		if err != nil {
			return nil, err
		}
		if _, dup := desired[built.CauseKey]; dup {
			continue
		}
		desired[built.CauseKey] = built
	}
	for _, breach := range breaches {
		built := fromBreach(breach)
		if _, dup := desired[built.CauseKey]; dup {
			continue
		}
		desired[built.CauseKey] = built
	}

	open := make(map[string]Alert)
	for _, a := range existing {
		if a.Status == StatusResolved {
			continue
		}
		open[a.CauseKey] = a
	}

	var upserts []Upsert
	for key, built := range desired {
		if _, present := open[key]; present {
			continue
		}
		built.Status = StatusActive
		upserts = append(upserts, Upsert{Op: OpCreate, Alert: built})
	}
	for key, a := range open {
		if _, present := desired[key]; present {
			continue
		}
		a.Status = StatusResolved
		upserts = append(upserts, Upsert{Op: OpResolve, Alert: a})
	}

	sort.Slice(upserts, func(i, j int) bool {
		if upserts[i].Op != upserts[j].Op {
			return upserts[i].Op == OpCreate
		}
		return upserts[i].Alert.CauseKey < upserts[j].Alert.CauseKey
	})
	return upserts, nil
}

func fromConflict(c planning.Conflict) (Alert, error) {
	alertType, title, err := classifyConflict(c)
	if err != nil {
		return Alert{}, err
	}

	a := Alert{
		CauseKey:   ConflictCauseKey(c),
		Type:       alertType,
		Priority:   priorityFor(c.Severity),
		Title:      title,
		Message:    conflictMessage(c),
		EmployeeID: c.EmployeeID,
		ProjectID:  c.ProjectID,
	}
	if c.Existing.Kind == planning.CommitmentSchedule {
		a.ScheduleEntryID = c.Existing.ID
	}
	return a, nil
}

func classifyConflict(c planning.Conflict) (Type, string, error) {
	switch c.Kind {
	case planning.ConflictOverlap:
		return TypeOverlap, "Schedule overlap", nil
	case planning.ConflictOverallocation:
		if _, mismatch := c.Details.(planning.AllocationMismatchDetails); mismatch {
			return TypeOverallocation, "Inconsistent allocation data", nil
		}
		return TypeOverallocation, "Capacity exceeded", nil
	case planning.ConflictVacation:
		return TypeVacationConflict, "Commitment during vacation", nil
	case planning.ConflictInsufficientStaffing:
		return TypeInsufficientStaffing, "Project understaffed", nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownConflictKind, c.Kind)
}

func conflictMessage(c planning.Conflict) string {
	switch details := c.Details.(type) {
	case planning.OverlapDetails:
		return fmt.Sprintf("employee %s has overlapping entries on %s (%s-%s vs %s-%s)",
			c.EmployeeID, c.Date, details.CandidateStart, details.CandidateEnd, details.ExistingStart, details.ExistingEnd)
	case planning.VacationDetails:
		return fmt.Sprintf("employee %s has a commitment on %s during a %s vacation (%s to %s)",
			c.EmployeeID, c.Date, details.VacationStatus, details.VacationStart, details.VacationEnd)
	case planning.OverallocationDetails:
		return fmt.Sprintf("employee %s is allocated %sh of a %sh capacity on %s (%s%% over)",
			c.EmployeeID, details.Allocated, details.Capacity, c.Date, details.OverflowPercent.Round(1))
	case planning.AllocationMismatchDetails:
		return fmt.Sprintf("assignment for employee %s on project %s declares %sh/day but its percentage implies %sh/day",
			c.EmployeeID, c.ProjectID, details.HoursPerDay, details.PercentAsHours)
	case planning.StaffingDetails:
		return fmt.Sprintf("project %s needs %d %s staff on %s but has %d assigned",
			c.ProjectID, details.Required, details.Qualification, c.Date, details.Assigned)
	}
	return fmt.Sprintf("conflict %s for employee %s on %s", c.Kind, c.EmployeeID, c.Date)
}

func fromBreach(b workload.Breach) Alert {
	a := Alert{
		CauseKey:   BreachCauseKey(b),
		EmployeeID: b.EmployeeID,
	}
	switch b.Kind {
	case workload.BreachOverloaded:
		a.Type = TypeOverload
		a.Priority = PriorityHigh
		a.Title = "Employee overloaded"
		a.Message = fmt.Sprintf("employee %s ran at %s%% utilization in ISO week %d of %d",
			b.EmployeeID, b.Utilization.Round(1), b.ISOWeek, b.ISOYear)
	default:
		a.Type = TypeUnderutilization
		a.Priority = PriorityLow
		a.Title = "Employee underutilized"
		a.Message = fmt.Sprintf("employee %s ran at %s%% utilization in ISO week %d of %d",
			b.EmployeeID, b.Utilization.Round(1), b.ISOWeek, b.ISOYear)
	}
	return a
}

func priorityFor(severity planning.Severity) Priority {
	switch severity {
	case planning.SeverityCritical:
		return PriorityCritical
	case planning.SeverityHigh:
		return PriorityHigh
	case planning.SeverityMedium:
		return PriorityMedium
	default:
		return PriorityLow
	}
}
