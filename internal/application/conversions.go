package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

// mapRepositoryError translates persistence sentinels into application ones.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return err
	}
}

func toPlanningEmployee(employee persistence.Employee) planning.Employee {
	return planning.Employee{
		ID:            employee.ID,
		Qualification: employee.Qualification,
		WeeklyHours:   employee.WeeklyHours,
		Available:     employee.Available,
	}
}

func toPlanningEntry(entry persistence.ScheduleEntry) planning.ScheduleEntry {
	return planning.ScheduleEntry{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		Date:            entry.Date,
		Start:           entry.Start,
		End:             entry.End,
		CrossesMidnight: entry.CrossesMidnight,
		ProjectID:       stringOrEmpty(entry.ProjectID),
		TeamID:          stringOrEmpty(entry.TeamID),
		StatusCode:      entry.StatusCode,
	}
}

func toPlanningVacation(vacation persistence.VacationRequest) (planning.VacationRequest, error) {
	status, err := planning.ParseVacationStatus(vacation.Status)
	if err != nil {
		return planning.VacationRequest{}, err
	}
	return planning.VacationRequest{
		ID:         vacation.ID,
		EmployeeID: vacation.EmployeeID,
		Start:      vacation.StartDate,
		End:        vacation.EndDate,
		Type:       vacation.Type,
		Status:     status,
	}, nil
}

func toPlanningAssignment(assignment persistence.ProjectAssignment) planning.ProjectAssignment {
	return planning.ProjectAssignment{
		ID:          assignment.ID,
		EmployeeID:  assignment.EmployeeID,
		ProjectID:   assignment.ProjectID,
		Start:       assignment.StartDate,
		End:         assignment.EndDate,
		HoursPerDay: assignment.HoursPerDay,
		Percent:     assignment.Percent,
	}
}

// snapshotLoader assembles the commitment snapshot the planning core works
// on. Vacations are loaded in PENDING and APPROVED status only; rejected and
// cancelled requests never claim capacity.
type snapshotLoader struct {
	employees   persistence.EmployeeRepository
	entries     persistence.ScheduleEntryRepository
	vacations   persistence.VacationRepository
	assignments persistence.AssignmentRepository
}

func (l snapshotLoader) load(ctx context.Context, employeeID string, from, to calendar.Date) (planning.Snapshot, error) {
	employee, err := l.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return planning.Snapshot{}, mapRepositoryError(err)
	}

	entries, err := l.entries.ListEntries(ctx, persistence.ScheduleEntryFilter{
		EmployeeID: &employeeID,
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return planning.Snapshot{}, mapRepositoryError(err)
	}

	vacations, err := l.vacations.ListVacations(ctx, persistence.VacationFilter{
		EmployeeID: &employeeID,
		Statuses:   []string{string(planning.VacationPending), string(planning.VacationApproved)},
		From:       &from,
		To:         &to,
	})
	if err != nil {
		return planning.Snapshot{}, mapRepositoryError(err)
	}

	assignments, err := l.assignments.ListAssignments(ctx, persistence.AssignmentFilter{
		EmployeeID: &employeeID,
	})
	if err != nil {
		return planning.Snapshot{}, mapRepositoryError(err)
	}

	snapshot := planning.Snapshot{
		Employees: map[string]planning.Employee{employee.ID: toPlanningEmployee(employee)},
	}
	for _, entry := range entries {
		snapshot.Schedules = append(snapshot.Schedules, toPlanningEntry(entry))
	}
	for _, vacation := range vacations {
		converted, err := toPlanningVacation(vacation)
		if err != nil {
			return planning.Snapshot{}, err
		}
		snapshot.Vacations = append(snapshot.Vacations, converted)
	}
	for _, assignment := range assignments {
		snapshot.Assignments = append(snapshot.Assignments, toPlanningAssignment(assignment))
	}
	return snapshot, nil
}

// warningsFromConflicts converts detector output into the caller-facing view.
func warningsFromConflicts(conflicts []planning.Conflict) []ConflictWarning {
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			Kind:         string(conflict.Kind),
			Severity:     string(conflict.Severity),
			EmployeeID:   conflict.EmployeeID,
			ProjectID:    conflict.ProjectID,
			Date:         conflict.Date,
			ExistingKind: string(conflict.Existing.Kind),
			ExistingID:   conflict.Existing.ID,
			Message:      conflictWarningMessage(conflict),
		})
	}
	return warnings
}

func conflictWarningMessage(conflict planning.Conflict) string {
	switch details := conflict.Details.(type) {
	case planning.OverlapDetails:
		return fmt.Sprintf("entry %s-%s overlaps existing entry %s-%s on %s",
			details.CandidateStart, details.CandidateEnd, details.ExistingStart, details.ExistingEnd, conflict.Date)
	case planning.VacationDetails:
		return fmt.Sprintf("commitment falls inside %s vacation %s to %s",
			details.VacationStatus, details.VacationStart, details.VacationEnd)
	case planning.OverallocationDetails:
		return fmt.Sprintf("allocated %sh exceeds capacity %sh on %s",
			details.Allocated, details.Capacity, conflict.Date)
	case planning.AllocationMismatchDetails:
		return fmt.Sprintf("hours per day %sh and percent as %sh differ by %sh",
			details.HoursPerDay, details.PercentAsHours, details.DifferenceHours)
	case planning.StaffingDetails:
		return fmt.Sprintf("project %s needs %d %s on %s, has %d",
			conflict.ProjectID, details.Required, details.Qualification, conflict.Date, details.Assigned)
	default:
		return string(conflict.Kind)
	}
}
