package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

// openEndedDetectionDays bounds how far conflict detection looks ahead for
// assignments without an end date.
const openEndedDetectionDays = 28

// AssignmentService manages project assignments. Creation runs the full
// detector pass: overallocation against the employee's timeline, allocation
// consistency between hours and percent, and staffing sufficiency against
// the project's requirements.
type AssignmentService struct {
	assignments persistence.AssignmentRepository
	employees   persistence.EmployeeRepository
	projects    persistence.ProjectRepository
	loader      snapshotLoader
	onWrite     func()
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAssignmentService wires dependencies for assignment operations. onWrite
// is invoked after every successful write; nil is allowed.
func NewAssignmentService(
	employees persistence.EmployeeRepository,
	projects persistence.ProjectRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	onWrite func(),
	idGenerator func() string,
	now func() time.Time,
) *AssignmentService {
	return NewAssignmentServiceWithLogger(employees, projects, entries, vacations, assignments, onWrite, idGenerator, now, nil)
}

// NewAssignmentServiceWithLogger wires dependencies including a base logger.
func NewAssignmentServiceWithLogger(
	employees persistence.EmployeeRepository,
	projects persistence.ProjectRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	onWrite func(),
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *AssignmentService {
	if onWrite == nil {
		onWrite = func() {}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{
		assignments: assignments,
		employees:   employees,
		projects:    projects,
		loader: snapshotLoader{
			employees:   employees,
			entries:     entries,
			vacations:   vacations,
			assignments: assignments,
		},
		onWrite:     onWrite,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateAssignment validates, persists and reports the conflicts the new
// allocation introduces. Admin only.
func (s *AssignmentService) CreateAssignment(ctx context.Context, params CreateAssignmentParams) (persistence.ProjectAssignment, []ConflictWarning, error) {
	if s == nil {
		return persistence.ProjectAssignment{}, nil, fmt.Errorf("AssignmentService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "assignment", "create")

	if !params.Principal.IsAdmin {
		return persistence.ProjectAssignment{}, nil, ErrUnauthorized
	}
	if err := validateAssignmentInput(params.Input); err != nil {
		return persistence.ProjectAssignment{}, nil, err
	}
	if _, err := s.projects.GetProject(ctx, params.Input.ProjectID); err != nil {
		return persistence.ProjectAssignment{}, nil, mapRepositoryError(err)
	}

	assignment := persistence.ProjectAssignment{
		ID:          s.idGenerator(),
		EmployeeID:  params.Input.EmployeeID,
		ProjectID:   params.Input.ProjectID,
		StartDate:   params.Input.Start,
		EndDate:     params.Input.End,
		HoursPerDay: params.Input.HoursPerDay,
		Percent:     params.Input.Percent,
	}

	warnings, err := s.detectAssignmentConflicts(ctx, assignment)
	if err != nil {
		return persistence.ProjectAssignment{}, nil, err
	}

	if err := s.assignments.CreateAssignment(ctx, assignment); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "assignment create failed", "error_kind", ErrorKind(err))
		return persistence.ProjectAssignment{}, nil, err
	}
	s.onWrite()

	logger.InfoContext(ctx, "assignment created",
		"assignment_id", assignment.ID, "employee_id", assignment.EmployeeID,
		"project_id", assignment.ProjectID, "warnings", len(warnings))

	stored, err := s.assignments.GetAssignment(ctx, assignment.ID)
	if err != nil {
		return persistence.ProjectAssignment{}, nil, mapRepositoryError(err)
	}
	return stored, warnings, nil
}

// EndAssignment closes an open-ended or shortens an ended assignment.
// Admin only.
func (s *AssignmentService) EndAssignment(ctx context.Context, params EndAssignmentParams) (persistence.ProjectAssignment, error) {
	if s == nil {
		return persistence.ProjectAssignment{}, fmt.Errorf("AssignmentService is nil")
	}
	if !params.Principal.IsAdmin {
		return persistence.ProjectAssignment{}, ErrUnauthorized
	}

	assignment, err := s.assignments.GetAssignment(ctx, params.AssignmentID)
	if err != nil {
		return persistence.ProjectAssignment{}, mapRepositoryError(err)
	}
	if params.End.Before(assignment.StartDate) {
		vErr := &ValidationError{}
		vErr.add("end_date", "end date must not precede start date")
		return persistence.ProjectAssignment{}, vErr
	}

	end := params.End
	assignment.EndDate = &end
	if err := s.assignments.UpdateAssignment(ctx, assignment); err != nil {
		return persistence.ProjectAssignment{}, mapRepositoryError(err)
	}
	s.onWrite()

	serviceLogger(ctx, s.logger, "assignment", "end", "assignment_id", params.AssignmentID).
		InfoContext(ctx, "assignment ended", "employee_id", assignment.EmployeeID, "end_date", end.String())
	return assignment, nil
}

// GetAssignment retrieves one assignment by id.
func (s *AssignmentService) GetAssignment(ctx context.Context, id string) (persistence.ProjectAssignment, error) {
	if s == nil {
		return persistence.ProjectAssignment{}, fmt.Errorf("AssignmentService is nil")
	}
	assignment, err := s.assignments.GetAssignment(ctx, id)
	if err != nil {
		return persistence.ProjectAssignment{}, mapRepositoryError(err)
	}
	return assignment, nil
}

// ListAssignments returns the assignments matching the filter.
func (s *AssignmentService) ListAssignments(ctx context.Context, filter persistence.AssignmentFilter) ([]persistence.ProjectAssignment, error) {
	if s == nil {
		return nil, fmt.Errorf("AssignmentService is nil")
	}
	assignments, err := s.assignments.ListAssignments(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return assignments, nil
}

// DeleteAssignment removes an assignment. Admin only.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("AssignmentService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.assignments.DeleteAssignment(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.onWrite()
	return nil
}

func (s *AssignmentService) detectAssignmentConflicts(ctx context.Context, assignment persistence.ProjectAssignment) ([]ConflictWarning, error) {
	from := assignment.StartDate
	to := assignment.StartDate.AddDays(openEndedDetectionDays - 1)
	if assignment.EndDate != nil && assignment.EndDate.Before(to) {
		to = *assignment.EndDate
	}

	snapshot, err := s.loader.load(ctx, assignment.EmployeeID, from, to)
	if err != nil {
		return nil, err
	}
	dayRange, err := calendar.NewDateRange(from, to)
	if err != nil {
		return nil, err
	}
	timeline, err := planning.ResolveAvailability(snapshot, assignment.EmployeeID, dayRange)
	if err != nil {
		return nil, mapPlanningError(err)
	}

	staffing, err := s.staffingChecks(ctx, assignment, dayRange)
	if err != nil {
		return nil, err
	}

	conflicts := planning.DetectConflicts(planning.CandidateAssignment(toPlanningAssignment(assignment)), timeline, staffing)
	return warningsFromConflicts(conflicts), nil
}

// staffingChecks compares the project's requirements inside the detection
// range against the headcount that would be assigned once the candidate is
// written. Counting happens here so the planning core stays a pure
// comparison.
func (s *AssignmentService) staffingChecks(ctx context.Context, candidate persistence.ProjectAssignment, dayRange calendar.DateRange) ([]planning.StaffingCheck, error) {
	project, err := s.projects.GetProject(ctx, candidate.ProjectID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	qualifications := map[string]string{}
	var checks []planning.StaffingCheck
	for _, requirement := range project.Requirements {
		if !dayRange.Contains(requirement.Date) {
			continue
		}

		date := requirement.Date
		assignments, err := s.assignments.ListAssignments(ctx, persistence.AssignmentFilter{
			ProjectID: &candidate.ProjectID,
			ActiveOn:  &date,
		})
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		if toPlanningAssignment(candidate).ActiveOn(date) {
			assignments = append(assignments, candidate)
		}

		assigned := 0
		for _, assignment := range assignments {
			qualification, ok := qualifications[assignment.EmployeeID]
			if !ok {
				employee, err := s.employees.GetEmployee(ctx, assignment.EmployeeID)
				if err != nil {
					return nil, mapRepositoryError(err)
				}
				qualification = employee.Qualification
				qualifications[assignment.EmployeeID] = qualification
			}
			if qualification == requirement.Qualification {
				assigned++
			}
		}

		checks = append(checks, planning.StaffingCheck{
			ProjectID:     project.ID,
			RequirementID: requirement.ID,
			Date:          requirement.Date,
			Qualification: requirement.Qualification,
			Required:      requirement.Required,
			Assigned:      assigned,
		})
	}
	return checks, nil
}

func validateAssignmentInput(input AssignmentInput) error {
	vErr := &ValidationError{}
	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if input.ProjectID == "" {
		vErr.add("project_id", "project is required")
	}
	if input.Start == (calendar.Date{}) {
		vErr.add("start_date", "start date is required")
	}
	if input.End != nil && input.End.Before(input.Start) {
		vErr.add("end_date", "end date must not precede start date")
	}
	if input.HoursPerDay != nil && input.HoursPerDay.LessThanOrEqual(decimal.Zero) {
		vErr.add("hours_per_day", "hours per day must be positive")
	}
	if input.Percent != nil {
		if input.Percent.LessThanOrEqual(decimal.Zero) {
			vErr.add("percent", "percent must be positive")
		} else if input.Percent.GreaterThan(decimal.NewFromInt(100)) {
			vErr.add("percent", "percent must not exceed 100")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
