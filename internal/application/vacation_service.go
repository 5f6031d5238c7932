package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

// VacationService runs the vacation request workflow. Approval re-runs
// conflict detection so the decision maker sees what the absence collides
// with; like everywhere else the warnings never block the transition.
type VacationService struct {
	vacations   persistence.VacationRepository
	loader      snapshotLoader
	onWrite     func()
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewVacationService wires dependencies for vacation operations. onWrite is
// invoked after every successful write so callers can drop derived caches;
// nil is allowed.
func NewVacationService(
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	onWrite func(),
	idGenerator func() string,
	now func() time.Time,
) *VacationService {
	return NewVacationServiceWithLogger(employees, entries, vacations, assignments, onWrite, idGenerator, now, nil)
}

// NewVacationServiceWithLogger wires dependencies including a base logger.
func NewVacationServiceWithLogger(
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	onWrite func(),
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *VacationService {
	if onWrite == nil {
		onWrite = func() {}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &VacationService{
		vacations: vacations,
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

// RequestVacation files a new PENDING request and reports the conflicts the
// absence would introduce.
func (s *VacationService) RequestVacation(ctx context.Context, params RequestVacationParams) (persistence.VacationRequest, []ConflictWarning, error) {
	if s == nil {
		return persistence.VacationRequest{}, nil, fmt.Errorf("VacationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "vacation", "request")

	input := params.Input
	if input.EmployeeID == "" {
		input.EmployeeID = params.Principal.EmployeeID
	}
	if input.EmployeeID != params.Principal.EmployeeID && !params.Principal.IsAdmin {
		return persistence.VacationRequest{}, nil, ErrUnauthorized
	}
	if err := validateVacationInput(input); err != nil {
		return persistence.VacationRequest{}, nil, err
	}

	vacation := persistence.VacationRequest{
		ID:         s.idGenerator(),
		EmployeeID: input.EmployeeID,
		StartDate:  input.Start,
		EndDate:    input.End,
		Type:       vacationTypeOrDefault(input.Type),
		Status:     string(planning.VacationPending),
	}

	warnings, err := s.detectVacationConflicts(ctx, vacation)
	if err != nil {
		return persistence.VacationRequest{}, nil, err
	}

	if err := s.vacations.CreateVacation(ctx, vacation); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "vacation request failed", "error_kind", ErrorKind(err))
		return persistence.VacationRequest{}, nil, err
	}
	s.onWrite()

	logger.InfoContext(ctx, "vacation requested",
		"vacation_id", vacation.ID, "employee_id", vacation.EmployeeID, "warnings", len(warnings))

	stored, err := s.vacations.GetVacation(ctx, vacation.ID)
	if err != nil {
		return persistence.VacationRequest{}, nil, mapRepositoryError(err)
	}
	return stored, warnings, nil
}

// Approve moves a PENDING request to APPROVED. Admin only. The returned
// warnings describe the commitments the approved absence collides with.
func (s *VacationService) Approve(ctx context.Context, params VacationDecisionParams) (persistence.VacationRequest, []ConflictWarning, error) {
	if s == nil {
		return persistence.VacationRequest{}, nil, fmt.Errorf("VacationService is nil")
	}
	if !params.Principal.IsAdmin {
		return persistence.VacationRequest{}, nil, ErrUnauthorized
	}
	logger := serviceLogger(ctx, s.logger, "vacation", "approve", "vacation_id", params.VacationID)

	vacation, err := s.vacations.GetVacation(ctx, params.VacationID)
	if err != nil {
		return persistence.VacationRequest{}, nil, mapRepositoryError(err)
	}
	if vacation.Status != string(planning.VacationPending) {
		return persistence.VacationRequest{}, nil, ErrInvalidStatusTransition
	}

	vacation.Status = string(planning.VacationApproved)
	warnings, err := s.detectVacationConflicts(ctx, vacation)
	if err != nil {
		return persistence.VacationRequest{}, nil, err
	}

	if err := s.vacations.UpdateVacation(ctx, vacation); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "vacation approval failed", "error_kind", ErrorKind(err))
		return persistence.VacationRequest{}, nil, err
	}
	s.onWrite()

	logger.InfoContext(ctx, "vacation approved", "employee_id", vacation.EmployeeID, "warnings", len(warnings))
	return vacation, warnings, nil
}

// Reject moves a PENDING request to REJECTED. Admin only.
func (s *VacationService) Reject(ctx context.Context, params VacationDecisionParams) (persistence.VacationRequest, error) {
	if s == nil {
		return persistence.VacationRequest{}, fmt.Errorf("VacationService is nil")
	}
	if !params.Principal.IsAdmin {
		return persistence.VacationRequest{}, ErrUnauthorized
	}

	vacation, err := s.vacations.GetVacation(ctx, params.VacationID)
	if err != nil {
		return persistence.VacationRequest{}, mapRepositoryError(err)
	}
	if vacation.Status != string(planning.VacationPending) {
		return persistence.VacationRequest{}, ErrInvalidStatusTransition
	}

	vacation.Status = string(planning.VacationRejected)
	if err := s.vacations.UpdateVacation(ctx, vacation); err != nil {
		return persistence.VacationRequest{}, mapRepositoryError(err)
	}
	s.onWrite()

	serviceLogger(ctx, s.logger, "vacation", "reject", "vacation_id", params.VacationID).
		InfoContext(ctx, "vacation rejected", "employee_id", vacation.EmployeeID)
	return vacation, nil
}

// Cancel moves a PENDING or APPROVED request to CANCELLED. Owners may cancel
// their own requests; admins may cancel any.
func (s *VacationService) Cancel(ctx context.Context, params VacationDecisionParams) (persistence.VacationRequest, error) {
	if s == nil {
		return persistence.VacationRequest{}, fmt.Errorf("VacationService is nil")
	}

	vacation, err := s.vacations.GetVacation(ctx, params.VacationID)
	if err != nil {
		return persistence.VacationRequest{}, mapRepositoryError(err)
	}
	if vacation.EmployeeID != params.Principal.EmployeeID && !params.Principal.IsAdmin {
		return persistence.VacationRequest{}, ErrUnauthorized
	}
	if vacation.Status != string(planning.VacationPending) && vacation.Status != string(planning.VacationApproved) {
		return persistence.VacationRequest{}, ErrInvalidStatusTransition
	}

	vacation.Status = string(planning.VacationCancelled)
	if err := s.vacations.UpdateVacation(ctx, vacation); err != nil {
		return persistence.VacationRequest{}, mapRepositoryError(err)
	}
	s.onWrite()

	serviceLogger(ctx, s.logger, "vacation", "cancel", "vacation_id", params.VacationID).
		InfoContext(ctx, "vacation cancelled", "employee_id", vacation.EmployeeID)
	return vacation, nil
}

// GetVacation retrieves one request by id.
func (s *VacationService) GetVacation(ctx context.Context, id string) (persistence.VacationRequest, error) {
	if s == nil {
		return persistence.VacationRequest{}, fmt.Errorf("VacationService is nil")
	}
	vacation, err := s.vacations.GetVacation(ctx, id)
	if err != nil {
		return persistence.VacationRequest{}, mapRepositoryError(err)
	}
	return vacation, nil
}

// ListVacations returns the requests matching the filter.
func (s *VacationService) ListVacations(ctx context.Context, filter persistence.VacationFilter) ([]persistence.VacationRequest, error) {
	if s == nil {
		return nil, fmt.Errorf("VacationService is nil")
	}
	vacations, err := s.vacations.ListVacations(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return vacations, nil
}

func (s *VacationService) detectVacationConflicts(ctx context.Context, vacation persistence.VacationRequest) ([]ConflictWarning, error) {
	snapshot, err := s.loader.load(ctx, vacation.EmployeeID, vacation.StartDate, vacation.EndDate)
	if err != nil {
		return nil, err
	}
	dayRange, err := calendar.NewDateRange(vacation.StartDate, vacation.EndDate)
	if err != nil {
		return nil, err
	}
	timeline, err := planning.ResolveAvailability(snapshot, vacation.EmployeeID, dayRange)
	if err != nil {
		return nil, mapPlanningError(err)
	}
	candidate, err := toPlanningVacation(vacation)
	if err != nil {
		return nil, err
	}
	conflicts := planning.DetectConflicts(planning.CandidateVacation(candidate), timeline, nil)
	return warningsFromConflicts(conflicts), nil
}

func vacationTypeOrDefault(vacationType string) string {
	if vacationType == "" {
		return "ANNUAL"
	}
	return vacationType
}

func validateVacationInput(input VacationInput) error {
	vErr := &ValidationError{}
	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if input.Start == (calendar.Date{}) {
		vErr.add("start_date", "start date is required")
	}
	if input.End == (calendar.Date{}) {
		vErr.add("end_date", "end date is required")
	}
	if !vErr.HasErrors() {
		if _, err := calendar.NewDateRange(input.Start, input.End); err != nil {
			vErr.add("end_date", "end date must not precede start date")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
