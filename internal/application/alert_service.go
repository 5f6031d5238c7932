package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/resource-planner/internal/alert"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
	"github.com/example/resource-planner/internal/workload"
)

// AlertService materializes alerts from detected conflicts and workload
// breaches. Reevaluate is the single write path: it gathers the causes
// currently present, hands them to the reconciler and applies the returned
// instructions, so repeated passes over unchanged state are no-ops.
type AlertService struct {
	alerts      persistence.AlertRepository
	employees   persistence.EmployeeRepository
	workloads   *WorkloadService
	loader      snapshotLoader
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// ReevaluateParams bounds one reevaluation pass.
type ReevaluateParams struct {
	Principal Principal
	From      calendar.Date
	To        calendar.Date
}

// ReevaluateResult reports what one pass changed.
type ReevaluateResult struct {
	Created  int
	Resolved int
}

// NewAlertService wires dependencies for alert operations.
func NewAlertService(
	alerts persistence.AlertRepository,
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	workloads *WorkloadService,
	idGenerator func() string,
	now func() time.Time,
) *AlertService {
	return NewAlertServiceWithLogger(alerts, employees, entries, vacations, assignments, workloads, idGenerator, now, nil)
}

// NewAlertServiceWithLogger wires dependencies including a base logger.
func NewAlertServiceWithLogger(
	alerts persistence.AlertRepository,
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	workloads *WorkloadService,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *AlertService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AlertService{
		alerts:    alerts,
		employees: employees,
		workloads: workloads,
		loader: snapshotLoader{
			employees:   employees,
			entries:     entries,
			vacations:   vacations,
			assignments: assignments,
		},
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Reevaluate runs one reconciliation pass over the date range. Admin only.
func (s *AlertService) Reevaluate(ctx context.Context, params ReevaluateParams) (ReevaluateResult, error) {
	if s == nil {
		return ReevaluateResult{}, fmt.Errorf("AlertService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "alert", "reevaluate")

	if !params.Principal.IsAdmin {
		return ReevaluateResult{}, ErrUnauthorized
	}
	dayRange, err := calendar.NewDateRange(params.From, params.To)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("range", "end date must not precede start date")
		return ReevaluateResult{}, vErr
	}

	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return ReevaluateResult{}, mapRepositoryError(err)
	}

	var (
		conflicts []planning.Conflict
		breaches  []workload.Breach
	)
	for _, employee := range employees {
		employeeConflicts, err := s.collectConflicts(ctx, employee.ID, dayRange)
		if err != nil {
			return ReevaluateResult{}, err
		}
		conflicts = append(conflicts, employeeConflicts...)

		employeeBreaches, err := s.workloads.WeeklyBreaches(ctx, employee.ID, params.From, params.To)
		if err != nil {
			return ReevaluateResult{}, err
		}
		breaches = append(breaches, employeeBreaches...)
	}

	stored, err := s.alerts.ListAlerts(ctx, persistence.AlertFilter{})
	if err != nil {
		return ReevaluateResult{}, mapRepositoryError(err)
	}
	existing := make([]alert.Alert, 0, len(stored))
	for _, record := range stored {
		existing = append(existing, toEngineAlert(record))
	}

	upserts, err := alert.Reconcile(conflicts, breaches, existing)
	if err != nil {
		return ReevaluateResult{}, err
	}

	result := ReevaluateResult{}
	for _, upsert := range upserts {
		switch upsert.Op {
		case alert.OpCreate:
			if err := s.alerts.CreateAlert(ctx, s.newAlertRecord(upsert.Alert)); err != nil {
				return result, mapRepositoryError(err)
			}
			result.Created++
		case alert.OpResolve:
			record, err := findAlertByCauseKey(stored, upsert.Alert.CauseKey)
			if err != nil {
				return result, err
			}
			resolvedAt := s.now().UTC()
			record.Status = string(alert.StatusResolved)
			record.ResolvedAt = &resolvedAt
			if err := s.alerts.UpdateAlert(ctx, record); err != nil {
				return result, mapRepositoryError(err)
			}
			result.Resolved++
		}
	}

	logger.InfoContext(ctx, "alerts reevaluated",
		"conflicts", len(conflicts), "breaches", len(breaches),
		"created", result.Created, "resolved", result.Resolved)
	return result, nil
}

// Acknowledge marks an ACTIVE alert as seen. The cause stays open; further
// reevaluation passes leave acknowledged alerts alone.
func (s *AlertService) Acknowledge(ctx context.Context, params AlertActionParams) (persistence.Alert, error) {
	if s == nil {
		return persistence.Alert{}, fmt.Errorf("AlertService is nil")
	}

	record, err := s.alerts.GetAlert(ctx, params.AlertID)
	if err != nil {
		return persistence.Alert{}, mapRepositoryError(err)
	}
	if record.Status != string(alert.StatusActive) {
		return persistence.Alert{}, ErrInvalidStatusTransition
	}

	acknowledgedAt := s.now().UTC()
	record.Status = string(alert.StatusAcknowledged)
	record.AcknowledgedAt = &acknowledgedAt
	if err := s.alerts.UpdateAlert(ctx, record); err != nil {
		return persistence.Alert{}, mapRepositoryError(err)
	}

	serviceLogger(ctx, s.logger, "alert", "acknowledge", "alert_id", params.AlertID).
		InfoContext(ctx, "alert acknowledged")
	return record, nil
}

// Resolve closes an ACTIVE or ACKNOWLEDGED alert by hand.
func (s *AlertService) Resolve(ctx context.Context, params AlertActionParams) (persistence.Alert, error) {
	if s == nil {
		return persistence.Alert{}, fmt.Errorf("AlertService is nil")
	}

	record, err := s.alerts.GetAlert(ctx, params.AlertID)
	if err != nil {
		return persistence.Alert{}, mapRepositoryError(err)
	}
	if record.Status == string(alert.StatusResolved) {
		return persistence.Alert{}, ErrInvalidStatusTransition
	}

	resolvedAt := s.now().UTC()
	record.Status = string(alert.StatusResolved)
	record.ResolvedAt = &resolvedAt
	if err := s.alerts.UpdateAlert(ctx, record); err != nil {
		return persistence.Alert{}, mapRepositoryError(err)
	}

	serviceLogger(ctx, s.logger, "alert", "resolve", "alert_id", params.AlertID).
		InfoContext(ctx, "alert resolved")
	return record, nil
}

// ListAlerts returns the alerts matching the filter.
func (s *AlertService) ListAlerts(ctx context.Context, params ListAlertsParams) ([]persistence.Alert, error) {
	if s == nil {
		return nil, fmt.Errorf("AlertService is nil")
	}
	alerts, err := s.alerts.ListAlerts(ctx, persistence.AlertFilter{
		Statuses:   params.Statuses,
		EmployeeID: params.EmployeeID,
		ProjectID:  params.ProjectID,
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return alerts, nil
}

// collectConflicts replays the detector over every persisted commitment of
// one employee. Mirrored overlap pairs are kept once, from the side with
// the smaller id, so a pair produces one cause instead of two.
func (s *AlertService) collectConflicts(ctx context.Context, employeeID string, dayRange calendar.DateRange) ([]planning.Conflict, error) {
	snapshot, err := s.loader.load(ctx, employeeID, dayRange.Start, dayRange.End)
	if err != nil {
		return nil, err
	}
	timeline, err := planning.ResolveAvailability(snapshot, employeeID, dayRange)
	if err != nil {
		return nil, mapPlanningError(err)
	}

	var conflicts []planning.Conflict
	for _, entry := range snapshot.Schedules {
		for _, conflict := range planning.DetectConflicts(planning.CandidateEntry(entry), timeline, nil) {
			if conflict.Kind == planning.ConflictOverlap && entry.ID > conflict.Existing.ID {
				continue
			}
			conflicts = append(conflicts, conflict)
		}
	}
	for _, assignment := range snapshot.Assignments {
		detected := planning.DetectConflicts(planning.CandidateAssignment(assignment), timeline, nil)
		conflicts = append(conflicts, detected...)
	}
	return conflicts, nil
}

func (s *AlertService) newAlertRecord(built alert.Alert) persistence.Alert {
	record := persistence.Alert{
		ID:       s.idGenerator(),
		CauseKey: built.CauseKey,
		Type:     string(built.Type),
		Priority: string(built.Priority),
		Title:    built.Title,
		Message:  built.Message,
		Status:   string(alert.StatusActive),
	}
	if built.EmployeeID != "" {
		record.EmployeeID = &built.EmployeeID
	}
	if built.ProjectID != "" {
		record.ProjectID = &built.ProjectID
	}
	if built.ScheduleEntryID != "" {
		record.ScheduleEntryID = &built.ScheduleEntryID
	}
	return record
}

func toEngineAlert(record persistence.Alert) alert.Alert {
	return alert.Alert{
		ID:              record.ID,
		CauseKey:        record.CauseKey,
		Type:            alert.Type(record.Type),
		Priority:        alert.Priority(record.Priority),
		Title:           record.Title,
		Message:         record.Message,
		EmployeeID:      stringOrEmpty(record.EmployeeID),
		ProjectID:       stringOrEmpty(record.ProjectID),
		ScheduleEntryID: stringOrEmpty(record.ScheduleEntryID),
		Status:          alert.Status(record.Status),
	}
}

func findAlertByCauseKey(records []persistence.Alert, causeKey string) (persistence.Alert, error) {
	for _, record := range records {
		if record.CauseKey == causeKey && record.Status != string(alert.StatusResolved) {
			return record, nil
		}
	}
	return persistence.Alert{}, fmt.Errorf("no open alert for cause %q", causeKey)
}
