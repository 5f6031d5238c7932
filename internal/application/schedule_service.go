package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

// ScheduleService orchestrates validation, conflict detection and
// persistence for schedule entries, and resolves availability timelines.
// Detected conflicts are returned as warnings next to the result; a write
// is never blocked by them.
type ScheduleService struct {
	entries     persistence.ScheduleEntryRepository
	loader      snapshotLoader
	cache       *warningCache
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	idGenerator func() string,
	now func() time.Time,
) *ScheduleService {
	return NewScheduleServiceWithLogger(employees, entries, vacations, assignments, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger wires dependencies including a base logger.
func NewScheduleServiceWithLogger(
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	idGenerator func() string,
	now func() time.Time,
	logger *slog.Logger,
) *ScheduleService {
	return NewScheduleServiceWithCache(employees, entries, vacations, assignments, idGenerator, now, 30*time.Second, 128, logger)
}

// NewScheduleServiceWithCache additionally sizes the warning cache. TTL and
// size fall back to the stock 30s/128 when non-positive.
func NewScheduleServiceWithCache(
	employees persistence.EmployeeRepository,
	entries persistence.ScheduleEntryRepository,
	vacations persistence.VacationRepository,
	assignments persistence.AssignmentRepository,
	idGenerator func() string,
	now func() time.Time,
	cacheTTL time.Duration,
	cacheSize int,
	logger *slog.Logger,
) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if cacheSize <= 0 {
		cacheSize = 128
	}
	return &ScheduleService{
		entries: entries,
		loader: snapshotLoader{
			employees:   employees,
			entries:     entries,
			vacations:   vacations,
			assignments: assignments,
		},
		cache:       newWarningCache(cacheTTL, cacheSize),
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// InvalidateWarnings drops all cached warning computations. Vacation and
// assignment writes change availability, so their services call this after
// every successful write.
func (s *ScheduleService) InvalidateWarnings() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// CreateEntry validates the entry, persists it and reports the conflicts it
// introduces.
func (s *ScheduleService) CreateEntry(ctx context.Context, params CreateScheduleEntryParams) (persistence.ScheduleEntry, []ConflictWarning, error) {
	if s == nil {
		return persistence.ScheduleEntry{}, nil, fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "create")

	input := params.Input
	if input.EmployeeID == "" {
		input.EmployeeID = params.Principal.EmployeeID
	}
	if input.EmployeeID != params.Principal.EmployeeID && !params.Principal.IsAdmin {
		return persistence.ScheduleEntry{}, nil, ErrUnauthorized
	}
	if err := validateEntryInput(input); err != nil {
		return persistence.ScheduleEntry{}, nil, err
	}
	if input.StatusCode == "" {
		input.StatusCode = "ACTIVE"
	}

	entry := persistence.ScheduleEntry{
		ID:              s.idGenerator(),
		EmployeeID:      input.EmployeeID,
		Date:            input.Date,
		Start:           input.Start,
		End:             input.End,
		CrossesMidnight: input.CrossesMidnight,
		ProjectID:       input.ProjectID,
		TeamID:          input.TeamID,
		StatusCode:      input.StatusCode,
	}

	warnings, err := s.detectEntryConflicts(ctx, entry)
	if err != nil {
		return persistence.ScheduleEntry{}, nil, err
	}

	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "schedule entry create failed", "error_kind", ErrorKind(err))
		return persistence.ScheduleEntry{}, nil, err
	}
	s.cache.Invalidate()

	logger.InfoContext(ctx, "schedule entry created",
		"entry_id", entry.ID, "employee_id", entry.EmployeeID, "warnings", len(warnings))

	stored, err := s.entries.GetEntry(ctx, entry.ID)
	if err != nil {
		return persistence.ScheduleEntry{}, nil, mapRepositoryError(err)
	}
	return stored, warnings, nil
}

// UpdateEntry validates the changed entry, persists it and reports
// conflicts. The entry's own stored version never conflicts with itself.
func (s *ScheduleService) UpdateEntry(ctx context.Context, params UpdateScheduleEntryParams) (persistence.ScheduleEntry, []ConflictWarning, error) {
	if s == nil {
		return persistence.ScheduleEntry{}, nil, fmt.Errorf("ScheduleService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "schedule", "update", "entry_id", params.EntryID)

	existing, err := s.entries.GetEntry(ctx, params.EntryID)
	if err != nil {
		return persistence.ScheduleEntry{}, nil, mapRepositoryError(err)
	}
	if existing.EmployeeID != params.Principal.EmployeeID && !params.Principal.IsAdmin {
		return persistence.ScheduleEntry{}, nil, ErrUnauthorized
	}

	input := params.Input
	if input.EmployeeID == "" {
		input.EmployeeID = existing.EmployeeID
	}
	if input.EmployeeID != params.Principal.EmployeeID && !params.Principal.IsAdmin {
		return persistence.ScheduleEntry{}, nil, ErrUnauthorized
	}
	if err := validateEntryInput(input); err != nil {
		return persistence.ScheduleEntry{}, nil, err
	}
	if input.StatusCode == "" {
		input.StatusCode = existing.StatusCode
	}

	updated := persistence.ScheduleEntry{
		ID:              existing.ID,
		EmployeeID:      input.EmployeeID,
		Date:            input.Date,
		Start:           input.Start,
		End:             input.End,
		CrossesMidnight: input.CrossesMidnight,
		ProjectID:       input.ProjectID,
		TeamID:          input.TeamID,
		StatusCode:      input.StatusCode,
	}

	warnings, err := s.detectEntryConflicts(ctx, updated)
	if err != nil {
		return persistence.ScheduleEntry{}, nil, err
	}

	if err := s.entries.UpdateEntry(ctx, updated); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "schedule entry update failed", "error_kind", ErrorKind(err))
		return persistence.ScheduleEntry{}, nil, err
	}
	s.cache.Invalidate()

	stored, err := s.entries.GetEntry(ctx, params.EntryID)
	if err != nil {
		return persistence.ScheduleEntry{}, nil, mapRepositoryError(err)
	}
	return stored, warnings, nil
}

// GetEntry retrieves one schedule entry by id.
func (s *ScheduleService) GetEntry(ctx context.Context, id string) (persistence.ScheduleEntry, error) {
	if s == nil {
		return persistence.ScheduleEntry{}, fmt.Errorf("ScheduleService is nil")
	}
	entry, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return persistence.ScheduleEntry{}, mapRepositoryError(err)
	}
	return entry, nil
}

// DeleteEntry removes a schedule entry.
func (s *ScheduleService) DeleteEntry(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("ScheduleService is nil")
	}
	existing, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if existing.EmployeeID != principal.EmployeeID && !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.cache.Invalidate()
	serviceLogger(ctx, s.logger, "schedule", "delete").InfoContext(ctx, "schedule entry deleted", "entry_id", id)
	return nil
}

// ListEntries returns the entries matching the filter together with the
// conflicts currently present among them. Warning computation is cached per
// filter until the next write.
func (s *ScheduleService) ListEntries(ctx context.Context, params ListScheduleEntriesParams) ([]persistence.ScheduleEntry, []ConflictWarning, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("ScheduleService is nil")
	}

	entries, err := s.entries.ListEntries(ctx, persistence.ScheduleEntryFilter{
		EmployeeID: params.EmployeeID,
		ProjectID:  params.ProjectID,
		From:       params.From,
		To:         params.To,
	})
	if err != nil {
		return nil, nil, mapRepositoryError(err)
	}

	cacheKey := listWarningCacheKey(params)
	if warnings, ok := s.cache.Get(cacheKey); ok {
		return entries, warnings, nil
	}

	var warnings []ConflictWarning
	for employeeID, dayRange := range entrySpans(entries) {
		snapshot, err := s.loader.load(ctx, employeeID, dayRange.Start, dayRange.End)
		if err != nil {
			return nil, nil, err
		}
		timeline, err := planning.ResolveAvailability(snapshot, employeeID, dayRange)
		if err != nil {
			return nil, nil, err
		}
		for _, entry := range entries {
			if entry.EmployeeID != employeeID {
				continue
			}
			conflicts := planning.DetectConflicts(planning.CandidateEntry(toPlanningEntry(entry)), timeline, nil)
			warnings = append(warnings, warningsFromConflicts(conflicts)...)
		}
	}
	s.cache.Store(cacheKey, warnings)

	return entries, warnings, nil
}

// ResolveAvailability builds the day-by-day availability timeline of one
// employee over an inclusive date range.
func (s *ScheduleService) ResolveAvailability(ctx context.Context, params AvailabilityParams) (planning.Timeline, error) {
	if s == nil {
		return planning.Timeline{}, fmt.Errorf("ScheduleService is nil")
	}

	dayRange, err := calendar.NewDateRange(params.From, params.To)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("range", "end date must not precede start date")
		return planning.Timeline{}, vErr
	}

	snapshot, err := s.loader.load(ctx, params.EmployeeID, params.From, params.To)
	if err != nil {
		return planning.Timeline{}, err
	}
	timeline, err := planning.ResolveAvailability(snapshot, params.EmployeeID, dayRange)
	if err != nil {
		return planning.Timeline{}, mapPlanningError(err)
	}
	return timeline, nil
}

func (s *ScheduleService) detectEntryConflicts(ctx context.Context, entry persistence.ScheduleEntry) ([]ConflictWarning, error) {
	snapshot, err := s.loader.load(ctx, entry.EmployeeID, entry.Date, entry.Date)
	if err != nil {
		return nil, err
	}
	timeline, err := planning.ResolveAvailability(snapshot, entry.EmployeeID, calendar.SingleDay(entry.Date))
	if err != nil {
		return nil, mapPlanningError(err)
	}
	conflicts := planning.DetectConflicts(planning.CandidateEntry(toPlanningEntry(entry)), timeline, nil)
	return warningsFromConflicts(conflicts), nil
}

func mapPlanningError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, planning.ErrEmployeeNotFound) {
		return ErrNotFound
	}
	return err
}

// entrySpans groups entries per employee and returns the inclusive date
// range their dates span.
func entrySpans(entries []persistence.ScheduleEntry) map[string]calendar.DateRange {
	spans := make(map[string]calendar.DateRange)
	for _, entry := range entries {
		span, ok := spans[entry.EmployeeID]
		if !ok {
			spans[entry.EmployeeID] = calendar.SingleDay(entry.Date)
			continue
		}
		if entry.Date.Before(span.Start) {
			span.Start = entry.Date
		}
		if entry.Date.After(span.End) {
			span.End = entry.Date
		}
		spans[entry.EmployeeID] = span
	}
	return spans
}

func validateEntryInput(input ScheduleEntryInput) error {
	vErr := &ValidationError{}
	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if input.Date == (calendar.Date{}) {
		vErr.add("date", "date is required")
	}
	if _, err := calendar.DurationHours(input.Start, input.End, input.CrossesMidnight); err != nil {
		vErr.add("time", "end time must be after start time")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
