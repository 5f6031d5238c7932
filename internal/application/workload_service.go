package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/workload"
)

// WorkloadService records planned/actual hours and builds utilization
// reports at daily, weekly or monthly granularity.
type WorkloadService struct {
	workloads   persistence.WorkloadRepository
	employees   persistence.EmployeeRepository
	thresholds  workload.Thresholds
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewWorkloadService wires dependencies for workload operations.
func NewWorkloadService(workloads persistence.WorkloadRepository, employees persistence.EmployeeRepository, thresholds workload.Thresholds, idGenerator func() string, now func() time.Time) *WorkloadService {
	return NewWorkloadServiceWithLogger(workloads, employees, thresholds, idGenerator, now, nil)
}

// NewWorkloadServiceWithLogger wires dependencies including a base logger.
func NewWorkloadServiceWithLogger(workloads persistence.WorkloadRepository, employees persistence.EmployeeRepository, thresholds workload.Thresholds, idGenerator func() string, now func() time.Time, logger *slog.Logger) *WorkloadService {
	if thresholds.Overloaded.IsZero() && thresholds.Underutilized.IsZero() {
		thresholds = workload.DefaultThresholds()
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &WorkloadService{
		workloads:   workloads,
		employees:   employees,
		thresholds:  thresholds,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// RecordHours stores one employee-day of planned and optionally actual
// hours. Recording the same day again replaces the previous record. The
// supplied week number must match the ISO week of the date.
func (s *WorkloadService) RecordHours(ctx context.Context, params RecordWorkloadParams) (persistence.WorkloadRecord, error) {
	if s == nil {
		return persistence.WorkloadRecord{}, fmt.Errorf("WorkloadService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "workload", "record")

	input := params.Input
	if input.EmployeeID == "" {
		input.EmployeeID = params.Principal.EmployeeID
	}
	if input.EmployeeID != params.Principal.EmployeeID && !params.Principal.IsAdmin {
		return persistence.WorkloadRecord{}, ErrUnauthorized
	}
	if err := validateWorkloadInput(input); err != nil {
		return persistence.WorkloadRecord{}, err
	}
	if _, err := s.employees.GetEmployee(ctx, input.EmployeeID); err != nil {
		return persistence.WorkloadRecord{}, mapRepositoryError(err)
	}

	record := persistence.WorkloadRecord{
		ID:           s.idGenerator(),
		EmployeeID:   input.EmployeeID,
		Date:         input.Date,
		WeekNumber:   input.WeekNumber,
		PlannedHours: input.PlannedHours,
		ActualHours:  input.ActualHours,
	}
	if err := s.workloads.UpsertRecord(ctx, record); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "workload record failed", "error_kind", ErrorKind(err))
		return persistence.WorkloadRecord{}, err
	}

	logger.InfoContext(ctx, "workload recorded",
		"employee_id", record.EmployeeID, "date", record.Date.String())
	return record, nil
}

// Aggregate builds the report for one employee over an inclusive range at
// the requested granularity. Breaches always come from the weekly rollup.
func (s *WorkloadService) Aggregate(ctx context.Context, params AggregateWorkloadParams) (WorkloadReport, error) {
	if s == nil {
		return WorkloadReport{}, fmt.Errorf("WorkloadService is nil")
	}

	dayRange, err := calendar.NewDateRange(params.From, params.To)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("range", "end date must not precede start date")
		return WorkloadReport{}, vErr
	}
	granularity := params.Granularity
	if granularity == "" {
		granularity = GranularityDaily
	}
	switch granularity {
	case GranularityDaily, GranularityWeekly, GranularityMonthly:
	default:
		vErr := &ValidationError{}
		vErr.add("granularity", "granularity must be daily, weekly or monthly")
		return WorkloadReport{}, vErr
	}

	employee, err := s.employees.GetEmployee(ctx, params.EmployeeID)
	if err != nil {
		return WorkloadReport{}, mapRepositoryError(err)
	}

	stored, err := s.workloads.ListRecords(ctx, persistence.WorkloadFilter{
		EmployeeID: &params.EmployeeID,
		From:       &params.From,
		To:         &params.To,
	})
	if err != nil {
		return WorkloadReport{}, mapRepositoryError(err)
	}

	records := make([]workload.Record, 0, len(stored))
	for _, record := range stored {
		records = append(records, workload.Record{
			EmployeeID: record.EmployeeID,
			Date:       record.Date,
			Planned:    record.PlannedHours,
			Actual:     record.ActualHours,
		})
	}

	capacity := dailyCapacityOf(employee)
	daily, err := workload.Aggregate(records, capacity, dayRange)
	if err != nil {
		return WorkloadReport{}, err
	}
	weekly := workload.RollupWeekly(daily, capacity)

	report := WorkloadReport{
		Breaches: workload.Classify(weekly, s.thresholds),
	}
	switch granularity {
	case GranularityDaily:
		report.Daily = daily
	case GranularityWeekly:
		report.Weekly = weekly
	case GranularityMonthly:
		report.Monthly = workload.RollupMonthly(daily, capacity)
	}
	return report, nil
}

// WeeklyBreaches classifies one employee's weeks in the range against the
// configured thresholds. The alert reevaluation pass consumes this.
func (s *WorkloadService) WeeklyBreaches(ctx context.Context, employeeID string, from, to calendar.Date) ([]workload.Breach, error) {
	if s == nil {
		return nil, fmt.Errorf("WorkloadService is nil")
	}
	report, err := s.Aggregate(ctx, AggregateWorkloadParams{
		Principal:   Principal{EmployeeID: employeeID, IsAdmin: true},
		EmployeeID:  employeeID,
		From:        from,
		To:          to,
		Granularity: GranularityWeekly,
	})
	if err != nil {
		return nil, err
	}
	breaches := append([]workload.Breach{}, report.Breaches.Overloaded...)
	breaches = append(breaches, report.Breaches.Underutilized...)
	return breaches, nil
}

func dailyCapacityOf(employee persistence.Employee) decimal.Decimal {
	if employee.WeeklyHours.IsPositive() {
		return employee.WeeklyHours.Div(decimal.NewFromInt(5))
	}
	return decimal.NewFromInt(8)
}

func validateWorkloadInput(input WorkloadRecordInput) error {
	vErr := &ValidationError{}
	if input.EmployeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if input.Date == (calendar.Date{}) {
		vErr.add("date", "date is required")
	} else {
		_, isoWeek := calendar.WeekOf(input.Date)
		if input.WeekNumber != isoWeek {
			vErr.add("week_number", fmt.Sprintf("week number must be the ISO week of the date (%d)", isoWeek))
		}
	}
	if input.PlannedHours.LessThan(decimal.Zero) {
		vErr.add("planned_hours", "planned hours must not be negative")
	}
	if input.ActualHours != nil && input.ActualHours.LessThan(decimal.Zero) {
		vErr.add("actual_hours", "actual hours must not be negative")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
