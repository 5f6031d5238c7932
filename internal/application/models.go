package application

import (
	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/workload"
)

// Principal represents the authenticated employee invoking a service method.
type Principal struct {
	EmployeeID string
	IsAdmin    bool
}

// EmployeeInput captures caller provided employee fields.
type EmployeeInput struct {
	Name          string
	Email         string
	Qualification string
	WeeklyHours   decimal.Decimal
	Available     bool
}

// CreateEmployeeParams wraps the data required to create an employee.
type CreateEmployeeParams struct {
	Principal Principal
	Input     EmployeeInput
}

// UpdateEmployeeParams wraps the data required to update an employee.
type UpdateEmployeeParams struct {
	Principal  Principal
	EmployeeID string
	Input      EmployeeInput
}

// RequirementInput captures one staffing requirement of a project.
type RequirementInput struct {
	Date          calendar.Date
	Qualification string
	Required      int
}

// ProjectInput captures caller provided project fields.
type ProjectInput struct {
	Name         string
	Description  *string
	Requirements []RequirementInput
}

// CreateProjectParams wraps the data required to create a project.
type CreateProjectParams struct {
	Principal Principal
	Input     ProjectInput
}

// UpdateProjectParams wraps the data required to update a project.
type UpdateProjectParams struct {
	Principal Principal
	ProjectID string
	Input     ProjectInput
}

// ScheduleEntryInput captures caller provided schedule entry fields.
type ScheduleEntryInput struct {
	EmployeeID      string
	Date            calendar.Date
	Start           calendar.ClockTime
	End             calendar.ClockTime
	CrossesMidnight bool
	ProjectID       *string
	TeamID          *string
	StatusCode      string
}

// CreateScheduleEntryParams wraps the data required to create a schedule entry.
type CreateScheduleEntryParams struct {
	Principal Principal
	Input     ScheduleEntryInput
}

// UpdateScheduleEntryParams wraps the data required to update a schedule entry.
type UpdateScheduleEntryParams struct {
	Principal Principal
	EntryID   string
	Input     ScheduleEntryInput
}

// ListScheduleEntriesParams wraps the data required to list schedule entries.
type ListScheduleEntriesParams struct {
	Principal  Principal
	EmployeeID *string
	ProjectID  *string
	From       *calendar.Date
	To         *calendar.Date
}

// AvailabilityParams identifies the employee and range to resolve.
type AvailabilityParams struct {
	Principal  Principal
	EmployeeID string
	From       calendar.Date
	To         calendar.Date
}

// ConflictWarning is the caller-facing view of one detected conflict.
// Warnings advise; they never block the write that produced them.
type ConflictWarning struct {
	Kind         string
	Severity     string
	EmployeeID   string
	ProjectID    string
	Date         calendar.Date
	ExistingKind string
	ExistingID   string
	Message      string
}

// VacationInput captures caller provided vacation request fields.
type VacationInput struct {
	EmployeeID string
	Start      calendar.Date
	End        calendar.Date
	Type       string
}

// RequestVacationParams wraps the data required to file a vacation request.
type RequestVacationParams struct {
	Principal Principal
	Input     VacationInput
}

// VacationDecisionParams identifies the request an approve/reject/cancel
// operation acts on.
type VacationDecisionParams struct {
	Principal  Principal
	VacationID string
}

// AssignmentInput captures caller provided project assignment fields.
type AssignmentInput struct {
	EmployeeID  string
	ProjectID   string
	Start       calendar.Date
	End         *calendar.Date
	HoursPerDay *decimal.Decimal
	Percent     *decimal.Decimal
}

// CreateAssignmentParams wraps the data required to create an assignment.
type CreateAssignmentParams struct {
	Principal Principal
	Input     AssignmentInput
}

// EndAssignmentParams closes an open-ended assignment on a date.
type EndAssignmentParams struct {
	Principal    Principal
	AssignmentID string
	End          calendar.Date
}

// WorkloadRecordInput captures one employee-day of planned and actual hours.
type WorkloadRecordInput struct {
	EmployeeID   string
	Date         calendar.Date
	WeekNumber   int
	PlannedHours decimal.Decimal
	ActualHours  *decimal.Decimal
}

// RecordWorkloadParams wraps the data required to record workload hours.
type RecordWorkloadParams struct {
	Principal Principal
	Input     WorkloadRecordInput
}

// Granularity selects the aggregation level of a workload report.
type Granularity string

const (
	// GranularityDaily reports one summary per day with data.
	GranularityDaily Granularity = "daily"
	// GranularityWeekly rolls daily summaries up into ISO weeks.
	GranularityWeekly Granularity = "weekly"
	// GranularityMonthly rolls daily summaries up into calendar months.
	GranularityMonthly Granularity = "monthly"
)

// AggregateWorkloadParams wraps the data required to build a workload report.
type AggregateWorkloadParams struct {
	Principal   Principal
	EmployeeID  string
	From        calendar.Date
	To          calendar.Date
	Granularity Granularity
}

// WorkloadReport is the aggregation output at the requested granularity.
// Only the slice matching the granularity is populated; Breaches always
// reflect the weekly classification.
type WorkloadReport struct {
	Daily    []workload.Summary
	Weekly   []workload.WeeklySummary
	Monthly  []workload.MonthlySummary
	Breaches workload.Classification
}

// ListAlertsParams wraps the data required to list alerts.
type ListAlertsParams struct {
	Principal  Principal
	Statuses   []string
	EmployeeID *string
	ProjectID  *string
}

// AlertActionParams identifies the alert an acknowledge/resolve acts on.
type AlertActionParams struct {
	Principal Principal
	AlertID   string
}

// AuthenticateParams captures the data required to authenticate an employee.
type AuthenticateParams struct {
	Email    string
	Password string
}
