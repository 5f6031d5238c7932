package persistence

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
)

// Employee is the catalog record for a staff member.
type Employee struct {
	ID            string
	Name          string
	Email         string
	Qualification string
	WeeklyHours   decimal.Decimal
	Available     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Project is a client engagement employees are assigned to.
type Project struct {
	ID           string
	Name         string
	Description  *string
	Requirements []StaffingRequirement
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StaffingRequirement declares how many employees of a qualification a
// project needs on a given date.
type StaffingRequirement struct {
	ID            string
	ProjectID     string
	Date          calendar.Date
	Qualification string
	Required      int
}

// ScheduleEntry is a time-bounded booking of an employee on a date.
type ScheduleEntry struct {
	ID              string
	EmployeeID      string
	Date            calendar.Date
	Start           calendar.ClockTime
	End             calendar.ClockTime
	CrossesMidnight bool
	ProjectID       *string
	TeamID          *string
	StatusCode      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// VacationRequest is an inclusive date-range absence request with an
// approval workflow status.
type VacationRequest struct {
	ID         string
	EmployeeID string
	StartDate  calendar.Date
	EndDate    calendar.Date
	Type       string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProjectAssignment allocates employee capacity to a project over a date
// range; EndDate nil means open-ended.
type ProjectAssignment struct {
	ID          string
	EmployeeID  string
	ProjectID   string
	StartDate   calendar.Date
	EndDate     *calendar.Date
	HoursPerDay *decimal.Decimal
	Percent     *decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkloadRecord captures planned and optionally actual hours for one
// employee-day. WeekNumber is the ISO-8601 week of Date, validated upstream.
type WorkloadRecord struct {
	ID           string
	EmployeeID   string
	Date         calendar.Date
	WeekNumber   int
	PlannedHours decimal.Decimal
	ActualHours  *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Alert is a materialized alert row managed through reconciliation.
type Alert struct {
	ID              string
	CauseKey        string
	Type            string
	Priority        string
	Title           string
	Message         string
	EmployeeID      *string
	ProjectID       *string
	ScheduleEntryID *string
	Status          string
	AcknowledgedAt  *time.Time
	ResolvedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Session is an authentication session issued to an employee account.
type Session struct {
	ID         string
	EmployeeID string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	RevokedAt  *time.Time
}

// Credentials are the authentication attributes stored for an employee.
type Credentials struct {
	EmployeeID   string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
}
