package persistence

import (
	"context"
	"time"

	"github.com/example/resource-planner/internal/calendar"
)

// EmployeeRepository exposes CRUD operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// ProjectRepository exposes CRUD operations for projects and their staffing
// requirements.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project Project) error
	UpdateProject(ctx context.Context, project Project) error
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ScheduleEntryFilter narrows schedule entry queries.
type ScheduleEntryFilter struct {
	EmployeeID *string
	ProjectID  *string
	From       *calendar.Date
	To         *calendar.Date
}

// ScheduleEntryRepository stores schedule entries.
type ScheduleEntryRepository interface {
	CreateEntry(ctx context.Context, entry ScheduleEntry) error
	UpdateEntry(ctx context.Context, entry ScheduleEntry) error
	GetEntry(ctx context.Context, id string) (ScheduleEntry, error)
	ListEntries(ctx context.Context, filter ScheduleEntryFilter) ([]ScheduleEntry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// VacationFilter narrows vacation request queries.
type VacationFilter struct {
	EmployeeID *string
	Statuses   []string
	From       *calendar.Date
	To         *calendar.Date
}

// VacationRepository stores vacation requests.
type VacationRepository interface {
	CreateVacation(ctx context.Context, vacation VacationRequest) error
	UpdateVacation(ctx context.Context, vacation VacationRequest) error
	GetVacation(ctx context.Context, id string) (VacationRequest, error)
	ListVacations(ctx context.Context, filter VacationFilter) ([]VacationRequest, error)
	DeleteVacation(ctx context.Context, id string) error
}

// AssignmentFilter narrows project assignment queries.
type AssignmentFilter struct {
	EmployeeID *string
	ProjectID  *string
	ActiveOn   *calendar.Date
}

// AssignmentRepository stores project assignments.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment ProjectAssignment) error
	UpdateAssignment(ctx context.Context, assignment ProjectAssignment) error
	GetAssignment(ctx context.Context, id string) (ProjectAssignment, error)
	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]ProjectAssignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// WorkloadFilter narrows workload record queries.
type WorkloadFilter struct {
	EmployeeID *string
	From       *calendar.Date
	To         *calendar.Date
}

// WorkloadRepository stores planned/actual hour records.
type WorkloadRepository interface {
	UpsertRecord(ctx context.Context, record WorkloadRecord) error
	ListRecords(ctx context.Context, filter WorkloadFilter) ([]WorkloadRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

// AlertFilter narrows alert queries.
type AlertFilter struct {
	Statuses   []string
	EmployeeID *string
	ProjectID  *string
}

// AlertRepository stores materialized alerts. Reconciliation passes must be
// serialized per cause key; UpdateAlert inside a transaction provides that
// boundary.
type AlertRepository interface {
	CreateAlert(ctx context.Context, alert Alert) error
	UpdateAlert(ctx context.Context, alert Alert) error
	GetAlert(ctx context.Context, id string) (Alert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]Alert, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// CredentialRepository stores authentication credentials.
type CredentialRepository interface {
	UpsertCredentials(ctx context.Context, credentials Credentials) error
	GetCredentialsByEmail(ctx context.Context, email string) (Credentials, error)
	GetCredentialsByEmployee(ctx context.Context, employeeID string) (Credentials, error)
}
