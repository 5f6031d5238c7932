// Package sqlite implements the persistence repositories on SQLite via the
// pure-Go modernc.org driver.
package sqlite

import (
	"context"
	"fmt"
)

// Store owns the connection pool and exposes the typed repositories.
type Store struct {
	pool *ConnectionPool

	employees   *EmployeeRepository
	projects    *ProjectRepository
	entries     *ScheduleEntryRepository
	vacations   *VacationRepository
	assignments *AssignmentRepository
	workloads   *WorkloadRepository
	alerts      *AlertRepository
	sessions    *SessionRepository
	credentials *CredentialRepository
}

// Open connects to the database identified by dsn.
func Open(dsn string) (*Store, error) {
	pool, err := NewConnectionPool(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{
		pool:        pool,
		employees:   NewEmployeeRepository(pool),
		projects:    NewProjectRepository(pool),
		entries:     NewScheduleEntryRepository(pool),
		vacations:   NewVacationRepository(pool),
		assignments: NewAssignmentRepository(pool),
		workloads:   NewWorkloadRepository(pool),
		alerts:      NewAlertRepository(pool),
		sessions:    NewSessionRepository(pool),
		credentials: NewCredentialRepository(pool),
	}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the schema. Statements are idempotent so repeated startup
// runs are safe.
func (s *Store) Migrate(ctx context.Context) error {
	for i, statement := range schemaStatements {
		if _, err := s.pool.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}
	return nil
}

func (s *Store) Employees() *EmployeeRepository            { return s.employees }
func (s *Store) Projects() *ProjectRepository              { return s.projects }
func (s *Store) ScheduleEntries() *ScheduleEntryRepository { return s.entries }
func (s *Store) Vacations() *VacationRepository            { return s.vacations }
func (s *Store) Assignments() *AssignmentRepository        { return s.assignments }
func (s *Store) Workloads() *WorkloadRepository            { return s.workloads }
func (s *Store) Alerts() *AlertRepository                  { return s.alerts }
func (s *Store) Sessions() *SessionRepository              { return s.sessions }
func (s *Store) Credentials() *CredentialRepository        { return s.credentials }

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		qualification TEXT NOT NULL DEFAULT '',
		weekly_hours TEXT NOT NULL DEFAULT '0',
		available INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS staffing_requirements (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		qualification TEXT NOT NULL,
		required INTEGER NOT NULL CHECK (required > 0),
		UNIQUE (project_id, date, qualification)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		crosses_midnight INTEGER NOT NULL DEFAULT 0,
		project_id TEXT REFERENCES projects(id),
		team_id TEXT,
		status_code TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_entries_employee_date
		ON schedule_entries (employee_id, date)`,
	`CREATE TABLE IF NOT EXISTS vacation_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'ANNUAL',
		status TEXT NOT NULL DEFAULT 'PENDING',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (end_date >= start_date)
	)`,
	`CREATE TABLE IF NOT EXISTS project_assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		start_date TEXT NOT NULL,
		end_date TEXT,
		hours_per_day TEXT,
		percent TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_assignments_employee
		ON project_assignments (employee_id, start_date)`,
	`CREATE TABLE IF NOT EXISTS workload_records (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		week_number INTEGER NOT NULL,
		planned_hours TEXT NOT NULL,
		actual_hours TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (employee_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		cause_key TEXT NOT NULL,
		type TEXT NOT NULL,
		priority TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		employee_id TEXT,
		project_id TEXT,
		schedule_entry_id TEXT,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		acknowledged_at TEXT,
		resolved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open_cause
		ON alerts (cause_key) WHERE status != 'RESOLVED'`,
	`CREATE TABLE IF NOT EXISTS credentials (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id) ON DELETE CASCADE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		disabled INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		revoked_at TEXT
	)`,
}
