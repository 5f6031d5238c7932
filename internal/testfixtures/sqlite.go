package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// storage instance for integration-style persistence tests. All repository
// fields share one store, so writes through one are visible through the
// others.
type SQLiteHarness struct {
	Employees   persistence.EmployeeRepository
	Projects    persistence.ProjectRepository
	Entries     persistence.ScheduleEntryRepository
	Vacations   persistence.VacationRepository
	Assignments persistence.AssignmentRepository
	Workloads   persistence.WorkloadRepository
	Alerts      persistence.AlertRepository
	Sessions    persistence.SessionRepository
	Credentials persistence.CredentialRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "planner.db")

	storage, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Employees:   storage.Employees(),
		Projects:    storage.Projects(),
		Entries:     storage.ScheduleEntries(),
		Vacations:   storage.Vacations(),
		Assignments: storage.Assignments(),
		Workloads:   storage.Workloads(),
		Alerts:      storage.Alerts(),
		Sessions:    storage.Sessions(),
		Credentials: storage.Credentials(),
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
