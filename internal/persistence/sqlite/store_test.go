package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
)

func setupStoreTest(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return store
}

func seedEmployee(t *testing.T, store *Store, id string) {
	t.Helper()

	err := store.Employees().CreateEmployee(context.Background(), persistence.Employee{
		ID:            id,
		Name:          "Employee " + id,
		Email:         id + "@example.com",
		Qualification: "engineer",
		WeeklyHours:   decimal.NewFromInt(40),
		Available:     true,
	})
	if err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}
}

func seedProject(t *testing.T, store *Store, id string) {
	t.Helper()

	err := store.Projects().CreateProject(context.Background(), persistence.Project{
		ID:   id,
		Name: "Project " + id,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
}

func TestEmployeeRepository_RoundTrip(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")

	retrieved, err := store.Employees().GetEmployee(ctx, "emp1")
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if retrieved.Email != "emp1@example.com" {
		t.Errorf("Expected email 'emp1@example.com', got '%s'", retrieved.Email)
	}
	if !retrieved.WeeklyHours.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected weekly hours 40, got %s", retrieved.WeeklyHours)
	}
	if !retrieved.Available {
		t.Error("Expected employee to be available")
	}
}

func TestEmployeeRepository_DuplicateEmail(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")

	err := store.Employees().CreateEmployee(ctx, persistence.Employee{
		ID:          "emp2",
		Name:        "Duplicate",
		Email:       "emp1@example.com",
		WeeklyHours: decimal.NewFromInt(40),
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate, got %v", err)
	}
}

func TestEmployeeRepository_GetMissing(t *testing.T) {
	store := setupStoreTest(t)

	_, err := store.Employees().GetEmployee(context.Background(), "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestProjectRepository_RequirementsReplaced(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	project := persistence.Project{
		ID:   "proj1",
		Name: "Platform",
		Requirements: []persistence.StaffingRequirement{
			{ID: "req1", ProjectID: "proj1", Date: calendar.NewDate(2024, time.March, 11), Qualification: "engineer", Required: 2},
		},
	}
	if err := store.Projects().CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	project.Requirements = []persistence.StaffingRequirement{
		{ID: "req2", ProjectID: "proj1", Date: calendar.NewDate(2024, time.March, 11), Qualification: "designer", Required: 1},
	}
	if err := store.Projects().UpdateProject(ctx, project); err != nil {
		t.Fatalf("UpdateProject failed: %v", err)
	}

	retrieved, err := store.Projects().GetProject(ctx, "proj1")
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if len(retrieved.Requirements) != 1 {
		t.Fatalf("Expected 1 requirement after replacement, got %d", len(retrieved.Requirements))
	}
	if retrieved.Requirements[0].Qualification != "designer" {
		t.Errorf("Expected qualification 'designer', got '%s'", retrieved.Requirements[0].Qualification)
	}
}

func TestScheduleEntryRepository_ListByRange(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")
	seedProject(t, store, "proj1")

	for i, day := range []int{10, 12, 20} {
		entry := persistence.ScheduleEntry{
			ID:         "entry" + string(rune('a'+i)),
			EmployeeID: "emp1",
			ProjectID:  strPtr("proj1"),
			Date:       calendar.NewDate(2024, time.March, day),
			Start:      calendar.ClockTime{Hour: 9},
			End:        calendar.ClockTime{Hour: 17},
			StatusCode: "CONFIRMED",
		}
		if err := store.ScheduleEntries().CreateEntry(ctx, entry); err != nil {
			t.Fatalf("CreateEntry failed: %v", err)
		}
	}

	from := calendar.NewDate(2024, time.March, 11)
	to := calendar.NewDate(2024, time.March, 15)
	entries, err := store.ScheduleEntries().ListEntries(ctx, persistence.ScheduleEntryFilter{
		EmployeeID: strPtr("emp1"),
		From:       &from,
		To:         &to,
	})
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry in range, got %d", len(entries))
	}
	if entries[0].Date.Day != 12 {
		t.Errorf("Expected entry on day 12, got %d", entries[0].Date.Day)
	}
}

func TestVacationRepository_FilterByStatus(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")

	vacations := []persistence.VacationRequest{
		{ID: "vac1", EmployeeID: "emp1", StartDate: calendar.NewDate(2024, time.March, 4), EndDate: calendar.NewDate(2024, time.March, 8), Status: "APPROVED"},
		{ID: "vac2", EmployeeID: "emp1", StartDate: calendar.NewDate(2024, time.April, 1), EndDate: calendar.NewDate(2024, time.April, 5), Status: "PENDING"},
		{ID: "vac3", EmployeeID: "emp1", StartDate: calendar.NewDate(2024, time.May, 6), EndDate: calendar.NewDate(2024, time.May, 10), Status: "REJECTED"},
	}
	for _, vacation := range vacations {
		if err := store.Vacations().CreateVacation(ctx, vacation); err != nil {
			t.Fatalf("CreateVacation failed: %v", err)
		}
	}

	listed, err := store.Vacations().ListVacations(ctx, persistence.VacationFilter{
		EmployeeID: strPtr("emp1"),
		Statuses:   []string{"APPROVED", "PENDING"},
	})
	if err != nil {
		t.Fatalf("ListVacations failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("Expected 2 vacations, got %d", len(listed))
	}
}

func TestAssignmentRepository_ActiveOn(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")
	seedProject(t, store, "proj1")

	hours := decimal.NewFromInt(4)
	openEnded := persistence.ProjectAssignment{
		ID:          "asg1",
		EmployeeID:  "emp1",
		ProjectID:   "proj1",
		StartDate:   calendar.NewDate(2024, time.March, 1),
		HoursPerDay: &hours,
	}
	ended := persistence.ProjectAssignment{
		ID:         "asg2",
		EmployeeID: "emp1",
		ProjectID:  "proj1",
		StartDate:  calendar.NewDate(2024, time.January, 1),
		EndDate:    datePointer(calendar.NewDate(2024, time.February, 1)),
	}
	for _, assignment := range []persistence.ProjectAssignment{openEnded, ended} {
		if err := store.Assignments().CreateAssignment(ctx, assignment); err != nil {
			t.Fatalf("CreateAssignment failed: %v", err)
		}
	}

	activeOn := calendar.NewDate(2024, time.March, 15)
	assignments, err := store.Assignments().ListAssignments(ctx, persistence.AssignmentFilter{
		EmployeeID: strPtr("emp1"),
		ActiveOn:   &activeOn,
	})
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("Expected 1 active assignment, got %d", len(assignments))
	}
	if assignments[0].ID != "asg1" {
		t.Errorf("Expected assignment 'asg1', got '%s'", assignments[0].ID)
	}
	if assignments[0].HoursPerDay == nil || !assignments[0].HoursPerDay.Equal(hours) {
		t.Errorf("Expected hours per day 4, got %v", assignments[0].HoursPerDay)
	}
}

func TestWorkloadRepository_UpsertReplaces(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")

	seven := decimal.NewFromInt(7)
	record := persistence.WorkloadRecord{
		ID:           "wl1",
		EmployeeID:   "emp1",
		Date:         calendar.NewDate(2024, time.March, 11),
		WeekNumber:   11,
		PlannedHours: decimal.NewFromInt(8),
		ActualHours:  &seven,
	}
	if err := store.Workloads().UpsertRecord(ctx, record); err != nil {
		t.Fatalf("UpsertRecord failed: %v", err)
	}

	nine := decimal.NewFromInt(9)
	record.ActualHours = &nine
	if err := store.Workloads().UpsertRecord(ctx, record); err != nil {
		t.Fatalf("Second UpsertRecord failed: %v", err)
	}

	records, err := store.Workloads().ListRecords(ctx, persistence.WorkloadFilter{EmployeeID: strPtr("emp1")})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record after upsert, got %d", len(records))
	}
	if records[0].ActualHours == nil || !records[0].ActualHours.Equal(nine) {
		t.Errorf("Expected actual hours 9, got %s", records[0].ActualHours)
	}
}

func TestAlertRepository_CauseKeyUnique(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	alert := persistence.Alert{
		ID:       "alert1",
		CauseKey: "OVERLAP|emp1|entry1|2024-03-11",
		Type:     "OVERLAP",
		Priority: "HIGH",
		Title:    "Schedule overlap",
		Message:  "Entries overlap on 2024-03-11",
		Status:   "ACTIVE",
	}
	if err := store.Alerts().CreateAlert(ctx, alert); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	alert.ID = "alert2"
	err := store.Alerts().CreateAlert(ctx, alert)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("Expected ErrDuplicate for same cause key, got %v", err)
	}

	// Resolving the open alert frees the cause key for a later recurrence.
	resolved, err := store.Alerts().GetAlert(ctx, "alert1")
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	resolvedAt := time.Now().UTC()
	resolved.Status = "RESOLVED"
	resolved.ResolvedAt = &resolvedAt
	if err := store.Alerts().UpdateAlert(ctx, resolved); err != nil {
		t.Fatalf("UpdateAlert failed: %v", err)
	}
	if err := store.Alerts().CreateAlert(ctx, alert); err != nil {
		t.Fatalf("Expected recurrence create to succeed after resolution, got %v", err)
	}
}

func TestAlertRepository_ListByStatus(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	alerts := []persistence.Alert{
		{ID: "alert1", CauseKey: "k1", Type: "OVERLAP", Priority: "HIGH", Title: "a", Message: "m", Status: "ACTIVE"},
		{ID: "alert2", CauseKey: "k2", Type: "OVERLOAD", Priority: "MEDIUM", Title: "b", Message: "m", Status: "RESOLVED"},
	}
	for _, alert := range alerts {
		if err := store.Alerts().CreateAlert(ctx, alert); err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}
	}

	active, err := store.Alerts().ListAlerts(ctx, persistence.AlertFilter{Statuses: []string{"ACTIVE"}})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("Expected 1 active alert, got %d", len(active))
	}
	if active[0].ID != "alert1" {
		t.Errorf("Expected alert 'alert1', got '%s'", active[0].ID)
	}
}

func TestSessionRepository_RevokeAndSweep(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")

	session := persistence.Session{
		ID:         "sess1",
		EmployeeID: "emp1",
		Token:      "token1",
		ExpiresAt:  time.Now().UTC().Add(time.Hour),
	}
	if _, err := store.Sessions().CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	revoked, err := store.Sessions().RevokeSession(ctx, "token1", time.Now().UTC())
	if err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if revoked.RevokedAt == nil {
		t.Fatal("Expected revoked session to carry a revocation time")
	}

	// Second revocation finds no live row.
	if _, err := store.Sessions().RevokeSession(ctx, "token1", time.Now().UTC()); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on repeat revocation, got %v", err)
	}

	if err := store.Sessions().DeleteExpiredSessions(ctx, time.Now().UTC()); err != nil {
		t.Fatalf("DeleteExpiredSessions failed: %v", err)
	}
	if _, err := store.Sessions().GetSession(ctx, "token1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected revoked session to be swept, got %v", err)
	}
}

func TestCredentialRepository_Upsert(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	seedEmployee(t, store, "emp1")

	credentials := persistence.Credentials{
		EmployeeID:   "emp1",
		Email:        "emp1@example.com",
		PasswordHash: "hash-v1",
	}
	if err := store.Credentials().UpsertCredentials(ctx, credentials); err != nil {
		t.Fatalf("UpsertCredentials failed: %v", err)
	}

	credentials.PasswordHash = "hash-v2"
	credentials.IsAdmin = true
	if err := store.Credentials().UpsertCredentials(ctx, credentials); err != nil {
		t.Fatalf("Second UpsertCredentials failed: %v", err)
	}

	retrieved, err := store.Credentials().GetCredentialsByEmail(ctx, "emp1@example.com")
	if err != nil {
		t.Fatalf("GetCredentialsByEmail failed: %v", err)
	}
	if retrieved.PasswordHash != "hash-v2" {
		t.Errorf("Expected replaced hash, got '%s'", retrieved.PasswordHash)
	}
	if !retrieved.IsAdmin {
		t.Error("Expected admin flag to survive the upsert")
	}

	byEmployee, err := store.Credentials().GetCredentialsByEmployee(ctx, "emp1")
	if err != nil {
		t.Fatalf("GetCredentialsByEmployee failed: %v", err)
	}
	if byEmployee.Email != "emp1@example.com" {
		t.Errorf("Expected lookup by employee to return the same row, got '%s'", byEmployee.Email)
	}
}

func strPtr(s string) *string { return &s }

func datePointer(d calendar.Date) *calendar.Date { return &d }
