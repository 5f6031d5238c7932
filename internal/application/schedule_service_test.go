package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

func marchDate(day int) calendar.Date {
	return calendar.NewDate(2024, time.March, day)
}

func fullTimeEmployee(id string) persistence.Employee {
	return persistence.Employee{
		ID:          id,
		Name:        "Employee " + id,
		Email:       id + "@example.com",
		WeeklyHours: decimal.NewFromInt(40),
		Available:   true,
	}
}

func newScheduleServiceForTest(employees *memEmployees, entries *memEntries, vacations *memVacations, assignments *memAssignments) *ScheduleService {
	return NewScheduleService(employees, entries, vacations, assignments, sequenceID("entry"), func() time.Time {
		return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestScheduleService_CreateEntry_ReturnsOverlapWarning(t *testing.T) {
	existing := persistence.ScheduleEntry{
		ID:         "existing1",
		EmployeeID: "emp1",
		Date:       marchDate(11),
		Start:      calendar.ClockTime{Hour: 9},
		End:        calendar.ClockTime{Hour: 13},
		StatusCode: "ACTIVE",
	}
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1")),
		newMemEntries(existing),
		newMemVacations(),
		newMemAssignments(),
	)

	created, warnings, err := service.CreateEntry(context.Background(), CreateScheduleEntryParams{
		Principal: Principal{EmployeeID: "emp1"},
		Input: ScheduleEntryInput{
			EmployeeID: "emp1",
			Date:       marchDate(11),
			Start:      calendar.ClockTime{Hour: 12},
			End:        calendar.ClockTime{Hour: 16},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected created entry to have an id")
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Kind != string(planning.ConflictOverlap) {
		t.Errorf("Expected OVERLAP warning, got %s", warnings[0].Kind)
	}
	if warnings[0].Severity != string(planning.SeverityHigh) {
		t.Errorf("Expected HIGH severity, got %s", warnings[0].Severity)
	}
	if warnings[0].ExistingID != "existing1" {
		t.Errorf("Expected warning to reference existing1, got %s", warnings[0].ExistingID)
	}
}

func TestScheduleService_CreateEntry_WarningsDoNotBlockWrite(t *testing.T) {
	entries := newMemEntries(persistence.ScheduleEntry{
		ID:         "existing1",
		EmployeeID: "emp1",
		Date:       marchDate(11),
		Start:      calendar.ClockTime{Hour: 9},
		End:        calendar.ClockTime{Hour: 17},
		StatusCode: "ACTIVE",
	})
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1")),
		entries,
		newMemVacations(),
		newMemAssignments(),
	)

	created, warnings, err := service.CreateEntry(context.Background(), CreateScheduleEntryParams{
		Principal: Principal{EmployeeID: "emp1"},
		Input: ScheduleEntryInput{
			EmployeeID: "emp1",
			Date:       marchDate(11),
			Start:      calendar.ClockTime{Hour: 10},
			End:        calendar.ClockTime{Hour: 12},
		},
	})
	if err != nil {
		t.Fatalf("CreateEntry failed: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("Expected warnings for fully overlapped entry")
	}
	if _, err := entries.GetEntry(context.Background(), created.ID); err != nil {
		t.Fatalf("Expected entry to be persisted despite warnings: %v", err)
	}
}

func TestScheduleService_CreateEntry_InvalidTimeOrder(t *testing.T) {
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1")),
		newMemEntries(),
		newMemVacations(),
		newMemAssignments(),
	)

	_, _, err := service.CreateEntry(context.Background(), CreateScheduleEntryParams{
		Principal: Principal{EmployeeID: "emp1"},
		Input: ScheduleEntryInput{
			EmployeeID: "emp1",
			Date:       marchDate(11),
			Start:      calendar.ClockTime{Hour: 16},
			End:        calendar.ClockTime{Hour: 9},
		},
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["time"]; !ok {
		t.Errorf("Expected time field error, got %v", vErr.FieldErrors)
	}
}

func TestScheduleService_CreateEntry_ForOtherEmployeeRequiresAdmin(t *testing.T) {
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1"), fullTimeEmployee("emp2")),
		newMemEntries(),
		newMemVacations(),
		newMemAssignments(),
	)

	_, _, err := service.CreateEntry(context.Background(), CreateScheduleEntryParams{
		Principal: Principal{EmployeeID: "emp1"},
		Input: ScheduleEntryInput{
			EmployeeID: "emp2",
			Date:       marchDate(11),
			Start:      calendar.ClockTime{Hour: 9},
			End:        calendar.ClockTime{Hour: 10},
		},
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestScheduleService_UpdateEntry_DoesNotConflictWithItself(t *testing.T) {
	existing := persistence.ScheduleEntry{
		ID:         "entry1",
		EmployeeID: "emp1",
		Date:       marchDate(11),
		Start:      calendar.ClockTime{Hour: 9},
		End:        calendar.ClockTime{Hour: 13},
		StatusCode: "ACTIVE",
	}
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1")),
		newMemEntries(existing),
		newMemVacations(),
		newMemAssignments(),
	)

	updated, warnings, err := service.UpdateEntry(context.Background(), UpdateScheduleEntryParams{
		Principal: Principal{EmployeeID: "emp1"},
		EntryID:   "entry1",
		Input: ScheduleEntryInput{
			EmployeeID: "emp1",
			Date:       marchDate(11),
			Start:      calendar.ClockTime{Hour: 10},
			End:        calendar.ClockTime{Hour: 14},
		},
	})
	if err != nil {
		t.Fatalf("UpdateEntry failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings when only the entry itself occupies the slot, got %d", len(warnings))
	}
	if updated.Start != (calendar.ClockTime{Hour: 10}) {
		t.Errorf("Expected updated start 10:00, got %s", updated.Start)
	}
}

func TestScheduleService_ResolveAvailability_VacationWins(t *testing.T) {
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1")),
		newMemEntries(persistence.ScheduleEntry{
			ID:         "entry1",
			EmployeeID: "emp1",
			Date:       marchDate(12),
			Start:      calendar.ClockTime{Hour: 9},
			End:        calendar.ClockTime{Hour: 17},
			StatusCode: "ACTIVE",
		}),
		newMemVacations(persistence.VacationRequest{
			ID:         "vac1",
			EmployeeID: "emp1",
			StartDate:  marchDate(12),
			EndDate:    marchDate(13),
			Type:       "ANNUAL",
			Status:     "APPROVED",
		}),
		newMemAssignments(),
	)

	timeline, err := service.ResolveAvailability(context.Background(), AvailabilityParams{
		Principal:  Principal{EmployeeID: "emp1"},
		EmployeeID: "emp1",
		From:       marchDate(11),
		To:         marchDate(13),
	})
	if err != nil {
		t.Fatalf("ResolveAvailability failed: %v", err)
	}
	if len(timeline.Days) != 3 {
		t.Fatalf("Expected 3 days, got %d", len(timeline.Days))
	}

	day, ok := timeline.Day(marchDate(12))
	if !ok {
		t.Fatal("Expected day 12 in timeline")
	}
	if day.State != planning.StateOnVacation {
		t.Errorf("Expected ON_VACATION on day 12, got %s", day.State)
	}
	free, _ := timeline.Day(marchDate(11))
	if free.State != planning.StateFree {
		t.Errorf("Expected FREE on day 11, got %s", free.State)
	}
}

func TestScheduleService_ResolveAvailability_UnknownEmployee(t *testing.T) {
	service := newScheduleServiceForTest(newMemEmployees(), newMemEntries(), newMemVacations(), newMemAssignments())

	_, err := service.ResolveAvailability(context.Background(), AvailabilityParams{
		Principal:  Principal{EmployeeID: "ghost"},
		EmployeeID: "ghost",
		From:       marchDate(11),
		To:         marchDate(12),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestScheduleService_ListEntries_CachesWarningsUntilWrite(t *testing.T) {
	employees := newMemEmployees(fullTimeEmployee("emp1"))
	entries := newMemEntries(
		persistence.ScheduleEntry{
			ID: "a", EmployeeID: "emp1", Date: marchDate(11),
			Start: calendar.ClockTime{Hour: 9}, End: calendar.ClockTime{Hour: 13}, StatusCode: "ACTIVE",
		},
		persistence.ScheduleEntry{
			ID: "b", EmployeeID: "emp1", Date: marchDate(11),
			Start: calendar.ClockTime{Hour: 12}, End: calendar.ClockTime{Hour: 16}, StatusCode: "ACTIVE",
		},
	)
	service := newScheduleServiceForTest(employees, entries, newMemVacations(), newMemAssignments())

	employeeID := "emp1"
	params := ListScheduleEntriesParams{
		Principal:  Principal{EmployeeID: "emp1"},
		EmployeeID: &employeeID,
	}

	_, first, err := service.ListEntries(context.Background(), params)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(first) == 0 {
		t.Fatal("Expected overlap warnings for entries a and b")
	}

	// Mutating storage behind the service's back leaves the cached warning
	// set in place until the next write through the service.
	if err := entries.DeleteEntry(context.Background(), "b"); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	_, cached, err := service.ListEntries(context.Background(), params)
	if err != nil {
		t.Fatalf("Second ListEntries failed: %v", err)
	}
	if len(cached) != len(first) {
		t.Fatalf("Expected cached warnings (%d), got %d", len(first), len(cached))
	}

	service.InvalidateWarnings()
	_, fresh, err := service.ListEntries(context.Background(), params)
	if err != nil {
		t.Fatalf("Third ListEntries failed: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("Expected no warnings after invalidation, got %d", len(fresh))
	}
}

func TestScheduleService_DeleteEntry_OwnerOnly(t *testing.T) {
	service := newScheduleServiceForTest(
		newMemEmployees(fullTimeEmployee("emp1"), fullTimeEmployee("emp2")),
		newMemEntries(persistence.ScheduleEntry{
			ID: "entry1", EmployeeID: "emp1", Date: marchDate(11),
			Start: calendar.ClockTime{Hour: 9}, End: calendar.ClockTime{Hour: 10}, StatusCode: "ACTIVE",
		}),
		newMemVacations(),
		newMemAssignments(),
	)

	if err := service.DeleteEntry(context.Background(), Principal{EmployeeID: "emp2"}, "entry1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized for foreign delete, got %v", err)
	}
	if err := service.DeleteEntry(context.Background(), Principal{EmployeeID: "emp1"}, "entry1"); err != nil {
		t.Fatalf("Owner delete failed: %v", err)
	}
}
