package alert

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/planning"
	"github.com/example/resource-planner/internal/workload"
)

func overlapConflict() planning.Conflict {
	return planning.Conflict{
		Kind:       planning.ConflictOverlap,
		Severity:   planning.SeverityHigh,
		EmployeeID: "emp-1",
		ProjectID:  "prj-1",
		Date:       calendar.NewDate(2024, time.March, 4),
		Candidate:  planning.CommitmentRef{Kind: planning.CommitmentSchedule, ID: "sch-2"},
		Existing:   planning.CommitmentRef{Kind: planning.CommitmentSchedule, ID: "sch-1"},
		Details: planning.OverlapDetails{
			CandidateStart: calendar.ClockTime{Hour: 12},
			CandidateEnd:   calendar.ClockTime{Hour: 16},
			ExistingStart:  calendar.ClockTime{Hour: 9},
			ExistingEnd:    calendar.ClockTime{Hour: 13},
		},
	}
}

func overloadBreach() workload.Breach {
	return workload.Breach{
		Kind:        workload.BreachOverloaded,
		EmployeeID:  "emp-1",
		ISOYear:     2024,
		ISOWeek:     10,
		Utilization: decimal.RequireFromString("120"),
	}
}

func TestReconcileCreatesNewAlerts(t *testing.T) {
	upserts, err := Reconcile([]planning.Conflict{overlapConflict()}, []workload.Breach{overloadBreach()}, nil)
	require.NoError(t, err)
	require.Len(t, upserts, 2)

	for _, upsert := range upserts {
		assert.Equal(t, OpCreate, upsert.Op)
		assert.Equal(t, StatusActive, upsert.Alert.Status)
		assert.NotEmpty(t, upsert.Alert.CauseKey)
		assert.NotEmpty(t, upsert.Alert.Message)
	}

	byType := make(map[Type]Alert)
	for _, upsert := range upserts {
		byType[upsert.Alert.Type] = upsert.Alert
	}
	assert.Equal(t, PriorityHigh, byType[TypeOverlap].Priority)
	assert.Equal(t, "sch-1", byType[TypeOverlap].ScheduleEntryID)
	assert.Equal(t, PriorityHigh, byType[TypeOverload].Priority)
}

func TestReconcileIsIdempotentAcrossPasses(t *testing.T) {
	conflicts := []planning.Conflict{overlapConflict()}

	first, err := Reconcile(conflicts, nil, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Persisted outcome of the first pass feeds the second.
	recorded := first[0].Alert
	recorded.ID = "alert-1"

	second, err := Reconcile(conflicts, nil, []Alert{recorded})
	require.NoError(t, err)
	assert.Empty(t, second, "an unchanged conflict set must not create or touch anything")
}

func TestReconcileLeavesAcknowledgedAlone(t *testing.T) {
	conflicts := []planning.Conflict{overlapConflict()}
	existing := Alert{
		ID:       "alert-1",
		CauseKey: ConflictCauseKey(conflicts[0]),
		Type:     TypeOverlap,
		Priority: PriorityHigh,
		Status:   StatusAcknowledged,
	}

	upserts, err := Reconcile(conflicts, nil, []Alert{existing})
	require.NoError(t, err)
	assert.Empty(t, upserts, "acknowledged alerts are not bumped back to active")
}

func TestReconcileResolvesDisappearedCauses(t *testing.T) {
	stale := Alert{
		ID:       "alert-1",
		CauseKey: "OVERLAP|emp-1|prj-1|sch-1|2024-03-04",
		Type:     TypeOverlap,
		Status:   StatusActive,
	}
	acknowledged := Alert{
		ID:       "alert-2",
		CauseKey: "OVERLOAD|emp-2|2024-W10",
		Type:     TypeOverload,
		Status:   StatusAcknowledged,
	}
	resolved := Alert{
		ID:       "alert-3",
		CauseKey: "OVERLAP|emp-3|prj-1|sch-9|2024-03-01",
		Type:     TypeOverlap,
		Status:   StatusResolved,
	}

	upserts, err := Reconcile(nil, nil, []Alert{stale, acknowledged, resolved})
	require.NoError(t, err)
	require.Len(t, upserts, 2, "already-resolved alerts stay untouched")

	for _, upsert := range upserts {
		assert.Equal(t, OpResolve, upsert.Op)
		assert.Equal(t, StatusResolved, upsert.Alert.Status)
		assert.NotEmpty(t, upsert.Alert.ID)
	}
}

func TestReconcileMixedCreateAndResolve(t *testing.T) {
	conflicts := []planning.Conflict{overlapConflict()}
	stale := Alert{
		ID:       "alert-1",
		CauseKey: "UNDERUTILIZATION|emp-9|2024-W09",
		Type:     TypeUnderutilization,
		Status:   StatusActive,
	}

	upserts, err := Reconcile(conflicts, nil, []Alert{stale})
	require.NoError(t, err)
	require.Len(t, upserts, 2)
	assert.Equal(t, OpCreate, upserts[0].Op, "creates are ordered before resolves")
	assert.Equal(t, OpResolve, upserts[1].Op)
}

func TestReconcileUnknownKindFailsLoudly(t *testing.T) {
	bogus := planning.Conflict{Kind: planning.ConflictKind("TIME_PARADOX"), EmployeeID: "emp-1"}

	_, err := Reconcile([]planning.Conflict{bogus}, nil, nil)
	require.ErrorIs(t, err, ErrUnknownConflictKind)
}

func TestPriorityMapping(t *testing.T) {
	tests := map[planning.Severity]Priority{
		planning.SeverityCritical: PriorityCritical,
		planning.SeverityHigh:     PriorityHigh,
		planning.SeverityMedium:   PriorityMedium,
		planning.SeverityLow:      PriorityLow,
	}
	for severity, want := range tests {
		assert.Equal(t, want, priorityFor(severity))
	}
}

func TestCauseKeysAreStable(t *testing.T) {
	assert.Equal(t, ConflictCauseKey(overlapConflict()), ConflictCauseKey(overlapConflict()))
	assert.Equal(t, BreachCauseKey(overloadBreach()), BreachCauseKey(overloadBreach()))
	assert.NotEqual(t, ConflictCauseKey(overlapConflict()), BreachCauseKey(overloadBreach()))
}
