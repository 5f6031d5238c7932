package planning

import (
	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/calendar"
)

// ConflictKind is the closed set of detectable conflict categories.
type ConflictKind string

const (
	ConflictOverlap              ConflictKind = "OVERLAP"
	ConflictOverallocation       ConflictKind = "OVERALLOCATION"
	ConflictVacation             ConflictKind = "VACATION_CONFLICT"
	ConflictInsufficientStaffing ConflictKind = "INSUFFICIENT_STAFFING"
)

// Severity grades how serious a conflict is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ConflictDetails is the structured payload attached to a conflict. Each
// kind carries its own type so consumers read checked fields instead of
// parsing free-form text.
type ConflictDetails interface {
	conflictDetails()
}

// OverlapDetails describes the colliding time windows of two entries.
type OverlapDetails struct {
	CandidateStart calendar.ClockTime
	CandidateEnd   calendar.ClockTime
	ExistingStart  calendar.ClockTime
	ExistingEnd    calendar.ClockTime
}

// VacationDetails describes the intersecting vacation request.
type VacationDetails struct {
	VacationStatus VacationStatus
	VacationStart  calendar.Date
	VacationEnd    calendar.Date
}

// OverallocationDetails quantifies a capacity breach on one day.
type OverallocationDetails struct {
	Allocated decimal.Decimal
	Capacity  decimal.Decimal
	// OverflowPercent is (allocated-capacity)/capacity expressed in percent.
	OverflowPercent decimal.Decimal
}

// AllocationMismatchDetails flags an assignment whose explicit hours and
// percentage allocation disagree beyond tolerance.
type AllocationMismatchDetails struct {
	HoursPerDay     decimal.Decimal
	PercentAsHours  decimal.Decimal
	ToleranceHours  decimal.Decimal
	DifferenceHours decimal.Decimal
}

// StaffingDetails quantifies a staffing shortfall per qualification.
type StaffingDetails struct {
	Qualification string
	Required      int
	Assigned      int
}

func (OverlapDetails) conflictDetails()            {}
func (VacationDetails) conflictDetails()           {}
func (OverallocationDetails) conflictDetails()     {}
func (AllocationMismatchDetails) conflictDetails() {}
func (StaffingDetails) conflictDetails()           {}

// Conflict is one detected incompatibility between a candidate commitment
// and the existing timeline or staffing rules.
type Conflict struct {
	Kind       ConflictKind
	Severity   Severity
	EmployeeID string
	ProjectID  string
	Date       calendar.Date
	Candidate  CommitmentRef
	Existing   CommitmentRef
	Details    ConflictDetails
}

// Candidate wraps the commitment being validated. Exactly one field is set.
type Candidate struct {
	Entry      *ScheduleEntry
	Vacation   *VacationRequest
	Assignment *ProjectAssignment
}

// CandidateEntry wraps a schedule entry candidate.
func CandidateEntry(entry ScheduleEntry) Candidate {
	return Candidate{Entry: &entry}
}

// CandidateVacation wraps a vacation request candidate.
func CandidateVacation(vacation VacationRequest) Candidate {
	return Candidate{Vacation: &vacation}
}

// CandidateAssignment wraps a project assignment candidate.
func CandidateAssignment(assignment ProjectAssignment) Candidate {
	return Candidate{Assignment: &assignment}
}

func (c Candidate) ref() CommitmentRef {
	switch {
	case c.Entry != nil:
		return CommitmentRef{Kind: CommitmentSchedule, ID: c.Entry.ID}
	case c.Vacation != nil:
		return CommitmentRef{Kind: CommitmentVacation, ID: c.Vacation.ID}
	case c.Assignment != nil:
		return CommitmentRef{Kind: CommitmentAssignment, ID: c.Assignment.ID}
	}
	return CommitmentRef{}
}

func (c Candidate) employeeID() string {
	switch {
	case c.Entry != nil:
		return c.Entry.EmployeeID
	case c.Vacation != nil:
		return c.Vacation.EmployeeID
	case c.Assignment != nil:
		return c.Assignment.EmployeeID
	}
	return ""
}

func (c Candidate) projectID() string {
	switch {
	case c.Entry != nil:
		return c.Entry.ProjectID
	case c.Assignment != nil:
		return c.Assignment.ProjectID
	}
	return ""
}

// dateRange returns the days the candidate claims, clamped at bound for
// open-ended assignments.
func (c Candidate) dateRange(bound calendar.DateRange) calendar.DateRange {
	switch {
	case c.Entry != nil:
		return calendar.SingleDay(c.Entry.Date)
	case c.Vacation != nil:
		return c.Vacation.Range()
	case c.Assignment != nil:
		end := bound.End
		if c.Assignment.End != nil && c.Assignment.End.Before(end) {
			end = *c.Assignment.End
		}
		start := c.Assignment.Start
		if start.Before(bound.Start) {
			start = bound.Start
		}
		return calendar.DateRange{Start: start, End: end}
	}
	return calendar.DateRange{}
}

// StaffingCheck is a project-level staffing requirement with the count of
// currently assigned qualifying employees, candidate included when it
// applies. The service layer computes the counts; the detector only judges.
type StaffingCheck struct {
	ProjectID     string
	RequirementID string
	Date          calendar.Date
	Qualification string
	Required      int
	Assigned      int
}

var (
	overflowLow    = decimal.NewFromInt(10)
	overflowMedium = decimal.NewFromInt(25)
)

// DetectConflicts validates a candidate commitment against the employee's
// resolved timeline and project staffing rules. Rules run in a fixed order
// and never short-circuit: a single candidate may yield several conflicts,
// and lower severities are never suppressed by higher ones. An empty result
// means the candidate is clean.
func DetectConflicts(candidate Candidate, timeline Timeline, staffing []StaffingCheck) []Conflict {
	var conflicts []Conflict

	conflicts = append(conflicts, detectOverlaps(candidate, timeline)...)
	conflicts = append(conflicts, detectVacationConflicts(candidate, timeline)...)
	conflicts = append(conflicts, detectCommitmentsDuringVacation(candidate, timeline)...)
	conflicts = append(conflicts, detectOverallocation(candidate, timeline)...)
	conflicts = append(conflicts, detectAllocationMismatch(candidate)...)
	conflicts = append(conflicts, detectInsufficientStaffing(candidate, staffing)...)

	return conflicts
}

// detectOverlaps flags any non-empty time intersection between the candidate
// entry and existing entries on the same day. There is no minimum-overlap
// threshold: sharing one minute is a conflict.
func detectOverlaps(candidate Candidate, timeline Timeline) []Conflict {
	if candidate.Entry == nil {
		return nil
	}
	entry := *candidate.Entry

	day, ok := timeline.Day(entry.Date)
	if !ok {
		return nil
	}

	var conflicts []Conflict
	for _, existing := range day.Entries {
		if existing.ID != "" && existing.ID == entry.ID {
			continue
		}
		if !entry.overlaps(existing) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:       ConflictOverlap,
			Severity:   SeverityHigh,
			EmployeeID: entry.EmployeeID,
			ProjectID:  entry.ProjectID,
			Date:       entry.Date,
			Candidate:  candidate.ref(),
			Existing:   CommitmentRef{Kind: CommitmentSchedule, ID: existing.ID},
			Details: OverlapDetails{
				CandidateStart: entry.Start,
				CandidateEnd:   entry.End,
				ExistingStart:  existing.Start,
				ExistingEnd:    existing.End,
			},
		})
	}
	return conflicts
}

// detectVacationConflicts reports one conflict per vacation request whose
// range intersects the candidate's days: HIGH for approved vacations, LOW
// (advisory) for pending ones.
func detectVacationConflicts(candidate Candidate, timeline Timeline) []Conflict {
	if len(timeline.Days) == 0 {
		return nil
	}
	bound := calendar.DateRange{Start: timeline.Days[0].Date, End: timeline.Days[len(timeline.Days)-1].Date}
	claimed := candidate.dateRange(bound)

	seen := make(map[string]struct{})
	var conflicts []Conflict
	for _, day := range timeline.Days {
		if !claimed.Contains(day.Date) {
			continue
		}

		report := func(vacation VacationRequest, severity Severity) {
			if candidate.Vacation != nil && candidate.Vacation.ID != "" && candidate.Vacation.ID == vacation.ID {
				return
			}
			if _, dup := seen[vacation.ID]; dup {
				return
			}
			seen[vacation.ID] = struct{}{}
			conflicts = append(conflicts, Conflict{
				Kind:       ConflictVacation,
				Severity:   severity,
				EmployeeID: timeline.EmployeeID,
				ProjectID:  candidate.projectID(),
				Date:       day.Date,
				Candidate:  candidate.ref(),
				Existing:   CommitmentRef{Kind: CommitmentVacation, ID: vacation.ID},
				Details: VacationDetails{
					VacationStatus: vacation.Status,
					VacationStart:  vacation.Start,
					VacationEnd:    vacation.End,
				},
			})
		}

		if day.Vacation != nil {
			report(*day.Vacation, SeverityHigh)
		}
		for _, pending := range day.PendingVacations {
			report(pending, SeverityLow)
		}
	}
	return conflicts
}

// detectCommitmentsDuringVacation flags scheduled entries falling inside a
// candidate vacation's days, one conflict per entry. An approved absence
// grades HIGH, a pending one stays advisory.
func detectCommitmentsDuringVacation(candidate Candidate, timeline Timeline) []Conflict {
	if candidate.Vacation == nil || len(timeline.Days) == 0 {
		return nil
	}
	vacation := *candidate.Vacation

	severity := SeverityLow
	if vacation.Status == VacationApproved {
		severity = SeverityHigh
	}

	var conflicts []Conflict
	for _, day := range timeline.Days {
		if !vacation.Covers(day.Date) {
			continue
		}
		for _, entry := range day.Entries {
			conflicts = append(conflicts, Conflict{
				Kind:       ConflictVacation,
				Severity:   severity,
				EmployeeID: vacation.EmployeeID,
				ProjectID:  entry.ProjectID,
				Date:       day.Date,
				Candidate:  candidate.ref(),
				Existing:   CommitmentRef{Kind: CommitmentSchedule, ID: entry.ID},
				Details: VacationDetails{
					VacationStatus: vacation.Status,
					VacationStart:  vacation.Start,
					VacationEnd:    vacation.End,
				},
			})
		}
	}
	return conflicts
}

// detectOverallocation sums the quantified assignment hours per day,
// candidate included, and grades the overflow against daily capacity:
// LOW up to 10% over, MEDIUM up to 25%, HIGH beyond.
func detectOverallocation(candidate Candidate, timeline Timeline) []Conflict {
	if candidate.Assignment == nil {
		return nil
	}
	assignment := *candidate.Assignment
	candidateHours, quantified := assignment.DailyHours()
	if !quantified {
		return nil
	}

	capacity := timeline.DailyCapacity
	if !capacity.IsPositive() {
		return nil
	}

	var conflicts []Conflict
	for _, day := range timeline.Days {
		if !assignment.ActiveOn(day.Date) {
			continue
		}
		total := day.AllocatedHours.Add(candidateHours)
		if assignment.ID != "" {
			// Replacing an existing assignment must not count it twice.
			for _, active := range day.Assignments {
				if active.ID != assignment.ID {
					continue
				}
				if hours, ok := active.DailyHours(); ok {
					total = total.Sub(hours)
				}
			}
		}
		if !total.GreaterThan(capacity) {
			continue
		}
		overflow := total.Sub(capacity).Div(capacity).Mul(oneHundred)
		conflicts = append(conflicts, Conflict{
			Kind:       ConflictOverallocation,
			Severity:   overflowSeverity(overflow),
			EmployeeID: assignment.EmployeeID,
			ProjectID:  assignment.ProjectID,
			Date:       day.Date,
			Candidate:  candidate.ref(),
			Details: OverallocationDetails{
				Allocated:       total,
				Capacity:        capacity,
				OverflowPercent: overflow,
			},
		})
	}
	return conflicts
}

func overflowSeverity(overflowPercent decimal.Decimal) Severity {
	switch {
	case overflowPercent.LessThanOrEqual(overflowLow):
		return SeverityLow
	case overflowPercent.LessThanOrEqual(overflowMedium):
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// detectAllocationMismatch reports an assignment carrying both explicit
// hours and a percentage that disagree by more than 5% of the baseline day
// (0.4h). The mismatch surfaces here so it is visible before it corrupts
// workload aggregation.
func detectAllocationMismatch(candidate Candidate) []Conflict {
	if candidate.Assignment == nil {
		return nil
	}
	assignment := *candidate.Assignment
	if assignment.HoursPerDay == nil || assignment.Percent == nil {
		return nil
	}

	percentAsHours := assignment.Percent.Mul(baselineDay).Div(oneHundred)
	difference := assignment.HoursPerDay.Sub(percentAsHours).Abs()
	if !difference.GreaterThan(consistencyTol) {
		return nil
	}

	return []Conflict{{
		Kind:       ConflictOverallocation,
		Severity:   SeverityMedium,
		EmployeeID: assignment.EmployeeID,
		ProjectID:  assignment.ProjectID,
		Date:       assignment.Start,
		Candidate:  candidate.ref(),
		Details: AllocationMismatchDetails{
			HoursPerDay:     *assignment.HoursPerDay,
			PercentAsHours:  percentAsHours,
			ToleranceHours:  consistencyTol,
			DifferenceHours: difference,
		},
	}}
}

// detectInsufficientStaffing emits a CRITICAL conflict for every staffing
// requirement whose qualifying headcount falls short.
func detectInsufficientStaffing(candidate Candidate, staffing []StaffingCheck) []Conflict {
	var conflicts []Conflict
	for _, check := range staffing {
		if check.Assigned >= check.Required {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Kind:       ConflictInsufficientStaffing,
			Severity:   SeverityCritical,
			EmployeeID: candidate.employeeID(),
			ProjectID:  check.ProjectID,
			Date:       check.Date,
			Candidate:  candidate.ref(),
			Existing:   CommitmentRef{Kind: CommitmentRequirement, ID: check.RequirementID},
			Details: StaffingDetails{
				Qualification: check.Qualification,
				Required:      check.Required,
				Assigned:      check.Assigned,
			},
		})
	}
	return conflicts
}
