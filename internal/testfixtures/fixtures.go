package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

var (
	employeeCounter   uint64
	projectCounter    uint64
	entryCounter      uint64
	vacationCounter   uint64
	assignmentCounter uint64
	workloadCounter   uint64
	sessionCounter    uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// referenceDate is a Monday, so fixture ranges line up with ISO weeks.
var referenceDate = calendar.NewDate(2024, time.March, 11)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the canonical baseline planning date used by
// fixtures. It falls on a Monday.
func ReferenceDate() calendar.Date {
	return referenceDate
}

// --------------------------- Employee fixtures ---------------------------

// EmployeeFixture represents a deterministic employee record that can be
// materialised for application or persistence tests.
type EmployeeFixture struct {
	ID            string
	Name          string
	Email         string
	Qualification string
	WeeklyHours   decimal.Decimal
	Available     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmployeeOption configures the generated employee fixture.
type EmployeeOption func(*EmployeeFixture)

// NewEmployeeFixture returns a deterministic employee fixture with optional
// overrides.
func NewEmployeeFixture(opts ...EmployeeOption) EmployeeFixture {
	idx := atomic.AddUint64(&employeeCounter, 1)
	id := fmt.Sprintf("emp-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EmployeeFixture{
		ID:            id,
		Name:          fmt.Sprintf("Employee %03d", idx),
		Email:         fmt.Sprintf("%s@example.com", id),
		Qualification: "ENGINEER",
		WeeklyHours:   decimal.NewFromInt(40),
		Available:     true,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEmployeeID overrides the generated employee ID.
func WithEmployeeID(id string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.ID = id
	}
}

// WithEmployeeName overrides the generated name.
func WithEmployeeName(name string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Name = name
	}
}

// WithEmployeeEmail overrides the generated email address.
func WithEmployeeEmail(email string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Email = email
	}
}

// WithEmployeeQualification overrides the qualification code.
func WithEmployeeQualification(qualification string) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Qualification = qualification
	}
}

// WithEmployeeWeeklyHours sets the contracted weekly hours.
func WithEmployeeWeeklyHours(hours decimal.Decimal) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.WeeklyHours = hours
	}
}

// WithEmployeeAvailable sets the availability flag on the fixture.
func WithEmployeeAvailable(available bool) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.Available = available
	}
}

// WithEmployeeTimestamps sets both created and updated timestamps.
func WithEmployeeTimestamps(created, updated time.Time) EmployeeOption {
	return func(f *EmployeeFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.Employee value.
func (f EmployeeFixture) Persistence() persistence.Employee {
	return persistence.Employee{
		ID:            f.ID,
		Name:          f.Name,
		Email:         f.Email,
		Qualification: f.Qualification,
		WeeklyHours:   f.WeeklyHours,
		Available:     f.Available,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Planning returns the capacity snapshot view of the fixture.
func (f EmployeeFixture) Planning() planning.Employee {
	return planning.Employee{
		ID:            f.ID,
		Qualification: f.Qualification,
		WeeklyHours:   f.WeeklyHours,
		Available:     f.Available,
	}
}

// Input returns the fixture as an application.EmployeeInput.
func (f EmployeeFixture) Input() application.EmployeeInput {
	return application.EmployeeInput{
		Name:          f.Name,
		Email:         f.Email,
		Qualification: f.Qualification,
		WeeklyHours:   f.WeeklyHours,
		Available:     f.Available,
	}
}

// Principal returns a non-admin principal acting as this employee.
func (f EmployeeFixture) Principal() application.Principal {
	return application.Principal{EmployeeID: f.ID}
}

// AdminPrincipal returns an admin principal acting as this employee.
func (f EmployeeFixture) AdminPrincipal() application.Principal {
	return application.Principal{EmployeeID: f.ID, IsAdmin: true}
}

// ---------------------------- Project fixtures ---------------------------

// ProjectFixture represents a deterministic project record.
type ProjectFixture struct {
	ID           string
	Name         string
	Description  *string
	Requirements []persistence.StaffingRequirement
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectOption configures the generated project fixture.
type ProjectOption func(*ProjectFixture)

// NewProjectFixture returns a deterministic project fixture with optional
// overrides.
func NewProjectFixture(opts ...ProjectOption) ProjectFixture {
	idx := atomic.AddUint64(&projectCounter, 1)
	id := fmt.Sprintf("proj-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := ProjectFixture{
		ID:        id,
		Name:      fmt.Sprintf("Project %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithProjectID overrides the generated project ID.
func WithProjectID(id string) ProjectOption {
	return func(f *ProjectFixture) {
		f.ID = id
	}
}

// WithProjectName overrides the generated project name.
func WithProjectName(name string) ProjectOption {
	return func(f *ProjectFixture) {
		f.Name = name
	}
}

// WithProjectDescription sets the description on the fixture.
func WithProjectDescription(description string) ProjectOption {
	return func(f *ProjectFixture) {
		value := description
		f.Description = &value
	}
}

// WithProjectRequirement appends a staffing requirement to the fixture.
func WithProjectRequirement(date calendar.Date, qualification string, required int) ProjectOption {
	return func(f *ProjectFixture) {
		f.Requirements = append(f.Requirements, persistence.StaffingRequirement{
			ID:            fmt.Sprintf("%s-req-%d", f.ID, len(f.Requirements)+1),
			ProjectID:     f.ID,
			Date:          date,
			Qualification: qualification,
			Required:      required,
		})
	}
}

// WithProjectTimestamps sets both created and updated timestamps.
func WithProjectTimestamps(created, updated time.Time) ProjectOption {
	return func(f *ProjectFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.Project value.
func (f ProjectFixture) Persistence() persistence.Project {
	return persistence.Project{
		ID:           f.ID,
		Name:         f.Name,
		Description:  copyStringPtr(f.Description),
		Requirements: append([]persistence.StaffingRequirement(nil), f.Requirements...),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ProjectInput.
func (f ProjectFixture) Input() application.ProjectInput {
	requirements := make([]application.RequirementInput, 0, len(f.Requirements))
	for _, req := range f.Requirements {
		requirements = append(requirements, application.RequirementInput{
			Date:          req.Date,
			Qualification: req.Qualification,
			Required:      req.Required,
		})
	}
	return application.ProjectInput{
		Name:         f.Name,
		Description:  copyStringPtr(f.Description),
		Requirements: requirements,
	}
}

// ------------------------ Schedule entry fixtures ------------------------

// EntryFixture represents a deterministic schedule entry record.
type EntryFixture struct {
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

// EntryOption configures the generated schedule entry fixture.
type EntryOption func(*EntryFixture)

// NewEntryFixture returns a deterministic schedule entry fixture with
// optional overrides. Successive fixtures land on successive days so they do
// not overlap by default.
func NewEntryFixture(opts ...EntryOption) EntryFixture {
	idx := atomic.AddUint64(&entryCounter, 1)
	id := fmt.Sprintf("entry-%03d", idx)
	fixture := EntryFixture{
		ID:         id,
		EmployeeID: fmt.Sprintf("emp-%03d", idx),
		Date:       referenceDate.AddDays(int(idx) - 1),
		Start:      calendar.ClockTime{Hour: 9},
		End:        calendar.ClockTime{Hour: 17},
		StatusCode: "ACTIVE",
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEntryID overrides the generated entry ID.
func WithEntryID(id string) EntryOption {
	return func(f *EntryFixture) {
		f.ID = id
	}
}

// WithEntryEmployee sets the owning employee ID.
func WithEntryEmployee(employeeID string) EntryOption {
	return func(f *EntryFixture) {
		f.EmployeeID = employeeID
	}
}

// WithEntryDate sets the entry date.
func WithEntryDate(date calendar.Date) EntryOption {
	return func(f *EntryFixture) {
		f.Date = date
	}
}

// WithEntryTimes sets the start and end clock times.
func WithEntryTimes(start, end calendar.ClockTime) EntryOption {
	return func(f *EntryFixture) {
		f.Start = start
		f.End = end
	}
}

// WithEntryCrossingMidnight marks the entry as spilling into the next day.
func WithEntryCrossingMidnight() EntryOption {
	return func(f *EntryFixture) {
		f.CrossesMidnight = true
	}
}

// WithEntryProject attaches the entry to a project.
func WithEntryProject(projectID string) EntryOption {
	return func(f *EntryFixture) {
		id := projectID
		f.ProjectID = &id
	}
}

// WithEntryTeam attaches the entry to a team.
func WithEntryTeam(teamID string) EntryOption {
	return func(f *EntryFixture) {
		id := teamID
		f.TeamID = &id
	}
}

// WithEntryStatus overrides the status code.
func WithEntryStatus(statusCode string) EntryOption {
	return func(f *EntryFixture) {
		f.StatusCode = statusCode
	}
}

// Persistence returns the fixture as a persistence.ScheduleEntry value.
func (f EntryFixture) Persistence() persistence.ScheduleEntry {
	return persistence.ScheduleEntry{
		ID:              f.ID,
		EmployeeID:      f.EmployeeID,
		Date:            f.Date,
		Start:           f.Start,
		End:             f.End,
		CrossesMidnight: f.CrossesMidnight,
		ProjectID:       copyStringPtr(f.ProjectID),
		TeamID:          copyStringPtr(f.TeamID),
		StatusCode:      f.StatusCode,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ScheduleEntryInput.
func (f EntryFixture) Input() application.ScheduleEntryInput {
	return application.ScheduleEntryInput{
		EmployeeID:      f.EmployeeID,
		Date:            f.Date,
		Start:           f.Start,
		End:             f.End,
		CrossesMidnight: f.CrossesMidnight,
		ProjectID:       copyStringPtr(f.ProjectID),
		TeamID:          copyStringPtr(f.TeamID),
		StatusCode:      f.StatusCode,
	}
}

// --------------------------- Vacation fixtures ---------------------------

// VacationFixture represents a deterministic vacation request record.
type VacationFixture struct {
	ID         string
	EmployeeID string
	StartDate  calendar.Date
	EndDate    calendar.Date
	Type       string
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// VacationOption configures the generated vacation fixture.
type VacationOption func(*VacationFixture)

// NewVacationFixture returns a deterministic vacation fixture with optional
// overrides. The default request covers a single pending day.
func NewVacationFixture(opts ...VacationOption) VacationFixture {
	idx := atomic.AddUint64(&vacationCounter, 1)
	id := fmt.Sprintf("vac-%03d", idx)
	day := referenceDate.AddDays(int(idx) - 1)
	fixture := VacationFixture{
		ID:         id,
		EmployeeID: fmt.Sprintf("emp-%03d", idx),
		StartDate:  day,
		EndDate:    day,
		Type:       "ANNUAL",
		Status:     string(planning.VacationPending),
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithVacationID overrides the generated vacation ID.
func WithVacationID(id string) VacationOption {
	return func(f *VacationFixture) {
		f.ID = id
	}
}

// WithVacationEmployee sets the requesting employee ID.
func WithVacationEmployee(employeeID string) VacationOption {
	return func(f *VacationFixture) {
		f.EmployeeID = employeeID
	}
}

// WithVacationRange sets the inclusive date range.
func WithVacationRange(start, end calendar.Date) VacationOption {
	return func(f *VacationFixture) {
		f.StartDate = start
		f.EndDate = end
	}
}

// WithVacationType overrides the vacation type.
func WithVacationType(vacationType string) VacationOption {
	return func(f *VacationFixture) {
		f.Type = vacationType
	}
}

// WithVacationStatus sets the workflow status.
func WithVacationStatus(status planning.VacationStatus) VacationOption {
	return func(f *VacationFixture) {
		f.Status = string(status)
	}
}

// Persistence returns the fixture as a persistence.VacationRequest value.
func (f VacationFixture) Persistence() persistence.VacationRequest {
	return persistence.VacationRequest{
		ID:         f.ID,
		EmployeeID: f.EmployeeID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Type:       f.Type,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Input returns the fixture as an application.VacationInput.
func (f VacationFixture) Input() application.VacationInput {
	return application.VacationInput{
		EmployeeID: f.EmployeeID,
		Start:      f.StartDate,
		End:        f.EndDate,
		Type:       f.Type,
	}
}

// -------------------------- Assignment fixtures --------------------------

// AssignmentFixture represents a deterministic project assignment record.
type AssignmentFixture struct {
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

// AssignmentOption configures the generated assignment fixture.
type AssignmentOption func(*AssignmentFixture)

// NewAssignmentFixture returns a deterministic assignment fixture with
// optional overrides. The default assignment covers one working week at four
// hours per day.
func NewAssignmentFixture(opts ...AssignmentOption) AssignmentFixture {
	idx := atomic.AddUint64(&assignmentCounter, 1)
	id := fmt.Sprintf("asg-%03d", idx)
	start := referenceDate
	end := referenceDate.AddDays(4)
	hours := decimal.NewFromInt(4)
	fixture := AssignmentFixture{
		ID:          id,
		EmployeeID:  fmt.Sprintf("emp-%03d", idx),
		ProjectID:   fmt.Sprintf("proj-%03d", idx),
		StartDate:   start,
		EndDate:     &end,
		HoursPerDay: &hours,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithAssignmentID overrides the generated assignment ID.
func WithAssignmentID(id string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.ID = id
	}
}

// WithAssignmentEmployee sets the assigned employee ID.
func WithAssignmentEmployee(employeeID string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.EmployeeID = employeeID
	}
}

// WithAssignmentProject sets the target project ID.
func WithAssignmentProject(projectID string) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.ProjectID = projectID
	}
}

// WithAssignmentRange sets the inclusive date range.
func WithAssignmentRange(start, end calendar.Date) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.StartDate = start
		endCopy := end
		f.EndDate = &endCopy
	}
}

// WithOpenEndedAssignment clears the end date.
func WithOpenEndedAssignment(start calendar.Date) AssignmentOption {
	return func(f *AssignmentFixture) {
		f.StartDate = start
		f.EndDate = nil
	}
}

// WithAssignmentHoursPerDay sets the fixed daily hour allocation.
func WithAssignmentHoursPerDay(hours decimal.Decimal) AssignmentOption {
	return func(f *AssignmentFixture) {
		value := hours
		f.HoursPerDay = &value
		f.Percent = nil
	}
}

// WithAssignmentPercent sets the allocation as a share of daily capacity.
func WithAssignmentPercent(percent decimal.Decimal) AssignmentOption {
	return func(f *AssignmentFixture) {
		value := percent
		f.Percent = &value
		f.HoursPerDay = nil
	}
}

// Persistence returns the fixture as a persistence.ProjectAssignment value.
func (f AssignmentFixture) Persistence() persistence.ProjectAssignment {
	return persistence.ProjectAssignment{
		ID:          f.ID,
		EmployeeID:  f.EmployeeID,
		ProjectID:   f.ProjectID,
		StartDate:   f.StartDate,
		EndDate:     copyDatePtr(f.EndDate),
		HoursPerDay: copyDecimalPtr(f.HoursPerDay),
		Percent:     copyDecimalPtr(f.Percent),
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Input returns the fixture as an application.AssignmentInput.
func (f AssignmentFixture) Input() application.AssignmentInput {
	return application.AssignmentInput{
		EmployeeID:  f.EmployeeID,
		ProjectID:   f.ProjectID,
		Start:       f.StartDate,
		End:         copyDatePtr(f.EndDate),
		HoursPerDay: copyDecimalPtr(f.HoursPerDay),
		Percent:     copyDecimalPtr(f.Percent),
	}
}

// ------------------------ Workload record fixtures -----------------------

// WorkloadFixture represents a deterministic planned/actual hours record.
type WorkloadFixture struct {
	ID           string
	EmployeeID   string
	Date         calendar.Date
	WeekNumber   int
	PlannedHours decimal.Decimal
	ActualHours  *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkloadOption configures the generated workload fixture.
type WorkloadOption func(*WorkloadFixture)

// NewWorkloadFixture returns a deterministic workload fixture with optional
// overrides. The week number is derived from the date.
func NewWorkloadFixture(opts ...WorkloadOption) WorkloadFixture {
	idx := atomic.AddUint64(&workloadCounter, 1)
	id := fmt.Sprintf("wl-%03d", idx)
	date := referenceDate.AddDays(int(idx) - 1)
	fixture := WorkloadFixture{
		ID:           id,
		EmployeeID:   fmt.Sprintf("emp-%03d", idx),
		Date:         date,
		PlannedHours: decimal.NewFromInt(8),
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	if fixture.WeekNumber == 0 {
		_, fixture.WeekNumber = calendar.WeekOf(fixture.Date)
	}
	return fixture
}

// WithWorkloadID overrides the generated record ID.
func WithWorkloadID(id string) WorkloadOption {
	return func(f *WorkloadFixture) {
		f.ID = id
	}
}

// WithWorkloadEmployee sets the employee ID.
func WithWorkloadEmployee(employeeID string) WorkloadOption {
	return func(f *WorkloadFixture) {
		f.EmployeeID = employeeID
	}
}

// WithWorkloadDate sets the record date. The week number is rederived unless
// explicitly overridden afterwards.
func WithWorkloadDate(date calendar.Date) WorkloadOption {
	return func(f *WorkloadFixture) {
		f.Date = date
		f.WeekNumber = 0
	}
}

// WithWorkloadHours sets planned hours and optionally actual hours.
func WithWorkloadHours(planned decimal.Decimal, actual *decimal.Decimal) WorkloadOption {
	return func(f *WorkloadFixture) {
		f.PlannedHours = planned
		f.ActualHours = copyDecimalPtr(actual)
	}
}

// Persistence returns the fixture as a persistence.WorkloadRecord value.
func (f WorkloadFixture) Persistence() persistence.WorkloadRecord {
	return persistence.WorkloadRecord{
		ID:           f.ID,
		EmployeeID:   f.EmployeeID,
		Date:         f.Date,
		WeekNumber:   f.WeekNumber,
		PlannedHours: f.PlannedHours,
		ActualHours:  copyDecimalPtr(f.ActualHours),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.WorkloadRecordInput.
func (f WorkloadFixture) Input() application.WorkloadRecordInput {
	return application.WorkloadRecordInput{
		EmployeeID:   f.EmployeeID,
		Date:         f.Date,
		WeekNumber:   f.WeekNumber,
		PlannedHours: f.PlannedHours,
		ActualHours:  copyDecimalPtr(f.ActualHours),
	}
}

// ---------------------------- Session fixtures ---------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID         string
	EmployeeID string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	RevokedAt  *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime
	fixture := SessionFixture{
		ID:         id,
		EmployeeID: fmt.Sprintf("emp-%03d", idx),
		Token:      fmt.Sprintf("token-%03d", idx),
		ExpiresAt:  created.Add(24 * time.Hour),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionEmployee sets the employee ID.
func WithSessionEmployee(employeeID string) SessionOption {
	return func(f *SessionFixture) {
		f.EmployeeID = employeeID
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	var revoked *time.Time
	if f.RevokedAt != nil {
		t := *f.RevokedAt
		revoked = &t
	}
	return persistence.Session{
		ID:         f.ID,
		EmployeeID: f.EmployeeID,
		Token:      f.Token,
		ExpiresAt:  f.ExpiresAt,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
		RevokedAt:  revoked,
	}
}

// --------------------------- Credential fixtures -------------------------

// CredentialsFixture represents deterministic stored credentials. The hash
// defaults to a sentinel value; pair it with a stub verifier, or set a real
// argon2id hash for end-to-end authentication tests.
type CredentialsFixture struct {
	EmployeeID   string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
}

// CredentialsOption configures the generated credentials fixture.
type CredentialsOption func(*CredentialsFixture)

// NewCredentialsFixture returns credentials derived from the employee fixture.
func NewCredentialsFixture(employee EmployeeFixture, opts ...CredentialsOption) CredentialsFixture {
	fixture := CredentialsFixture{
		EmployeeID:   employee.ID,
		Email:        employee.Email,
		PasswordHash: fmt.Sprintf("hash-%s", employee.ID),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCredentialsHash overrides the stored password hash.
func WithCredentialsHash(hash string) CredentialsOption {
	return func(f *CredentialsFixture) {
		f.PasswordHash = hash
	}
}

// WithCredentialsAdmin sets the admin flag.
func WithCredentialsAdmin(isAdmin bool) CredentialsOption {
	return func(f *CredentialsFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithCredentialsDisabled marks the account as disabled.
func WithCredentialsDisabled() CredentialsOption {
	return func(f *CredentialsFixture) {
		f.Disabled = true
	}
}

// Persistence returns the fixture as a persistence.Credentials value.
func (f CredentialsFixture) Persistence() persistence.Credentials {
	return persistence.Credentials{
		EmployeeID:   f.EmployeeID,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		Disabled:     f.Disabled,
	}
}

// helpers to deep copy optional values.

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyDatePtr(src *calendar.Date) *calendar.Date {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyDecimalPtr(src *decimal.Decimal) *decimal.Decimal {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
