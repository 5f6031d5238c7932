package application

import (
	"context"
	"fmt"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// In-memory repository fakes shared by the service tests.

type memEmployees struct {
	byID map[string]persistence.Employee
	err  error
}

func newMemEmployees(employees ...persistence.Employee) *memEmployees {
	m := &memEmployees{byID: make(map[string]persistence.Employee)}
	for _, employee := range employees {
		m.byID[employee.ID] = employee
	}
	return m
}

func (m *memEmployees) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[employee.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, other := range m.byID {
		if other.Email == employee.Email {
			return persistence.ErrDuplicate
		}
	}
	m.byID[employee.ID] = employee
	return nil
}

func (m *memEmployees) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[employee.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[employee.ID] = employee
	return nil
}

func (m *memEmployees) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if m.err != nil {
		return persistence.Employee{}, m.err
	}
	employee, ok := m.byID[id]
	if !ok {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return employee, nil
}

func (m *memEmployees) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]persistence.Employee, 0, len(m.byID))
	for _, employee := range m.byID {
		out = append(out, employee)
	}
	return out, nil
}

func (m *memEmployees) DeleteEmployee(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memProjects struct {
	byID map[string]persistence.Project
}

func newMemProjects(projects ...persistence.Project) *memProjects {
	m := &memProjects{byID: make(map[string]persistence.Project)}
	for _, project := range projects {
		m.byID[project.ID] = project
	}
	return m
}

func (m *memProjects) CreateProject(ctx context.Context, project persistence.Project) error {
	if _, ok := m.byID[project.ID]; ok {
		return persistence.ErrDuplicate
	}
	m.byID[project.ID] = project
	return nil
}

func (m *memProjects) UpdateProject(ctx context.Context, project persistence.Project) error {
	if _, ok := m.byID[project.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[project.ID] = project
	return nil
}

func (m *memProjects) GetProject(ctx context.Context, id string) (persistence.Project, error) {
	project, ok := m.byID[id]
	if !ok {
		return persistence.Project{}, persistence.ErrNotFound
	}
	return project, nil
}

func (m *memProjects) ListProjects(ctx context.Context) ([]persistence.Project, error) {
	out := make([]persistence.Project, 0, len(m.byID))
	for _, project := range m.byID {
		out = append(out, project)
	}
	return out, nil
}

func (m *memProjects) DeleteProject(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memEntries struct {
	byID map[string]persistence.ScheduleEntry
}

func newMemEntries(entries ...persistence.ScheduleEntry) *memEntries {
	m := &memEntries{byID: make(map[string]persistence.ScheduleEntry)}
	for _, entry := range entries {
		m.byID[entry.ID] = entry
	}
	return m
}

func (m *memEntries) CreateEntry(ctx context.Context, entry persistence.ScheduleEntry) error {
	if _, ok := m.byID[entry.ID]; ok {
		return persistence.ErrDuplicate
	}
	m.byID[entry.ID] = entry
	return nil
}

func (m *memEntries) UpdateEntry(ctx context.Context, entry persistence.ScheduleEntry) error {
	if _, ok := m.byID[entry.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[entry.ID] = entry
	return nil
}

func (m *memEntries) GetEntry(ctx context.Context, id string) (persistence.ScheduleEntry, error) {
	entry, ok := m.byID[id]
	if !ok {
		return persistence.ScheduleEntry{}, persistence.ErrNotFound
	}
	return entry, nil
}

func (m *memEntries) ListEntries(ctx context.Context, filter persistence.ScheduleEntryFilter) ([]persistence.ScheduleEntry, error) {
	var out []persistence.ScheduleEntry
	for _, entry := range m.byID {
		if filter.EmployeeID != nil && entry.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.ProjectID != nil && (entry.ProjectID == nil || *entry.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.From != nil && entry.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.Date.After(*filter.To) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *memEntries) DeleteEntry(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memVacations struct {
	byID map[string]persistence.VacationRequest
}

func newMemVacations(vacations ...persistence.VacationRequest) *memVacations {
	m := &memVacations{byID: make(map[string]persistence.VacationRequest)}
	for _, vacation := range vacations {
		m.byID[vacation.ID] = vacation
	}
	return m
}

func (m *memVacations) CreateVacation(ctx context.Context, vacation persistence.VacationRequest) error {
	if _, ok := m.byID[vacation.ID]; ok {
		return persistence.ErrDuplicate
	}
	m.byID[vacation.ID] = vacation
	return nil
}

func (m *memVacations) UpdateVacation(ctx context.Context, vacation persistence.VacationRequest) error {
	if _, ok := m.byID[vacation.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[vacation.ID] = vacation
	return nil
}

func (m *memVacations) GetVacation(ctx context.Context, id string) (persistence.VacationRequest, error) {
	vacation, ok := m.byID[id]
	if !ok {
		return persistence.VacationRequest{}, persistence.ErrNotFound
	}
	return vacation, nil
}

func (m *memVacations) ListVacations(ctx context.Context, filter persistence.VacationFilter) ([]persistence.VacationRequest, error) {
	var out []persistence.VacationRequest
	for _, vacation := range m.byID {
		if filter.EmployeeID != nil && vacation.EmployeeID != *filter.EmployeeID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, vacation.Status) {
			continue
		}
		if filter.From != nil && vacation.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && vacation.StartDate.After(*filter.To) {
			continue
		}
		out = append(out, vacation)
	}
	return out, nil
}

func (m *memVacations) DeleteVacation(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAssignments struct {
	byID map[string]persistence.ProjectAssignment
}

func newMemAssignments(assignments ...persistence.ProjectAssignment) *memAssignments {
	m := &memAssignments{byID: make(map[string]persistence.ProjectAssignment)}
	for _, assignment := range assignments {
		m.byID[assignment.ID] = assignment
	}
	return m
}

func (m *memAssignments) CreateAssignment(ctx context.Context, assignment persistence.ProjectAssignment) error {
	if _, ok := m.byID[assignment.ID]; ok {
		return persistence.ErrDuplicate
	}
	m.byID[assignment.ID] = assignment
	return nil
}

func (m *memAssignments) UpdateAssignment(ctx context.Context, assignment persistence.ProjectAssignment) error {
	if _, ok := m.byID[assignment.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[assignment.ID] = assignment
	return nil
}

func (m *memAssignments) GetAssignment(ctx context.Context, id string) (persistence.ProjectAssignment, error) {
	assignment, ok := m.byID[id]
	if !ok {
		return persistence.ProjectAssignment{}, persistence.ErrNotFound
	}
	return assignment, nil
}

func (m *memAssignments) ListAssignments(ctx context.Context, filter persistence.AssignmentFilter) ([]persistence.ProjectAssignment, error) {
	var out []persistence.ProjectAssignment
	for _, assignment := range m.byID {
		if filter.EmployeeID != nil && assignment.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.ProjectID != nil && assignment.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.ActiveOn != nil {
			if assignment.StartDate.After(*filter.ActiveOn) {
				continue
			}
			if assignment.EndDate != nil && assignment.EndDate.Before(*filter.ActiveOn) {
				continue
			}
		}
		out = append(out, assignment)
	}
	return out, nil
}

func (m *memAssignments) DeleteAssignment(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memWorkloads struct {
	byID map[string]persistence.WorkloadRecord
}

func newMemWorkloads(records ...persistence.WorkloadRecord) *memWorkloads {
	m := &memWorkloads{byID: make(map[string]persistence.WorkloadRecord)}
	for _, record := range records {
		m.byID[record.ID] = record
	}
	return m
}

func (m *memWorkloads) UpsertRecord(ctx context.Context, record persistence.WorkloadRecord) error {
	for id, existing := range m.byID {
		if existing.EmployeeID == record.EmployeeID && existing.Date == record.Date {
			delete(m.byID, id)
			break
		}
	}
	m.byID[record.ID] = record
	return nil
}

func (m *memWorkloads) ListRecords(ctx context.Context, filter persistence.WorkloadFilter) ([]persistence.WorkloadRecord, error) {
	var out []persistence.WorkloadRecord
	for _, record := range m.byID {
		if filter.EmployeeID != nil && record.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.From != nil && record.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && record.Date.After(*filter.To) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (m *memWorkloads) DeleteRecord(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAlerts struct {
	byID map[string]persistence.Alert
}

func newMemAlerts(alerts ...persistence.Alert) *memAlerts {
	m := &memAlerts{byID: make(map[string]persistence.Alert)}
	for _, alert := range alerts {
		m.byID[alert.ID] = alert
	}
	return m
}

func (m *memAlerts) CreateAlert(ctx context.Context, alert persistence.Alert) error {
	if _, ok := m.byID[alert.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range m.byID {
		if existing.CauseKey == alert.CauseKey && existing.Status != "RESOLVED" {
			return persistence.ErrDuplicate
		}
	}
	m.byID[alert.ID] = alert
	return nil
}

func (m *memAlerts) UpdateAlert(ctx context.Context, alert persistence.Alert) error {
	if _, ok := m.byID[alert.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.byID[alert.ID] = alert
	return nil
}

func (m *memAlerts) GetAlert(ctx context.Context, id string) (persistence.Alert, error) {
	alert, ok := m.byID[id]
	if !ok {
		return persistence.Alert{}, persistence.ErrNotFound
	}
	return alert, nil
}

func (m *memAlerts) ListAlerts(ctx context.Context, filter persistence.AlertFilter) ([]persistence.Alert, error) {
	var out []persistence.Alert
	for _, alert := range m.byID {
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, alert.Status) {
			continue
		}
		if filter.EmployeeID != nil && (alert.EmployeeID == nil || *alert.EmployeeID != *filter.EmployeeID) {
			continue
		}
		if filter.ProjectID != nil && (alert.ProjectID == nil || *alert.ProjectID != *filter.ProjectID) {
			continue
		}
		out = append(out, alert)
	}
	return out, nil
}

type memSessions struct {
	byToken map[string]persistence.Session
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: make(map[string]persistence.Session)}
}

func (m *memSessions) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if _, ok := m.byToken[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	m.byToken[session.Token] = session
	return session, nil
}

func (m *memSessions) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := m.byToken[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (m *memSessions) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, ok := m.byToken[token]
	if !ok || session.RevokedAt != nil {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	m.byToken[token] = session
	return session, nil
}

func (m *memSessions) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	for token, session := range m.byToken {
		if session.ExpiresAt.Before(reference) || session.RevokedAt != nil {
			delete(m.byToken, token)
		}
	}
	return nil
}

type memCredentials struct {
	byEmail map[string]persistence.Credentials
}

func newMemCredentials(credentials ...persistence.Credentials) *memCredentials {
	m := &memCredentials{byEmail: make(map[string]persistence.Credentials)}
	for _, c := range credentials {
		m.byEmail[c.Email] = c
	}
	return m
}

func (m *memCredentials) UpsertCredentials(ctx context.Context, credentials persistence.Credentials) error {
	m.byEmail[credentials.Email] = credentials
	return nil
}

func (m *memCredentials) GetCredentialsByEmail(ctx context.Context, email string) (persistence.Credentials, error) {
	credentials, ok := m.byEmail[email]
	if !ok {
		return persistence.Credentials{}, persistence.ErrNotFound
	}
	return credentials, nil
}

func (m *memCredentials) GetCredentialsByEmployee(ctx context.Context, employeeID string) (persistence.Credentials, error) {
	for _, credentials := range m.byEmail {
		if credentials.EmployeeID == employeeID {
			return credentials, nil
		}
	}
	return persistence.Credentials{}, persistence.ErrNotFound
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// sequenceID returns a deterministic id generator for tests.
func sequenceID(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s%d", prefix, counter)
	}
}
