package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

func testDate(day int) calendar.Date {
	return calendar.NewDate(2024, time.March, day)
}

// principalMiddleware injects a fixed principal the way RequireSession would.
func principalMiddleware(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

type fakeAuthService struct {
	authenticate func(context.Context, application.AuthenticateParams) (application.AuthenticateResult, error)
	revoked      []string
}

func (f *fakeAuthService) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	return f.authenticate(ctx, params)
}

func (f *fakeAuthService) RevokeSession(ctx context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeAuthService) RegisterCredentials(ctx context.Context, principal application.Principal, employeeID, email, password string, isAdmin bool) error {
	return nil
}

type fakeScheduleService struct {
	createEntry func(context.Context, application.CreateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error)
	getEntry    func(context.Context, string) (persistence.ScheduleEntry, error)
	resolve     func(context.Context, application.AvailabilityParams) (planning.Timeline, error)
}

func (f *fakeScheduleService) CreateEntry(ctx context.Context, params application.CreateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error) {
	return f.createEntry(ctx, params)
}

func (f *fakeScheduleService) UpdateEntry(ctx context.Context, params application.UpdateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error) {
	return persistence.ScheduleEntry{}, nil, application.ErrNotFound
}

func (f *fakeScheduleService) GetEntry(ctx context.Context, id string) (persistence.ScheduleEntry, error) {
	if f.getEntry != nil {
		return f.getEntry(ctx, id)
	}
	return persistence.ScheduleEntry{}, application.ErrNotFound
}

func (f *fakeScheduleService) DeleteEntry(ctx context.Context, principal application.Principal, id string) error {
	return application.ErrNotFound
}

func (f *fakeScheduleService) ListEntries(ctx context.Context, params application.ListScheduleEntriesParams) ([]persistence.ScheduleEntry, []application.ConflictWarning, error) {
	return nil, nil, nil
}

func (f *fakeScheduleService) ResolveAvailability(ctx context.Context, params application.AvailabilityParams) (planning.Timeline, error) {
	return f.resolve(ctx, params)
}

type fakeEmployeeService struct {
	create func(context.Context, application.CreateEmployeeParams) (persistence.Employee, error)
}

func (f *fakeEmployeeService) CreateEmployee(ctx context.Context, params application.CreateEmployeeParams) (persistence.Employee, error) {
	return f.create(ctx, params)
}

func (f *fakeEmployeeService) UpdateEmployee(ctx context.Context, params application.UpdateEmployeeParams) (persistence.Employee, error) {
	return persistence.Employee{}, application.ErrNotFound
}

func (f *fakeEmployeeService) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	return persistence.Employee{}, application.ErrNotFound
}

func (f *fakeEmployeeService) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeService) DeleteEmployee(ctx context.Context, principal application.Principal, id string) error {
	return application.ErrNotFound
}

type fakeVacationService struct {
	approve func(context.Context, application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error)
}

func (f *fakeVacationService) RequestVacation(ctx context.Context, params application.RequestVacationParams) (persistence.VacationRequest, []application.ConflictWarning, error) {
	return persistence.VacationRequest{}, nil, application.ErrNotFound
}

func (f *fakeVacationService) Approve(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error) {
	return f.approve(ctx, params)
}

func (f *fakeVacationService) Reject(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, error) {
	return persistence.VacationRequest{}, application.ErrNotFound
}

func (f *fakeVacationService) Cancel(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, error) {
	return persistence.VacationRequest{}, application.ErrNotFound
}

func (f *fakeVacationService) GetVacation(ctx context.Context, id string) (persistence.VacationRequest, error) {
	return persistence.VacationRequest{}, application.ErrNotFound
}

func (f *fakeVacationService) ListVacations(ctx context.Context, filter persistence.VacationFilter) ([]persistence.VacationRequest, error) {
	return nil, nil
}

type fakeAlertService struct {
	reevaluate func(context.Context, application.ReevaluateParams) (application.ReevaluateResult, error)
}

func (f *fakeAlertService) Reevaluate(ctx context.Context, params application.ReevaluateParams) (application.ReevaluateResult, error) {
	return f.reevaluate(ctx, params)
}

func (f *fakeAlertService) Acknowledge(ctx context.Context, params application.AlertActionParams) (persistence.Alert, error) {
	return persistence.Alert{}, application.ErrNotFound
}

func (f *fakeAlertService) Resolve(ctx context.Context, params application.AlertActionParams) (persistence.Alert, error) {
	return persistence.Alert{}, application.ErrNotFound
}

func (f *fakeAlertService) ListAlerts(ctx context.Context, params application.ListAlertsParams) ([]persistence.Alert, error) {
	return nil, nil
}

func TestCreateSession_IssuesTokenArtifacts(t *testing.T) {
	t.Parallel()

	expires := time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)
	service := &fakeAuthService{
		authenticate: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
			if params.Email != "emp1@example.com" {
				t.Errorf("email = %q, want normalized emp1@example.com", params.Email)
			}
			return application.AuthenticateResult{
				Employee:  persistence.Employee{ID: "emp1"},
				Principal: application.Principal{EmployeeID: "emp1"},
				Session:   persistence.Session{Token: "tok123", ExpiresAt: expires},
			}, nil
		},
	}
	router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

	body := strings.NewReader(`{"email":" Emp1@Example.com ","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions", body)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusCreated, recorder.Body.String())
	}
	if got := recorder.Header().Get("X-Session-Token"); got != "tok123" {
		t.Fatalf("X-Session-Token = %q, want tok123", got)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == "session_token" {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil || sessionCookie.Value != "tok123" {
		t.Fatalf("session_token cookie = %+v, want value tok123", sessionCookie)
	}

	var payload loginResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token != "tok123" {
		t.Fatalf("token = %q, want tok123", payload.Token)
	}
	if payload.Principal.EmployeeID != "emp1" {
		t.Fatalf("principal employee id = %q, want emp1", payload.Principal.EmployeeID)
	}
}

func TestCreateSession_InvalidCredentials(t *testing.T) {
	t.Parallel()

	service := &fakeAuthService{
		authenticate: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
			return application.AuthenticateResult{}, application.ErrInvalidCredentials
		},
	}
	router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"email":"x@example.com","password":"bad"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnauthorized)
	}
	var body errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
		t.Fatalf("error code = %q, want AUTH_INVALID_CREDENTIALS", body.ErrorCode)
	}
}

func TestDeleteCurrentSession_RevokesToken(t *testing.T) {
	t.Parallel()

	service := &fakeAuthService{}
	router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

	req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
	req.Header.Set("Authorization", "Bearer tok123")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNoContent)
	}
	if len(service.revoked) != 1 || service.revoked[0] != "tok123" {
		t.Fatalf("revoked tokens = %v, want [tok123]", service.revoked)
	}
}

func TestCreateEntry_SerializesWarnings(t *testing.T) {
	t.Parallel()

	date := testDate(11)
	service := &fakeScheduleService{
		createEntry: func(ctx context.Context, params application.CreateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error) {
			entry := persistence.ScheduleEntry{
				ID:         "entry1",
				EmployeeID: params.Input.EmployeeID,
				Date:       params.Input.Date,
				Start:      params.Input.Start,
				End:        params.Input.End,
				StatusCode: params.Input.StatusCode,
			}
			warnings := []application.ConflictWarning{{
				Kind:       "OVERLAP",
				Severity:   "HIGH",
				EmployeeID: params.Input.EmployeeID,
				Date:       date,
				ExistingID: "entry0",
				Message:    "Schedule overlap",
			}}
			return entry, warnings, nil
		},
	}
	router := NewRouter(RouterConfig{
		Schedule:   NewScheduleHandler(service, nil),
		Middleware: []func(http.Handler) http.Handler{principalMiddleware(application.Principal{EmployeeID: "emp1"})},
	})

	body := strings.NewReader(`{"employee_id":"emp1","date":"2024-03-11","start":"09:00","end":"12:00","status_code":"WORK"}`)
	req := httptest.NewRequest(http.MethodPost, "/entries", body)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusCreated, recorder.Body.String())
	}

	var payload entryResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Entry.ID != "entry1" {
		t.Fatalf("entry id = %q, want entry1", payload.Entry.ID)
	}
	if payload.Entry.Date != "2024-03-11" {
		t.Fatalf("entry date = %q, want 2024-03-11", payload.Entry.Date)
	}
	if len(payload.Warnings) != 1 {
		t.Fatalf("warnings = %+v, want exactly one", payload.Warnings)
	}
	if payload.Warnings[0].Kind != "OVERLAP" || payload.Warnings[0].ExistingID != "entry0" {
		t.Fatalf("warning = %+v, want OVERLAP against entry0", payload.Warnings[0])
	}
}

func TestCreateEntry_RejectsMalformedDate(t *testing.T) {
	t.Parallel()

	service := &fakeScheduleService{
		createEntry: func(ctx context.Context, params application.CreateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error) {
			t.Fatal("service should not be called for a malformed date")
			return persistence.ScheduleEntry{}, nil, nil
		},
	}
	router := NewRouter(RouterConfig{Schedule: NewScheduleHandler(service, nil)})

	body := strings.NewReader(`{"employee_id":"emp1","date":"11.03.2024","start":"09:00","end":"12:00","status_code":"WORK"}`)
	req := httptest.NewRequest(http.MethodPost, "/entries", body)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}
}

func TestCreateEntry_ValidationErrorsMapToUnprocessable(t *testing.T) {
	t.Parallel()

	service := &fakeScheduleService{
		createEntry: func(ctx context.Context, params application.CreateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error) {
			return persistence.ScheduleEntry{}, nil, &application.ValidationError{
				FieldErrors: map[string]string{"status_code": "status code is required"},
			}
		},
	}
	router := NewRouter(RouterConfig{Schedule: NewScheduleHandler(service, nil)})

	body := strings.NewReader(`{"employee_id":"emp1","date":"2024-03-11","start":"09:00","end":"12:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/entries", body)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusUnprocessableEntity)
	}
	var payload errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Errors["status_code"] != "status code is required" {
		t.Fatalf("errors = %v, want status_code detail", payload.Errors)
	}
}

func TestGetEntry_NotFound(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{Schedule: NewScheduleHandler(&fakeScheduleService{}, nil)})

	req := httptest.NewRequest(http.MethodGet, "/entries/missing", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusNotFound)
	}
}

func TestCreateEmployee_Forbidden(t *testing.T) {
	t.Parallel()

	service := &fakeEmployeeService{
		create: func(ctx context.Context, params application.CreateEmployeeParams) (persistence.Employee, error) {
			return persistence.Employee{}, application.ErrUnauthorized
		},
	}
	router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(service, nil)})

	body := strings.NewReader(`{"name":"Dana","email":"dana@example.com","weekly_hours":40,"available":true}`)
	req := httptest.NewRequest(http.MethodPost, "/employees", body)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusForbidden)
	}
	var payload errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ErrorCode != "AUTH_FORBIDDEN" {
		t.Fatalf("error code = %q, want AUTH_FORBIDDEN", payload.ErrorCode)
	}
}

func TestAvailability_RendersTimeline(t *testing.T) {
	t.Parallel()

	schedule := &fakeScheduleService{
		resolve: func(ctx context.Context, params application.AvailabilityParams) (planning.Timeline, error) {
			if params.EmployeeID != "emp1" {
				t.Errorf("employee id = %q, want emp1", params.EmployeeID)
			}
			return planning.Timeline{
				EmployeeID:    "emp1",
				DailyCapacity: decimal.NewFromInt(8),
				Days: []planning.DayAvailability{
					{Date: testDate(11), State: planning.StateScheduled, AllocatedHours: decimal.NewFromInt(3), Entries: []planning.ScheduleEntry{{ID: "entry1"}}},
					{Date: testDate(12), State: planning.StateFree},
				},
			}, nil
		},
	}
	employees := &fakeEmployeeService{}
	router := NewRouter(RouterConfig{
		Employees: NewEmployeeHandler(employees, nil),
		Schedule:  NewScheduleHandler(schedule, nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/employees/emp1/availability?from=2024-03-11&to=2024-03-12", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusOK, recorder.Body.String())
	}

	var payload availabilityResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Timeline.EmployeeID != "emp1" {
		t.Fatalf("timeline employee = %q, want emp1", payload.Timeline.EmployeeID)
	}
	if len(payload.Timeline.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(payload.Timeline.Days))
	}
	if payload.Timeline.Days[0].State != string(planning.StateScheduled) {
		t.Fatalf("day state = %q, want SCHEDULED", payload.Timeline.Days[0].State)
	}
	if len(payload.Timeline.Days[0].EntryIDs) != 1 || payload.Timeline.Days[0].EntryIDs[0] != "entry1" {
		t.Fatalf("entry ids = %v, want [entry1]", payload.Timeline.Days[0].EntryIDs)
	}
}

func TestVacationApprove_RoutesAction(t *testing.T) {
	t.Parallel()

	service := &fakeVacationService{
		approve: func(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error) {
			if params.VacationID != "vac1" {
				t.Errorf("vacation id = %q, want vac1", params.VacationID)
			}
			return persistence.VacationRequest{
				ID:         "vac1",
				EmployeeID: "emp1",
				StartDate:  testDate(11),
				EndDate:    testDate(12),
				Type:       "PAID",
				Status:     "APPROVED",
			}, nil, nil
		},
	}
	router := NewRouter(RouterConfig{Vacations: NewVacationHandler(service, nil)})

	req := httptest.NewRequest(http.MethodPost, "/vacations/vac1/approve", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusOK, recorder.Body.String())
	}
	var payload vacationResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Vacation.Status != "APPROVED" {
		t.Fatalf("status = %q, want APPROVED", payload.Vacation.Status)
	}
}

func TestAlertReevaluate_ReportsCounts(t *testing.T) {
	t.Parallel()

	service := &fakeAlertService{
		reevaluate: func(ctx context.Context, params application.ReevaluateParams) (application.ReevaluateResult, error) {
			if params.From != testDate(1) || params.To != testDate(31) {
				t.Errorf("range = %s..%s, want 2024-03-01..2024-03-31", params.From, params.To)
			}
			return application.ReevaluateResult{Created: 2, Resolved: 1}, nil
		},
	}
	router := NewRouter(RouterConfig{Alerts: NewAlertHandler(service, nil)})

	body := strings.NewReader(`{"from":"2024-03-01","to":"2024-03-31"}`)
	req := httptest.NewRequest(http.MethodPost, "/alerts/reevaluate", body)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", recorder.Code, http.StatusOK, recorder.Body.String())
	}
	var payload reevaluateResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Created != 2 || payload.Resolved != 1 {
		t.Fatalf("counts = %+v, want created 2 resolved 1", payload)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{Employees: NewEmployeeHandler(&fakeEmployeeService{}, nil)})

	req := httptest.NewRequest(http.MethodPatch, "/employees", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
	}
	if allow := recorder.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Fatalf("Allow header = %q, want POST listed", allow)
	}
}
