package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/planning"
)

type scheduleService interface {
	CreateEntry(ctx context.Context, params application.CreateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error)
	UpdateEntry(ctx context.Context, params application.UpdateScheduleEntryParams) (persistence.ScheduleEntry, []application.ConflictWarning, error)
	GetEntry(ctx context.Context, id string) (persistence.ScheduleEntry, error)
	DeleteEntry(ctx context.Context, principal application.Principal, id string) error
	ListEntries(ctx context.Context, params application.ListScheduleEntriesParams) ([]persistence.ScheduleEntry, []application.ConflictWarning, error)
	ResolveAvailability(ctx context.Context, params application.AvailabilityParams) (planning.Timeline, error)
}

type ScheduleHandler struct {
	service   scheduleService
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	return &ScheduleHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scheduleEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.EmployeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode entry request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.EmployeeID)

	entry, warnings, err := h.service.CreateEntry(r.Context(), application.CreateScheduleEntryParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "entry creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("entry_id", entry.ID, "warning_count", len(warnings)).InfoContext(r.Context(), "entry created")
	h.renderEntry(r.Context(), w, entry, warnings, http.StatusCreated)
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entryID, ok := EntryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(entryID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEntryID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req scheduleEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "entry_id", entryID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode entry update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "entry_id", entryID)

	entry, warnings, err := h.service.UpdateEntry(r.Context(), application.UpdateScheduleEntryParams{
		Principal: principal,
		EntryID:   entryID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "entry update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("warning_count", len(warnings)).InfoContext(r.Context(), "entry updated")
	h.renderEntry(r.Context(), w, entry, warnings, http.StatusOK)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entryID, ok := EntryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(entryID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEntryID)
		return
	}

	entry, err := h.service.GetEntry(r.Context(), entryID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderEntry(r.Context(), w, entry, nil, http.StatusOK)
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entryID, ok := EntryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(entryID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEntryID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.EmployeeID, "entry_id", entryID)
	if err := h.service.DeleteEntry(r.Context(), principal, entryID); err != nil {
		logger.ErrorContext(r.Context(), "entry delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "entry deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params, err := buildListEntriesParams(r.URL.Query(), principal)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.EmployeeID)

	entries, warnings, err := h.service.ListEntries(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "entry list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "entries listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEntriesResponse{
		Entries:  toEntryDTOs(entries),
		Warnings: toWarningDTOs(warnings),
	})
}

func (h *ScheduleHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	employeeID, ok := EmployeeIDFromContext(r.Context())
	if !ok || strings.TrimSpace(employeeID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEmployeeID)
		return
	}

	from, err := calendar.ParseDate(strings.TrimSpace(r.URL.Query().Get("from")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	to, err := calendar.ParseDate(strings.TrimSpace(r.URL.Query().Get("to")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Availability", "principal_id", principal.EmployeeID, "employee_id", employeeID)

	timeline, err := h.service.ResolveAvailability(r.Context(), application.AvailabilityParams{
		Principal:  principal,
		EmployeeID: employeeID,
		From:       from,
		To:         to,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "availability resolution failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("day_count", len(timeline.Days)).InfoContext(r.Context(), "availability resolved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{Timeline: toTimelineDTO(timeline)})
}

func (h *ScheduleHandler) renderEntry(ctx context.Context, w http.ResponseWriter, entry persistence.ScheduleEntry, warnings []application.ConflictWarning, status int) {
	payload := entryResponse{
		Entry:    toEntryDTO(entry),
		Warnings: toWarningDTOs(warnings),
	}
	h.responder.writeJSON(ctx, w, status, payload)
}

type scheduleEntryRequest struct {
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	CrossesMidnight bool    `json:"crosses_midnight"`
	ProjectID       *string `json:"project_id"`
	TeamID          *string `json:"team_id"`
	StatusCode      string  `json:"status_code"`
}

func (r scheduleEntryRequest) toInput() (application.ScheduleEntryInput, error) {
	date, err := calendar.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return application.ScheduleEntryInput{}, errInvalidDate
	}
	start, err := calendar.ParseClockTime(strings.TrimSpace(r.Start))
	if err != nil {
		return application.ScheduleEntryInput{}, errInvalidClockTime
	}
	end, err := calendar.ParseClockTime(strings.TrimSpace(r.End))
	if err != nil {
		return application.ScheduleEntryInput{}, errInvalidClockTime
	}

	return application.ScheduleEntryInput{
		EmployeeID:      strings.TrimSpace(r.EmployeeID),
		Date:            date,
		Start:           start,
		End:             end,
		CrossesMidnight: r.CrossesMidnight,
		ProjectID:       r.ProjectID,
		TeamID:          r.TeamID,
		StatusCode:      strings.TrimSpace(r.StatusCode),
	}, nil
}

type entryResponse struct {
	Entry    scheduleEntryDTO     `json:"entry"`
	Warnings []conflictWarningDTO `json:"warnings,omitempty"`
}

type listEntriesResponse struct {
	Entries  []scheduleEntryDTO   `json:"entries"`
	Warnings []conflictWarningDTO `json:"warnings,omitempty"`
}

type scheduleEntryDTO struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	Date            string  `json:"date"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	CrossesMidnight bool    `json:"crosses_midnight"`
	ProjectID       *string `json:"project_id,omitempty"`
	TeamID          *string `json:"team_id,omitempty"`
	StatusCode      string  `json:"status_code"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toEntryDTO(entry persistence.ScheduleEntry) scheduleEntryDTO {
	return scheduleEntryDTO{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		Date:            entry.Date.String(),
		Start:           entry.Start.String(),
		End:             entry.End.String(),
		CrossesMidnight: entry.CrossesMidnight,
		ProjectID:       entry.ProjectID,
		TeamID:          entry.TeamID,
		StatusCode:      entry.StatusCode,
		CreatedAt:       entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       entry.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toEntryDTOs(entries []persistence.ScheduleEntry) []scheduleEntryDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]scheduleEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toEntryDTO(entry))
	}
	return out
}

type conflictWarningDTO struct {
	Kind         string `json:"kind"`
	Severity     string `json:"severity"`
	EmployeeID   string `json:"employee_id"`
	ProjectID    string `json:"project_id,omitempty"`
	Date         string `json:"date"`
	ExistingKind string `json:"existing_kind,omitempty"`
	ExistingID   string `json:"existing_id,omitempty"`
	Message      string `json:"message"`
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	if len(warnings) == 0 {
		return nil
	}

	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, conflictWarningDTO{
			Kind:         warning.Kind,
			Severity:     warning.Severity,
			EmployeeID:   warning.EmployeeID,
			ProjectID:    warning.ProjectID,
			Date:         warning.Date.String(),
			ExistingKind: warning.ExistingKind,
			ExistingID:   warning.ExistingID,
			Message:      warning.Message,
		})
	}
	return out
}

type availabilityResponse struct {
	Timeline timelineDTO `json:"timeline"`
}

type timelineDTO struct {
	EmployeeID    string            `json:"employee_id"`
	DailyCapacity string            `json:"daily_capacity"`
	Days          []dayAvailability `json:"days"`
}

type dayAvailability struct {
	Date             string   `json:"date"`
	State            string   `json:"state"`
	AllocatedHours   string   `json:"allocated_hours"`
	Uncertain        bool     `json:"uncertain,omitempty"`
	EntryIDs         []string `json:"entry_ids,omitempty"`
	VacationID       *string  `json:"vacation_id,omitempty"`
	PendingVacations []string `json:"pending_vacation_ids,omitempty"`
	AssignmentIDs    []string `json:"assignment_ids,omitempty"`
}

func toTimelineDTO(timeline planning.Timeline) timelineDTO {
	dto := timelineDTO{
		EmployeeID:    timeline.EmployeeID,
		DailyCapacity: timeline.DailyCapacity.String(),
	}
	for _, day := range timeline.Days {
		dayDTO := dayAvailability{
			Date:           day.Date.String(),
			State:          string(day.State),
			AllocatedHours: day.AllocatedHours.String(),
			Uncertain:      day.Uncertain,
		}
		for _, entry := range day.Entries {
			dayDTO.EntryIDs = append(dayDTO.EntryIDs, entry.ID)
		}
		if day.Vacation != nil {
			id := day.Vacation.ID
			dayDTO.VacationID = &id
		}
		for _, pending := range day.PendingVacations {
			dayDTO.PendingVacations = append(dayDTO.PendingVacations, pending.ID)
		}
		for _, assignment := range day.Assignments {
			dayDTO.AssignmentIDs = append(dayDTO.AssignmentIDs, assignment.ID)
		}
		dto.Days = append(dto.Days, dayDTO)
	}
	return dto
}

func buildListEntriesParams(values url.Values, principal application.Principal) (application.ListScheduleEntriesParams, error) {
	params := application.ListScheduleEntriesParams{Principal: principal}

	if employeeID := strings.TrimSpace(values.Get("employee_id")); employeeID != "" {
		params.EmployeeID = &employeeID
	}
	if projectID := strings.TrimSpace(values.Get("project_id")); projectID != "" {
		params.ProjectID = &projectID
	}
	if from := strings.TrimSpace(values.Get("from")); from != "" {
		date, err := calendar.ParseDate(from)
		if err != nil {
			return application.ListScheduleEntriesParams{}, errInvalidDate
		}
		params.From = &date
	}
	if to := strings.TrimSpace(values.Get("to")); to != "" {
		date, err := calendar.ParseDate(to)
		if err != nil {
			return application.ListScheduleEntriesParams{}, errInvalidDate
		}
		params.To = &date
	}

	return params, nil
}
