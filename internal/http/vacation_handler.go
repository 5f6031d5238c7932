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
)

type vacationService interface {
	RequestVacation(ctx context.Context, params application.RequestVacationParams) (persistence.VacationRequest, []application.ConflictWarning, error)
	Approve(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error)
	Reject(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, error)
	Cancel(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, error)
	GetVacation(ctx context.Context, id string) (persistence.VacationRequest, error)
	ListVacations(ctx context.Context, filter persistence.VacationFilter) ([]persistence.VacationRequest, error)
}

type VacationHandler struct {
	service   vacationService
	responder responder
	logger    *slog.Logger
}

func NewVacationHandler(service vacationService, logger *slog.Logger) *VacationHandler {
	base := defaultLogger(logger)
	return &VacationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *VacationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "VacationHandler", operation, attrs...)
}

func (h *VacationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req vacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.EmployeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode vacation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.EmployeeID)

	vacation, warnings, err := h.service.RequestVacation(r.Context(), application.RequestVacationParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "vacation request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("vacation_id", vacation.ID, "warning_count", len(warnings)).InfoContext(r.Context(), "vacation requested")
	h.renderVacation(r.Context(), w, vacation, warnings, http.StatusCreated)
}

func (h *VacationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	vacationID, ok := VacationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(vacationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidVacationID)
		return
	}

	vacation, err := h.service.GetVacation(r.Context(), vacationID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.renderVacation(r.Context(), w, vacation, nil, http.StatusOK)
}

func (h *VacationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	filter, err := buildVacationFilter(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.EmployeeID)

	vacations, err := h.service.ListVacations(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "vacation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(vacations)).InfoContext(r.Context(), "vacations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listVacationsResponse{Vacations: toVacationDTOs(vacations)})
}

func (h *VacationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Approve", func(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error) {
		return h.service.Approve(ctx, params)
	})
}

func (h *VacationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Reject", func(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error) {
		vacation, err := h.service.Reject(ctx, params)
		return vacation, nil, err
	})
}

func (h *VacationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "Cancel", func(ctx context.Context, params application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error) {
		vacation, err := h.service.Cancel(ctx, params)
		return vacation, nil, err
	})
}

func (h *VacationHandler) decide(w http.ResponseWriter, r *http.Request, operation string, decision func(context.Context, application.VacationDecisionParams) (persistence.VacationRequest, []application.ConflictWarning, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	vacationID, ok := VacationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(vacationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidVacationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.EmployeeID, "vacation_id", vacationID)

	vacation, warnings, err := decision(r.Context(), application.VacationDecisionParams{
		Principal:  principal,
		VacationID: vacationID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "vacation decision failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", vacation.Status).InfoContext(r.Context(), "vacation decision applied")
	h.renderVacation(r.Context(), w, vacation, warnings, http.StatusOK)
}

func (h *VacationHandler) renderVacation(ctx context.Context, w http.ResponseWriter, vacation persistence.VacationRequest, warnings []application.ConflictWarning, status int) {
	payload := vacationResponse{
		Vacation: toVacationDTO(vacation),
		Warnings: toWarningDTOs(warnings),
	}
	h.responder.writeJSON(ctx, w, status, payload)
}

type vacationRequest struct {
	EmployeeID string `json:"employee_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Type       string `json:"type"`
}

func (r vacationRequest) toInput() (application.VacationInput, error) {
	start, err := calendar.ParseDate(strings.TrimSpace(r.Start))
	if err != nil {
		return application.VacationInput{}, errInvalidDate
	}
	end, err := calendar.ParseDate(strings.TrimSpace(r.End))
	if err != nil {
		return application.VacationInput{}, errInvalidDate
	}

	return application.VacationInput{
		EmployeeID: strings.TrimSpace(r.EmployeeID),
		Start:      start,
		End:        end,
		Type:       strings.TrimSpace(r.Type),
	}, nil
}

type vacationResponse struct {
	Vacation vacationDTO          `json:"vacation"`
	Warnings []conflictWarningDTO `json:"warnings,omitempty"`
}

type listVacationsResponse struct {
	Vacations []vacationDTO `json:"vacations"`
}

type vacationDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toVacationDTO(vacation persistence.VacationRequest) vacationDTO {
	return vacationDTO{
		ID:         vacation.ID,
		EmployeeID: vacation.EmployeeID,
		Start:      vacation.StartDate.String(),
		End:        vacation.EndDate.String(),
		Type:       vacation.Type,
		Status:     vacation.Status,
		CreatedAt:  vacation.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  vacation.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toVacationDTOs(vacations []persistence.VacationRequest) []vacationDTO {
	if len(vacations) == 0 {
		return nil
	}
	out := make([]vacationDTO, 0, len(vacations))
	for _, vacation := range vacations {
		out = append(out, toVacationDTO(vacation))
	}
	return out
}

func buildVacationFilter(values url.Values) (persistence.VacationFilter, error) {
	var filter persistence.VacationFilter

	if employeeID := strings.TrimSpace(values.Get("employee_id")); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if statuses := strings.TrimSpace(values.Get("statuses")); statuses != "" {
		filter.Statuses = parseCSV(statuses)
	}
	if from := strings.TrimSpace(values.Get("from")); from != "" {
		date, err := calendar.ParseDate(from)
		if err != nil {
			return persistence.VacationFilter{}, errInvalidDate
		}
		filter.From = &date
	}
	if to := strings.TrimSpace(values.Get("to")); to != "" {
		date, err := calendar.ParseDate(to)
		if err != nil {
			return persistence.VacationFilter{}, errInvalidDate
		}
		filter.To = &date
	}

	return filter, nil
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
