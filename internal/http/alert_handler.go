package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
)

type alertService interface {
	Reevaluate(ctx context.Context, params application.ReevaluateParams) (application.ReevaluateResult, error)
	Acknowledge(ctx context.Context, params application.AlertActionParams) (persistence.Alert, error)
	Resolve(ctx context.Context, params application.AlertActionParams) (persistence.Alert, error)
	ListAlerts(ctx context.Context, params application.ListAlertsParams) ([]persistence.Alert, error)
}

type AlertHandler struct {
	service   alertService
	responder responder
	logger    *slog.Logger
}

func NewAlertHandler(service alertService, logger *slog.Logger) *AlertHandler {
	base := defaultLogger(logger)
	return &AlertHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AlertHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AlertHandler", operation, attrs...)
}

func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	params := application.ListAlertsParams{Principal: principal}
	query := r.URL.Query()
	if statuses := strings.TrimSpace(query.Get("statuses")); statuses != "" {
		params.Statuses = parseCSV(statuses)
	}
	if employeeID := strings.TrimSpace(query.Get("employee_id")); employeeID != "" {
		params.EmployeeID = &employeeID
	}
	if projectID := strings.TrimSpace(query.Get("project_id")); projectID != "" {
		params.ProjectID = &projectID
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.EmployeeID)

	alerts, err := h.service.ListAlerts(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "alert list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(alerts)).InfoContext(r.Context(), "alerts listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAlertsResponse{Alerts: toAlertDTOs(alerts)})
}

func (h *AlertHandler) Reevaluate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req reevaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Reevaluate", "principal_id", principal.EmployeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reevaluation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	from, err := calendar.ParseDate(strings.TrimSpace(req.From))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}
	to, err := calendar.ParseDate(strings.TrimSpace(req.To))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), "Reevaluate", "principal_id", principal.EmployeeID, "from", from.String(), "to", to.String())

	result, err := h.service.Reevaluate(r.Context(), application.ReevaluateParams{
		Principal: principal,
		From:      from,
		To:        to,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "alert reevaluation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("created", result.Created, "resolved", result.Resolved).InfoContext(r.Context(), "alerts reevaluated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reevaluateResponse{
		Created:  result.Created,
		Resolved: result.Resolved,
	})
}

func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "Acknowledge", func(ctx context.Context, params application.AlertActionParams) (persistence.Alert, error) {
		return h.service.Acknowledge(ctx, params)
	})
}

func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, "Resolve", func(ctx context.Context, params application.AlertActionParams) (persistence.Alert, error) {
		return h.service.Resolve(ctx, params)
	})
}

func (h *AlertHandler) act(w http.ResponseWriter, r *http.Request, operation string, action func(context.Context, application.AlertActionParams) (persistence.Alert, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	alertID, ok := AlertIDFromContext(r.Context())
	if !ok || strings.TrimSpace(alertID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAlertID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.EmployeeID, "alert_id", alertID)

	alert, err := action(r.Context(), application.AlertActionParams{
		Principal: principal,
		AlertID:   alertID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "alert action failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", alert.Status).InfoContext(r.Context(), "alert status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alertResponse{Alert: toAlertDTO(alert)})
}

type reevaluateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type reevaluateResponse struct {
	Created  int `json:"created"`
	Resolved int `json:"resolved"`
}

type alertResponse struct {
	Alert alertDTO `json:"alert"`
}

type listAlertsResponse struct {
	Alerts []alertDTO `json:"alerts"`
}

type alertDTO struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	Priority        string  `json:"priority"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	EmployeeID      *string `json:"employee_id,omitempty"`
	ProjectID       *string `json:"project_id,omitempty"`
	ScheduleEntryID *string `json:"schedule_entry_id,omitempty"`
	Status          string  `json:"status"`
	AcknowledgedAt  *string `json:"acknowledged_at,omitempty"`
	ResolvedAt      *string `json:"resolved_at,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

func toAlertDTO(alert persistence.Alert) alertDTO {
	return alertDTO{
		ID:              alert.ID,
		Type:            alert.Type,
		Priority:        alert.Priority,
		Title:           alert.Title,
		Message:         alert.Message,
		EmployeeID:      alert.EmployeeID,
		ProjectID:       alert.ProjectID,
		ScheduleEntryID: alert.ScheduleEntryID,
		Status:          alert.Status,
		AcknowledgedAt:  formatTimePtr(alert.AcknowledgedAt),
		ResolvedAt:      formatTimePtr(alert.ResolvedAt),
		CreatedAt:       alert.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:       alert.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toAlertDTOs(alerts []persistence.Alert) []alertDTO {
	if len(alerts) == 0 {
		return nil
	}
	out := make([]alertDTO, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, toAlertDTO(alert))
	}
	return out
}

func formatTimePtr(ts *time.Time) *string {
	if ts == nil {
		return nil
	}
	formatted := ts.UTC().Format(time.RFC3339Nano)
	return &formatted
}
