package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/persistence"
)

type assignmentService interface {
	CreateAssignment(ctx context.Context, params application.CreateAssignmentParams) (persistence.ProjectAssignment, []application.ConflictWarning, error)
	EndAssignment(ctx context.Context, params application.EndAssignmentParams) (persistence.ProjectAssignment, error)
	GetAssignment(ctx context.Context, id string) (persistence.ProjectAssignment, error)
	ListAssignments(ctx context.Context, filter persistence.AssignmentFilter) ([]persistence.ProjectAssignment, error)
	DeleteAssignment(ctx context.Context, principal application.Principal, id string) error
}

type AssignmentHandler struct {
	service   assignmentService
	responder responder
	logger    *slog.Logger
}

func NewAssignmentHandler(service assignmentService, logger *slog.Logger) *AssignmentHandler {
	base := defaultLogger(logger)
	return &AssignmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AssignmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AssignmentHandler", operation, attrs...)
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.EmployeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode assignment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.EmployeeID)

	assignment, warnings, err := h.service.CreateAssignment(r.Context(), application.CreateAssignmentParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("assignment_id", assignment.ID, "warning_count", len(warnings)).InfoContext(r.Context(), "assignment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, assignmentResponse{
		Assignment: toAssignmentDTO(assignment),
		Warnings:   toWarningDTOs(warnings),
	})
}

func (h *AssignmentHandler) End(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assignmentID, ok := AssignmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assignmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssignmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req endAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "End", "principal_id", principal.EmployeeID, "assignment_id", assignmentID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode end request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	end, err := calendar.ParseDate(strings.TrimSpace(req.End))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	logger := h.log(r.Context(), "End", "principal_id", principal.EmployeeID, "assignment_id", assignmentID)

	assignment, err := h.service.EndAssignment(r.Context(), application.EndAssignmentParams{
		Principal:    principal,
		AssignmentID: assignmentID,
		End:          end,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment end failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "assignment ended")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assignmentID, ok := AssignmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assignmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssignmentID)
		return
	}

	assignment, err := h.service.GetAssignment(r.Context(), assignmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, assignmentResponse{Assignment: toAssignmentDTO(assignment)})
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	filter, err := buildAssignmentFilter(r.URL.Query())
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.EmployeeID)

	assignments, err := h.service.ListAssignments(r.Context(), filter)
	if err != nil {
		logger.ErrorContext(r.Context(), "assignment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(assignments)).InfoContext(r.Context(), "assignments listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAssignmentsResponse{Assignments: toAssignmentDTOs(assignments)})
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	assignmentID, ok := AssignmentIDFromContext(r.Context())
	if !ok || strings.TrimSpace(assignmentID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAssignmentID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.EmployeeID, "assignment_id", assignmentID)
	if err := h.service.DeleteAssignment(r.Context(), principal, assignmentID); err != nil {
		logger.ErrorContext(r.Context(), "assignment delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "assignment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type assignmentRequest struct {
	EmployeeID  string           `json:"employee_id"`
	ProjectID   string           `json:"project_id"`
	Start       string           `json:"start"`
	End         *string          `json:"end"`
	HoursPerDay *decimal.Decimal `json:"hours_per_day"`
	Percent     *decimal.Decimal `json:"percent"`
}

func (r assignmentRequest) toInput() (application.AssignmentInput, error) {
	start, err := calendar.ParseDate(strings.TrimSpace(r.Start))
	if err != nil {
		return application.AssignmentInput{}, errInvalidDate
	}

	input := application.AssignmentInput{
		EmployeeID:  strings.TrimSpace(r.EmployeeID),
		ProjectID:   strings.TrimSpace(r.ProjectID),
		Start:       start,
		HoursPerDay: r.HoursPerDay,
		Percent:     r.Percent,
	}

	if r.End != nil && strings.TrimSpace(*r.End) != "" {
		end, err := calendar.ParseDate(strings.TrimSpace(*r.End))
		if err != nil {
			return application.AssignmentInput{}, errInvalidDate
		}
		input.End = &end
	}

	return input, nil
}

type endAssignmentRequest struct {
	End string `json:"end"`
}

type assignmentResponse struct {
	Assignment assignmentDTO        `json:"assignment"`
	Warnings   []conflictWarningDTO `json:"warnings,omitempty"`
}

type listAssignmentsResponse struct {
	Assignments []assignmentDTO `json:"assignments"`
}

type assignmentDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	ProjectID   string  `json:"project_id"`
	Start       string  `json:"start"`
	End         *string `json:"end,omitempty"`
	HoursPerDay *string `json:"hours_per_day,omitempty"`
	Percent     *string `json:"percent,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toAssignmentDTO(assignment persistence.ProjectAssignment) assignmentDTO {
	dto := assignmentDTO{
		ID:         assignment.ID,
		EmployeeID: assignment.EmployeeID,
		ProjectID:  assignment.ProjectID,
		Start:      assignment.StartDate.String(),
		CreatedAt:  assignment.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  assignment.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if assignment.EndDate != nil {
		end := assignment.EndDate.String()
		dto.End = &end
	}
	if assignment.HoursPerDay != nil {
		hours := assignment.HoursPerDay.String()
		dto.HoursPerDay = &hours
	}
	if assignment.Percent != nil {
		percent := assignment.Percent.String()
		dto.Percent = &percent
	}
	return dto
}

func toAssignmentDTOs(assignments []persistence.ProjectAssignment) []assignmentDTO {
	if len(assignments) == 0 {
		return nil
	}
	out := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, toAssignmentDTO(assignment))
	}
	return out
}

func buildAssignmentFilter(values url.Values) (persistence.AssignmentFilter, error) {
	var filter persistence.AssignmentFilter

	if employeeID := strings.TrimSpace(values.Get("employee_id")); employeeID != "" {
		filter.EmployeeID = &employeeID
	}
	if projectID := strings.TrimSpace(values.Get("project_id")); projectID != "" {
		filter.ProjectID = &projectID
	}
	if activeOn := strings.TrimSpace(values.Get("active_on")); activeOn != "" {
		date, err := calendar.ParseDate(activeOn)
		if err != nil {
			return persistence.AssignmentFilter{}, errInvalidDate
		}
		filter.ActiveOn = &date
	}

	return filter, nil
}
