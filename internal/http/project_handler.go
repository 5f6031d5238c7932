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

type projectService interface {
	CreateProject(ctx context.Context, params application.CreateProjectParams) (persistence.Project, error)
	UpdateProject(ctx context.Context, params application.UpdateProjectParams) (persistence.Project, error)
	GetProject(ctx context.Context, id string) (persistence.Project, error)
	ListProjects(ctx context.Context) ([]persistence.Project, error)
	DeleteProject(ctx context.Context, principal application.Principal, id string) error
}

type ProjectHandler struct {
	service   projectService
	responder responder
	logger    *slog.Logger
}

func NewProjectHandler(service projectService, logger *slog.Logger) *ProjectHandler {
	base := defaultLogger(logger)
	return &ProjectHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProjectHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProjectHandler", operation, attrs...)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.EmployeeID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode project request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.EmployeeID)

	project, err := h.service.CreateProject(r.Context(), application.CreateProjectParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "project creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("project_id", project.ID).InfoContext(r.Context(), "project created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "project_id", projectID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode project update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.EmployeeID, "project_id", projectID)

	project, err := h.service.UpdateProject(r.Context(), application.UpdateProjectParams{
		Principal: principal,
		ProjectID: projectID,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "project update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "project updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	project, err := h.service.GetProject(r.Context(), projectID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, projectResponse{Project: toProjectDTO(project)})
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	projectID, ok := ProjectIDFromContext(r.Context())
	if !ok || strings.TrimSpace(projectID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing project id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidProjectID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.EmployeeID, "project_id", projectID)
	if err := h.service.DeleteProject(r.Context(), principal, projectID); err != nil {
		logger.ErrorContext(r.Context(), "project delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "project deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.EmployeeID)
	projects, err := h.service.ListProjects(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "project list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(projects)).InfoContext(r.Context(), "projects listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listProjectsResponse{Projects: toProjectDTOs(projects)})
}

type projectRequest struct {
	Name         string               `json:"name"`
	Description  *string              `json:"description"`
	Requirements []requirementRequest `json:"requirements"`
}

type requirementRequest struct {
	Date          string `json:"date"`
	Qualification string `json:"qualification"`
	Required      int    `json:"required"`
}

func (r projectRequest) toInput() (application.ProjectInput, error) {
	input := application.ProjectInput{
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
	}
	for _, req := range r.Requirements {
		date, err := calendar.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			return application.ProjectInput{}, errInvalidDate
		}
		input.Requirements = append(input.Requirements, application.RequirementInput{
			Date:          date,
			Qualification: strings.TrimSpace(req.Qualification),
			Required:      req.Required,
		})
	}
	return input, nil
}

type projectResponse struct {
	Project projectDTO `json:"project"`
}

type listProjectsResponse struct {
	Projects []projectDTO `json:"projects"`
}

type projectDTO struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  *string          `json:"description,omitempty"`
	Requirements []requirementDTO `json:"requirements"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

type requirementDTO struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Qualification string `json:"qualification"`
	Required      int    `json:"required"`
}

func toProjectDTO(project persistence.Project) projectDTO {
	dto := projectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   project.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, requirement := range project.Requirements {
		dto.Requirements = append(dto.Requirements, requirementDTO{
			ID:            requirement.ID,
			Date:          requirement.Date.String(),
			Qualification: requirement.Qualification,
			Required:      requirement.Required,
		})
	}
	return dto
}

func toProjectDTOs(projects []persistence.Project) []projectDTO {
	if len(projects) == 0 {
		return nil
	}
	out := make([]projectDTO, 0, len(projects))
	for _, project := range projects {
		out = append(out, toProjectDTO(project))
	}
	return out
}
