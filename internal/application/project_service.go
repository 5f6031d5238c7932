package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// ProjectService manages the project catalog and its staffing requirements.
type ProjectService struct {
	projects    persistence.ProjectRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewProjectService wires dependencies for project catalog operations.
func NewProjectService(projects persistence.ProjectRepository, idGenerator func() string, now func() time.Time) *ProjectService {
	return NewProjectServiceWithLogger(projects, idGenerator, now, nil)
}

// NewProjectServiceWithLogger wires dependencies including a base logger.
func NewProjectServiceWithLogger(projects persistence.ProjectRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProjectService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProjectService{
		projects:    projects,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateProject validates and persists a new project. Admin only.
func (s *ProjectService) CreateProject(ctx context.Context, params CreateProjectParams) (persistence.Project, error) {
	if s == nil {
		return persistence.Project{}, fmt.Errorf("ProjectService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "project", "create")

	if !params.Principal.IsAdmin {
		return persistence.Project{}, ErrUnauthorized
	}
	if err := validateProjectInput(params.Input); err != nil {
		return persistence.Project{}, err
	}

	projectID := s.idGenerator()
	project := persistence.Project{
		ID:           projectID,
		Name:         strings.TrimSpace(params.Input.Name),
		Description:  params.Input.Description,
		Requirements: buildRequirements(projectID, params.Input.Requirements, s.idGenerator),
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "project create failed", "error_kind", ErrorKind(err))
		return persistence.Project{}, err
	}

	logger.InfoContext(ctx, "project created", "project_id", project.ID)
	return s.projects.GetProject(ctx, project.ID)
}

// UpdateProject validates and persists changes, replacing the staffing
// requirement set. Admin only.
func (s *ProjectService) UpdateProject(ctx context.Context, params UpdateProjectParams) (persistence.Project, error) {
	if s == nil {
		return persistence.Project{}, fmt.Errorf("ProjectService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "project", "update", "project_id", params.ProjectID)

	if !params.Principal.IsAdmin {
		return persistence.Project{}, ErrUnauthorized
	}
	if err := validateProjectInput(params.Input); err != nil {
		return persistence.Project{}, err
	}

	existing, err := s.projects.GetProject(ctx, params.ProjectID)
	if err != nil {
		return persistence.Project{}, mapRepositoryError(err)
	}

	existing.Name = strings.TrimSpace(params.Input.Name)
	existing.Description = params.Input.Description
	existing.Requirements = buildRequirements(existing.ID, params.Input.Requirements, s.idGenerator)

	if err := s.projects.UpdateProject(ctx, existing); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "project update failed", "error_kind", ErrorKind(err))
		return persistence.Project{}, err
	}
	return s.projects.GetProject(ctx, params.ProjectID)
}

// GetProject retrieves one project with its requirements.
func (s *ProjectService) GetProject(ctx context.Context, id string) (persistence.Project, error) {
	if s == nil {
		return persistence.Project{}, fmt.Errorf("ProjectService is nil")
	}
	project, err := s.projects.GetProject(ctx, id)
	if err != nil {
		return persistence.Project{}, mapRepositoryError(err)
	}
	return project, nil
}

// ListProjects returns the whole catalog.
func (s *ProjectService) ListProjects(ctx context.Context) ([]persistence.Project, error) {
	if s == nil {
		return nil, fmt.Errorf("ProjectService is nil")
	}
	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return projects, nil
}

// DeleteProject removes a project. Admin only.
func (s *ProjectService) DeleteProject(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("ProjectService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	serviceLogger(ctx, s.logger, "project", "delete").InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}

func buildRequirements(projectID string, inputs []RequirementInput, idGenerator func() string) []persistence.StaffingRequirement {
	if len(inputs) == 0 {
		return nil
	}
	requirements := make([]persistence.StaffingRequirement, 0, len(inputs))
	for _, input := range inputs {
		requirements = append(requirements, persistence.StaffingRequirement{
			ID:            idGenerator(),
			ProjectID:     projectID,
			Date:          input.Date,
			Qualification: strings.TrimSpace(input.Qualification),
			Required:      input.Required,
		})
	}
	return requirements
}

func validateProjectInput(input ProjectInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	for i, requirement := range input.Requirements {
		if strings.TrimSpace(requirement.Qualification) == "" {
			vErr.add(fmt.Sprintf("requirements[%d].qualification", i), "qualification is required")
		}
		if requirement.Required <= 0 {
			vErr.add(fmt.Sprintf("requirements[%d].required", i), "required count must be positive")
		}
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
