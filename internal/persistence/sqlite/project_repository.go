package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// ProjectRepository implements persistence.ProjectRepository on SQLite.
// Staffing requirements are stored alongside the project and replaced as a
// set on update.
type ProjectRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewProjectRepository creates a new SQLite project repository.
func NewProjectRepository(pool *ConnectionPool) *ProjectRepository {
	return &ProjectRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateProject inserts a project with its staffing requirements.
func (r *ProjectRepository) CreateProject(ctx context.Context, project persistence.Project) error {
	if project.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := r.helper.ExecTx(tx, `
			INSERT INTO projects (id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			project.ID,
			project.Name,
			stringPtrValue(project.Description),
			timeValue(project.CreatedAt),
			timeValue(project.UpdatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return r.insertRequirements(tx, project.ID, project.Requirements)
	})
}

// UpdateProject updates the project row and replaces its requirements.
func (r *ProjectRepository) UpdateProject(ctx context.Context, project persistence.Project) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := r.helper.ExecTx(tx, `
			UPDATE projects SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
			project.Name,
			stringPtrValue(project.Description),
			timeValue(time.Now().UTC()),
			project.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if err := requireRowAffected(result); err != nil {
			return err
		}
		if _, err := r.helper.ExecTx(tx, `DELETE FROM staffing_requirements WHERE project_id = ?`, project.ID); err != nil {
			return r.mapper.MapError(err)
		}
		return r.insertRequirements(tx, project.ID, project.Requirements)
	})
}

// GetProject retrieves a project and its requirements.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (persistence.Project, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at FROM projects WHERE id = ?`, id)
	project, err := r.scanProject(row)
	if err != nil {
		return persistence.Project{}, err
	}
	if project.Requirements, err = r.loadRequirements(ctx, id); err != nil {
		return persistence.Project{}, err
	}
	return project, nil
}

// ListProjects returns every project with requirements, ordered by name.
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]persistence.Project, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, description, created_at, updated_at FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var projects []persistence.Project
	for rows.Next() {
		project, err := r.scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		if projects[i].Requirements, err = r.loadRequirements(ctx, projects[i].ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

// DeleteProject removes a project; requirements cascade.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func (r *ProjectRepository) insertRequirements(tx *sql.Tx, projectID string, requirements []persistence.StaffingRequirement) error {
	for _, requirement := range requirements {
		_, err := r.helper.ExecTx(tx, `
			INSERT INTO staffing_requirements (id, project_id, date, qualification, required)
			VALUES (?, ?, ?, ?, ?)`,
			requirement.ID,
			projectID,
			dateValue(requirement.Date),
			requirement.Qualification,
			requirement.Required,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
	}
	return nil
}

func (r *ProjectRepository) loadRequirements(ctx context.Context, projectID string) ([]persistence.StaffingRequirement, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, project_id, date, qualification, required
		FROM staffing_requirements WHERE project_id = ? ORDER BY date, qualification`, projectID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var requirements []persistence.StaffingRequirement
	for rows.Next() {
		var (
			requirement persistence.StaffingRequirement
			date        string
		)
		if err := rows.Scan(&requirement.ID, &requirement.ProjectID, &date, &requirement.Qualification, &requirement.Required); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if requirement.Date, err = scanDate(date); err != nil {
			return nil, err
		}
		requirements = append(requirements, requirement)
	}
	return requirements, rows.Err()
}

func (r *ProjectRepository) scanProject(row rowScanner) (persistence.Project, error) {
	var (
		project     persistence.Project
		description sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(&project.ID, &project.Name, &description, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Project{}, r.mapper.MapError(err)
	}
	project.Description = scanStringPtr(description)
	if project.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.Project{}, err
	}
	if project.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.Project{}, err
	}
	return project, nil
}
