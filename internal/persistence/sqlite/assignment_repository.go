package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository on SQLite.
type AssignmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(pool *ConnectionPool) *AssignmentRepository {
	return &AssignmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateAssignment inserts a new project assignment.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment persistence.ProjectAssignment) error {
	if assignment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO project_assignments (id, employee_id, project_id, start_date, end_date, hours_per_day, percent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		assignment.ID,
		assignment.EmployeeID,
		assignment.ProjectID,
		dateValue(assignment.StartDate),
		datePtrValue(assignment.EndDate),
		decimalPtrValue(assignment.HoursPerDay),
		decimalPtrValue(assignment.Percent),
		timeValue(assignment.CreatedAt),
		timeValue(assignment.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateAssignment updates an existing project assignment.
func (r *AssignmentRepository) UpdateAssignment(ctx context.Context, assignment persistence.ProjectAssignment) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE project_assignments
		SET employee_id = ?, project_id = ?, start_date = ?, end_date = ?, hours_per_day = ?, percent = ?, updated_at = ?
		WHERE id = ?`,
		assignment.EmployeeID,
		assignment.ProjectID,
		dateValue(assignment.StartDate),
		datePtrValue(assignment.EndDate),
		decimalPtrValue(assignment.HoursPerDay),
		decimalPtrValue(assignment.Percent),
		timeValue(time.Now().UTC()),
		assignment.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetAssignment retrieves an assignment by id.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id string) (persistence.ProjectAssignment, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, employee_id, project_id, start_date, end_date, hours_per_day, percent, created_at, updated_at
		FROM project_assignments WHERE id = ?`, id)
	return r.scanAssignment(row)
}

// ListAssignments returns the assignments matching the filter. ActiveOn
// matches assignments whose [start_date, end_date] covers the day (NULL end
// means open-ended).
func (r *AssignmentRepository) ListAssignments(ctx context.Context, filter persistence.AssignmentFilter) ([]persistence.ProjectAssignment, error) {
	query := `SELECT id, employee_id, project_id, start_date, end_date, hours_per_day, percent, created_at, updated_at FROM project_assignments`
	var (
		clauses []string
		args    []any
	)
	if filter.EmployeeID != nil {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.ProjectID != nil {
		clauses = append(clauses, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if filter.ActiveOn != nil {
		clauses = append(clauses, "start_date <= ? AND (end_date IS NULL OR end_date >= ?)")
		day := dateValue(*filter.ActiveOn)
		args = append(args, day, day)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_date, id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var assignments []persistence.ProjectAssignment
	for rows.Next() {
		assignment, err := r.scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	return assignments, rows.Err()
}

// DeleteAssignment removes an assignment.
func (r *AssignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM project_assignments WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func (r *AssignmentRepository) scanAssignment(row rowScanner) (persistence.ProjectAssignment, error) {
	var (
		assignment  persistence.ProjectAssignment
		startDate   string
		endDate     sql.NullString
		hoursPerDay sql.NullString
		percent     sql.NullString
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&assignment.ID,
		&assignment.EmployeeID,
		&assignment.ProjectID,
		&startDate,
		&endDate,
		&hoursPerDay,
		&percent,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.ProjectAssignment{}, r.mapper.MapError(err)
	}

	if assignment.StartDate, err = scanDate(startDate); err != nil {
		return persistence.ProjectAssignment{}, err
	}
	if assignment.EndDate, err = scanDatePtr(endDate); err != nil {
		return persistence.ProjectAssignment{}, err
	}
	if assignment.HoursPerDay, err = scanDecimalPtr(hoursPerDay); err != nil {
		return persistence.ProjectAssignment{}, err
	}
	if assignment.Percent, err = scanDecimalPtr(percent); err != nil {
		return persistence.ProjectAssignment{}, err
	}
	if assignment.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.ProjectAssignment{}, err
	}
	if assignment.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.ProjectAssignment{}, err
	}
	return assignment, nil
}
