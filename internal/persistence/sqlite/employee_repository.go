package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeRepository on SQLite.
type EmployeeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEmployeeRepository creates a new SQLite employee repository.
func NewEmployeeRepository(pool *ConnectionPool) *EmployeeRepository {
	return &EmployeeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEmployee inserts a new employee.
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	employee.CreatedAt = now
	employee.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO employees (id, name, email, qualification, weekly_hours, available, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		employee.ID,
		employee.Name,
		employee.Email,
		employee.Qualification,
		decimalValue(employee.WeeklyHours),
		boolValue(employee.Available),
		timeValue(employee.CreatedAt),
		timeValue(employee.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateEmployee updates an existing employee.
func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE employees
		SET name = ?, email = ?, qualification = ?, weekly_hours = ?, available = ?, updated_at = ?
		WHERE id = ?`,
		employee.Name,
		employee.Email,
		employee.Qualification,
		decimalValue(employee.WeeklyHours),
		boolValue(employee.Available),
		timeValue(time.Now().UTC()),
		employee.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetEmployee retrieves an employee by id.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, name, email, qualification, weekly_hours, available, created_at, updated_at
		FROM employees WHERE id = ?`, id)
	return r.scanEmployee(row)
}

// ListEmployees returns every employee ordered by name.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, name, email, qualification, weekly_hours, available, created_at, updated_at
		FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		employee, err := r.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee and, via cascading constraints, its
// dependent records.
func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EmployeeRepository) scanEmployee(row rowScanner) (persistence.Employee, error) {
	var (
		employee    persistence.Employee
		weeklyHours string
		available   int
		createdAt   string
		updatedAt   string
	)
	err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Email,
		&employee.Qualification,
		&weeklyHours,
		&available,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Employee{}, r.mapper.MapError(err)
	}

	if employee.WeeklyHours, err = scanDecimal(weeklyHours); err != nil {
		return persistence.Employee{}, err
	}
	employee.Available = available != 0
	if employee.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.Employee{}, err
	}
	return employee, nil
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
