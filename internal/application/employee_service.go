package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/resource-planner/internal/persistence"
)

// EmployeeService manages the employee catalog the planning services
// validate against.
type EmployeeService struct {
	employees   persistence.EmployeeRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEmployeeService wires dependencies for employee catalog operations.
func NewEmployeeService(employees persistence.EmployeeRepository, idGenerator func() string, now func() time.Time) *EmployeeService {
	return NewEmployeeServiceWithLogger(employees, idGenerator, now, nil)
}

// NewEmployeeServiceWithLogger wires dependencies including a base logger.
func NewEmployeeServiceWithLogger(employees persistence.EmployeeRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EmployeeService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EmployeeService{
		employees:   employees,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateEmployee validates and persists a new employee. Admin only.
func (s *EmployeeService) CreateEmployee(ctx context.Context, params CreateEmployeeParams) (persistence.Employee, error) {
	if s == nil {
		return persistence.Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "employee", "create")

	if !params.Principal.IsAdmin {
		return persistence.Employee{}, ErrUnauthorized
	}
	if err := validateEmployeeInput(params.Input); err != nil {
		return persistence.Employee{}, err
	}

	employee := persistence.Employee{
		ID:            s.idGenerator(),
		Name:          strings.TrimSpace(params.Input.Name),
		Email:         strings.ToLower(strings.TrimSpace(params.Input.Email)),
		Qualification: strings.TrimSpace(params.Input.Qualification),
		WeeklyHours:   params.Input.WeeklyHours,
		Available:     params.Input.Available,
	}
	if err := s.employees.CreateEmployee(ctx, employee); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "employee create failed", "error_kind", ErrorKind(err))
		return persistence.Employee{}, err
	}

	logger.InfoContext(ctx, "employee created", "employee_id", employee.ID)
	return s.employees.GetEmployee(ctx, employee.ID)
}

// UpdateEmployee validates and persists changes to an employee. Admin only.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, params UpdateEmployeeParams) (persistence.Employee, error) {
	if s == nil {
		return persistence.Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "employee", "update", "employee_id", params.EmployeeID)

	if !params.Principal.IsAdmin {
		return persistence.Employee{}, ErrUnauthorized
	}
	if err := validateEmployeeInput(params.Input); err != nil {
		return persistence.Employee{}, err
	}

	existing, err := s.employees.GetEmployee(ctx, params.EmployeeID)
	if err != nil {
		return persistence.Employee{}, mapRepositoryError(err)
	}

	existing.Name = strings.TrimSpace(params.Input.Name)
	existing.Email = strings.ToLower(strings.TrimSpace(params.Input.Email))
	existing.Qualification = strings.TrimSpace(params.Input.Qualification)
	existing.WeeklyHours = params.Input.WeeklyHours
	existing.Available = params.Input.Available

	if err := s.employees.UpdateEmployee(ctx, existing); err != nil {
		err = mapRepositoryError(err)
		logger.ErrorContext(ctx, "employee update failed", "error_kind", ErrorKind(err))
		return persistence.Employee{}, err
	}
	return s.employees.GetEmployee(ctx, params.EmployeeID)
}

// GetEmployee retrieves one employee by id.
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if s == nil {
		return persistence.Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	employee, err := s.employees.GetEmployee(ctx, id)
	if err != nil {
		return persistence.Employee{}, mapRepositoryError(err)
	}
	return employee, nil
}

// ListEmployees returns the whole catalog.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	if s == nil {
		return nil, fmt.Errorf("EmployeeService is nil")
	}
	employees, err := s.employees.ListEmployees(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return employees, nil
}

// DeleteEmployee removes an employee. Admin only.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.employees.DeleteEmployee(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	serviceLogger(ctx, s.logger, "employee", "delete").InfoContext(ctx, "employee deleted", "employee_id", id)
	return nil
}

func validateEmployeeInput(input EmployeeInput) error {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if input.WeeklyHours.LessThan(decimal.Zero) {
		vErr.add("weekly_hours", "weekly hours must not be negative")
	}
	if input.WeeklyHours.GreaterThan(decimal.NewFromInt(168)) {
		vErr.add("weekly_hours", "weekly hours must not exceed 168")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
