package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// VacationRepository implements persistence.VacationRepository on SQLite.
type VacationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewVacationRepository creates a new SQLite vacation repository.
func NewVacationRepository(pool *ConnectionPool) *VacationRepository {
	return &VacationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateVacation inserts a new vacation request.
func (r *VacationRepository) CreateVacation(ctx context.Context, vacation persistence.VacationRequest) error {
	if vacation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	vacation.CreatedAt = now
	vacation.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO vacation_requests (id, employee_id, start_date, end_date, type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		vacation.ID,
		vacation.EmployeeID,
		dateValue(vacation.StartDate),
		dateValue(vacation.EndDate),
		vacation.Type,
		vacation.Status,
		timeValue(vacation.CreatedAt),
		timeValue(vacation.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateVacation updates an existing vacation request.
func (r *VacationRepository) UpdateVacation(ctx context.Context, vacation persistence.VacationRequest) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE vacation_requests
		SET start_date = ?, end_date = ?, type = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		dateValue(vacation.StartDate),
		dateValue(vacation.EndDate),
		vacation.Type,
		vacation.Status,
		timeValue(time.Now().UTC()),
		vacation.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetVacation retrieves a vacation request by id.
func (r *VacationRepository) GetVacation(ctx context.Context, id string) (persistence.VacationRequest, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, employee_id, start_date, end_date, type, status, created_at, updated_at
		FROM vacation_requests WHERE id = ?`, id)
	return r.scanVacation(row)
}

// ListVacations returns the requests matching the filter. Range filters match
// any request whose inclusive span intersects [From, To].
func (r *VacationRepository) ListVacations(ctx context.Context, filter persistence.VacationFilter) ([]persistence.VacationRequest, error) {
	query := `SELECT id, employee_id, start_date, end_date, type, status, created_at, updated_at FROM vacation_requests`
	var (
		clauses []string
		args    []any
	)
	if filter.EmployeeID != nil {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		clauses = append(clauses, "status IN ("+placeholders+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if filter.To != nil {
		clauses = append(clauses, "start_date <= ?")
		args = append(args, dateValue(*filter.To))
	}
	if filter.From != nil {
		clauses = append(clauses, "end_date >= ?")
		args = append(args, dateValue(*filter.From))
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

	var vacations []persistence.VacationRequest
	for rows.Next() {
		vacation, err := r.scanVacation(rows)
		if err != nil {
			return nil, err
		}
		vacations = append(vacations, vacation)
	}
	return vacations, rows.Err()
}

// DeleteVacation removes a vacation request.
func (r *VacationRepository) DeleteVacation(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM vacation_requests WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func (r *VacationRepository) scanVacation(row rowScanner) (persistence.VacationRequest, error) {
	var (
		vacation  persistence.VacationRequest
		startDate string
		endDate   string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&vacation.ID,
		&vacation.EmployeeID,
		&startDate,
		&endDate,
		&vacation.Type,
		&vacation.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.VacationRequest{}, r.mapper.MapError(err)
	}

	if vacation.StartDate, err = scanDate(startDate); err != nil {
		return persistence.VacationRequest{}, err
	}
	if vacation.EndDate, err = scanDate(endDate); err != nil {
		return persistence.VacationRequest{}, err
	}
	if vacation.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.VacationRequest{}, err
	}
	if vacation.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.VacationRequest{}, err
	}
	return vacation, nil
}
