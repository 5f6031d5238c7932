package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// WorkloadRepository implements persistence.WorkloadRepository on SQLite.
// One row exists per (employee, date); UpsertRecord replaces in place so
// corrections do not accumulate duplicates.
type WorkloadRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewWorkloadRepository creates a new SQLite workload repository.
func NewWorkloadRepository(pool *ConnectionPool) *WorkloadRepository {
	return &WorkloadRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// UpsertRecord inserts or replaces the record for (employee, date).
func (r *WorkloadRepository) UpsertRecord(ctx context.Context, record persistence.WorkloadRecord) error {
	if record.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := timeValue(time.Now().UTC())
	_, err := r.helper.Exec(ctx, `
		INSERT INTO workload_records (id, employee_id, date, week_number, planned_hours, actual_hours, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			week_number = excluded.week_number,
			planned_hours = excluded.planned_hours,
			actual_hours = excluded.actual_hours,
			updated_at = excluded.updated_at`,
		record.ID,
		record.EmployeeID,
		dateValue(record.Date),
		record.WeekNumber,
		decimalValue(record.PlannedHours),
		decimalPtrValue(record.ActualHours),
		now,
		now,
	)
	return r.mapper.MapError(err)
}

// ListRecords returns the records matching the filter ordered by date.
func (r *WorkloadRepository) ListRecords(ctx context.Context, filter persistence.WorkloadFilter) ([]persistence.WorkloadRecord, error) {
	query := `SELECT id, employee_id, date, week_number, planned_hours, actual_hours, created_at, updated_at FROM workload_records`
	var (
		clauses []string
		args    []any
	)
	if filter.EmployeeID != nil {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.From != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, dateValue(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, dateValue(*filter.To))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date, employee_id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var records []persistence.WorkloadRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteRecord removes a record by id.
func (r *WorkloadRepository) DeleteRecord(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM workload_records WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func (r *WorkloadRepository) scanRecord(row rowScanner) (persistence.WorkloadRecord, error) {
	var (
		record       persistence.WorkloadRecord
		date         string
		plannedHours string
		actualHours  sql.NullString
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(
		&record.ID,
		&record.EmployeeID,
		&date,
		&record.WeekNumber,
		&plannedHours,
		&actualHours,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.WorkloadRecord{}, r.mapper.MapError(err)
	}

	if record.Date, err = scanDate(date); err != nil {
		return persistence.WorkloadRecord{}, err
	}
	if record.PlannedHours, err = scanDecimal(plannedHours); err != nil {
		return persistence.WorkloadRecord{}, err
	}
	if record.ActualHours, err = scanDecimalPtr(actualHours); err != nil {
		return persistence.WorkloadRecord{}, err
	}
	if record.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.WorkloadRecord{}, err
	}
	if record.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.WorkloadRecord{}, err
	}
	return record, nil
}
