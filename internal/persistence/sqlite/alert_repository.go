package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// AlertRepository implements persistence.AlertRepository on SQLite. The
// cause_key unique constraint is the serialization point for concurrent
// reconciliation passes: the second writer for the same cause fails with
// ErrDuplicate instead of materializing a twin alert.
type AlertRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAlertRepository creates a new SQLite alert repository.
func NewAlertRepository(pool *ConnectionPool) *AlertRepository {
	return &AlertRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const alertColumns = `id, cause_key, type, priority, title, message,
	employee_id, project_id, schedule_entry_id, status, acknowledged_at, resolved_at, created_at, updated_at`

// CreateAlert inserts a new alert.
func (r *AlertRepository) CreateAlert(ctx context.Context, alert persistence.Alert) error {
	if alert.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	alert.CreatedAt = now
	alert.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID,
		alert.CauseKey,
		alert.Type,
		alert.Priority,
		alert.Title,
		alert.Message,
		stringPtrValue(alert.EmployeeID),
		stringPtrValue(alert.ProjectID),
		stringPtrValue(alert.ScheduleEntryID),
		alert.Status,
		timePtrValue(alert.AcknowledgedAt),
		timePtrValue(alert.ResolvedAt),
		timeValue(alert.CreatedAt),
		timeValue(alert.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateAlert updates an existing alert's lifecycle fields.
func (r *AlertRepository) UpdateAlert(ctx context.Context, alert persistence.Alert) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE alerts
		SET priority = ?, title = ?, message = ?, status = ?, acknowledged_at = ?, resolved_at = ?, updated_at = ?
		WHERE id = ?`,
		alert.Priority,
		alert.Title,
		alert.Message,
		alert.Status,
		timePtrValue(alert.AcknowledgedAt),
		timePtrValue(alert.ResolvedAt),
		timeValue(time.Now().UTC()),
		alert.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetAlert retrieves an alert by id.
func (r *AlertRepository) GetAlert(ctx context.Context, id string) (persistence.Alert, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = ?`, id)
	return r.scanAlert(row)
}

// ListAlerts returns the alerts matching the filter, most recent first.
func (r *AlertRepository) ListAlerts(ctx context.Context, filter persistence.AlertFilter) ([]persistence.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts`
	var (
		clauses []string
		args    []any
	)
	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		clauses = append(clauses, "status IN ("+placeholders+")")
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if filter.EmployeeID != nil {
		clauses = append(clauses, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.ProjectID != nil {
		clauses = append(clauses, "project_id = ?")
		args = append(args, *filter.ProjectID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var alerts []persistence.Alert
	for rows.Next() {
		alert, err := r.scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (r *AlertRepository) scanAlert(row rowScanner) (persistence.Alert, error) {
	var (
		alert           persistence.Alert
		employeeID      sql.NullString
		projectID       sql.NullString
		scheduleEntryID sql.NullString
		acknowledgedAt  sql.NullString
		resolvedAt      sql.NullString
		createdAt       string
		updatedAt       string
	)
	err := row.Scan(
		&alert.ID,
		&alert.CauseKey,
		&alert.Type,
		&alert.Priority,
		&alert.Title,
		&alert.Message,
		&employeeID,
		&projectID,
		&scheduleEntryID,
		&alert.Status,
		&acknowledgedAt,
		&resolvedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Alert{}, r.mapper.MapError(err)
	}

	alert.EmployeeID = scanStringPtr(employeeID)
	alert.ProjectID = scanStringPtr(projectID)
	alert.ScheduleEntryID = scanStringPtr(scheduleEntryID)
	if alert.AcknowledgedAt, err = scanTimePtr(acknowledgedAt); err != nil {
		return persistence.Alert{}, err
	}
	if alert.ResolvedAt, err = scanTimePtr(resolvedAt); err != nil {
		return persistence.Alert{}, err
	}
	if alert.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.Alert{}, err
	}
	if alert.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.Alert{}, err
	}
	return alert, nil
}
