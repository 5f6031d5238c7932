package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// ScheduleEntryRepository implements persistence.ScheduleEntryRepository on SQLite.
type ScheduleEntryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewScheduleEntryRepository creates a new SQLite schedule entry repository.
func NewScheduleEntryRepository(pool *ConnectionPool) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const scheduleEntryColumns = `id, employee_id, date, start_time, end_time, crosses_midnight,
	project_id, team_id, status_code, created_at, updated_at`

// CreateEntry inserts a new schedule entry.
func (r *ScheduleEntryRepository) CreateEntry(ctx context.Context, entry persistence.ScheduleEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO schedule_entries (`+scheduleEntryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.EmployeeID,
		dateValue(entry.Date),
		clockValue(entry.Start),
		clockValue(entry.End),
		boolValue(entry.CrossesMidnight),
		stringPtrValue(entry.ProjectID),
		stringPtrValue(entry.TeamID),
		entry.StatusCode,
		timeValue(entry.CreatedAt),
		timeValue(entry.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateEntry updates an existing schedule entry.
func (r *ScheduleEntryRepository) UpdateEntry(ctx context.Context, entry persistence.ScheduleEntry) error {
	result, err := r.helper.Exec(ctx, `
		UPDATE schedule_entries
		SET employee_id = ?, date = ?, start_time = ?, end_time = ?, crosses_midnight = ?,
			project_id = ?, team_id = ?, status_code = ?, updated_at = ?
		WHERE id = ?`,
		entry.EmployeeID,
		dateValue(entry.Date),
		clockValue(entry.Start),
		clockValue(entry.End),
		boolValue(entry.CrossesMidnight),
		stringPtrValue(entry.ProjectID),
		stringPtrValue(entry.TeamID),
		entry.StatusCode,
		timeValue(time.Now().UTC()),
		entry.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

// GetEntry retrieves a schedule entry by id.
func (r *ScheduleEntryRepository) GetEntry(ctx context.Context, id string) (persistence.ScheduleEntry, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+scheduleEntryColumns+` FROM schedule_entries WHERE id = ?`, id)
	return r.scanEntry(row)
}

// ListEntries returns the entries matching the filter, ordered by date and
// start time.
func (r *ScheduleEntryRepository) ListEntries(ctx context.Context, filter persistence.ScheduleEntryFilter) ([]persistence.ScheduleEntry, error) {
	query := `SELECT ` + scheduleEntryColumns + ` FROM schedule_entries`
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
	query += " ORDER BY date, start_time, id"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.ScheduleEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteEntry removes a schedule entry.
func (r *ScheduleEntryRepository) DeleteEntry(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM schedule_entries WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowAffected(result)
}

func (r *ScheduleEntryRepository) scanEntry(row rowScanner) (persistence.ScheduleEntry, error) {
	var (
		entry           persistence.ScheduleEntry
		date            string
		start           string
		end             string
		crossesMidnight int
		projectID       sql.NullString
		teamID          sql.NullString
		createdAt       string
		updatedAt       string
	)
	err := row.Scan(
		&entry.ID,
		&entry.EmployeeID,
		&date,
		&start,
		&end,
		&crossesMidnight,
		&projectID,
		&teamID,
		&entry.StatusCode,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.ScheduleEntry{}, r.mapper.MapError(err)
	}

	if entry.Date, err = scanDate(date); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	if entry.Start, err = scanClock(start); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	if entry.End, err = scanClock(end); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	entry.CrossesMidnight = crossesMidnight != 0
	entry.ProjectID = scanStringPtr(projectID)
	entry.TeamID = scanStringPtr(teamID)
	if entry.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	if entry.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.ScheduleEntry{}, err
	}
	return entry, nil
}
