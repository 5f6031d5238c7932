package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository on SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const sessionColumns = `id, employee_id, token, expires_at, created_at, updated_at, revoked_at`

// CreateSession inserts a new session and returns the stored row.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.EmployeeID,
		session.Token,
		timeValue(session.ExpiresAt),
		timeValue(session.CreatedAt),
		timeValue(session.UpdatedAt),
		timePtrValue(session.RevokedAt),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// GetSession retrieves a session by its token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token)
	return r.scanSession(row)
}

// RevokeSession marks the session revoked and returns the updated row.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	result, err := r.helper.Exec(ctx, `
		UPDATE sessions
		SET revoked_at = ?, updated_at = ?
		WHERE token = ? AND revoked_at IS NULL`,
		timeValue(revokedAt),
		timeValue(time.Now().UTC()),
		token,
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	if err := requireRowAffected(result); err != nil {
		return persistence.Session{}, err
	}
	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions whose expiry precedes the reference
// time. Revoked sessions are removed on the same sweep.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	_, err := r.helper.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < ? OR revoked_at IS NOT NULL`,
		timeValue(reference))
	return r.mapper.MapError(err)
}

func (r *SessionRepository) scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session   persistence.Session
		expiresAt string
		createdAt string
		updatedAt string
		revokedAt sql.NullString
	)
	err := row.Scan(
		&session.ID,
		&session.EmployeeID,
		&session.Token,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	if session.ExpiresAt, err = scanTime(expiresAt); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = scanTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = scanTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	if session.RevokedAt, err = scanTimePtr(revokedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}

// CredentialRepository implements persistence.CredentialRepository on SQLite.
type CredentialRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCredentialRepository creates a new SQLite credential repository.
func NewCredentialRepository(pool *ConnectionPool) *CredentialRepository {
	return &CredentialRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// UpsertCredentials stores the credentials for an employee, replacing any
// previous row.
func (r *CredentialRepository) UpsertCredentials(ctx context.Context, credentials persistence.Credentials) error {
	_, err := r.helper.Exec(ctx, `
		INSERT INTO credentials (employee_id, email, password_hash, is_admin, disabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (employee_id) DO UPDATE SET
			email = excluded.email,
			password_hash = excluded.password_hash,
			is_admin = excluded.is_admin,
			disabled = excluded.disabled`,
		credentials.EmployeeID,
		credentials.Email,
		credentials.PasswordHash,
		boolValue(credentials.IsAdmin),
		boolValue(credentials.Disabled),
	)
	return r.mapper.MapError(err)
}

// GetCredentialsByEmail retrieves credentials by the login email.
func (r *CredentialRepository) GetCredentialsByEmail(ctx context.Context, email string) (persistence.Credentials, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials WHERE email = ?`, email)
	return r.scanCredentials(row)
}

// GetCredentialsByEmployee retrieves credentials by the owning employee id.
func (r *CredentialRepository) GetCredentialsByEmployee(ctx context.Context, employeeID string) (persistence.Credentials, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT `+credentialColumns+`
		FROM credentials WHERE employee_id = ?`, employeeID)
	return r.scanCredentials(row)
}

const credentialColumns = `employee_id, email, password_hash, is_admin, disabled`

func (r *CredentialRepository) scanCredentials(row rowScanner) (persistence.Credentials, error) {
	var (
		credentials persistence.Credentials
		isAdmin     int
		disabled    int
	)
	err := row.Scan(
		&credentials.EmployeeID,
		&credentials.Email,
		&credentials.PasswordHash,
		&isAdmin,
		&disabled,
	)
	if err != nil {
		return persistence.Credentials{}, r.mapper.MapError(err)
	}
	credentials.IsAdmin = isAdmin != 0
	credentials.Disabled = disabled != 0
	return credentials, nil
}
