package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/resource-planner/internal/persistence"
)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	Employee  persistence.Employee
	Principal Principal
	Session   persistence.Session
}

// AuthService coordinates login, session validation and logout. It is an
// outer collaborator of the planning services and never touches the
// planning core.
type AuthService struct {
	credentials    persistence.CredentialRepository
	sessions       persistence.SessionRepository
	employees      persistence.EmployeeRepository
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials persistence.CredentialRepository, sessions persistence.SessionRepository, employees persistence.EmployeeRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, sessions, employees, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials persistence.CredentialRepository, sessions persistence.SessionRepository, employees persistence.EmployeeRepository, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		sessions:       sessions,
		employees:      employees,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	email := strings.TrimSpace(strings.ToLower(params.Email))
	password := params.Password

	logger := serviceLogger(ctx, s.logger, "auth", "authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "authentication succeeded",
			"employee_id", result.Employee.ID, "session_id", result.Session.ID)
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}

	credentials, lookupErr := s.credentials.GetCredentialsByEmail(ctx, email)
	if lookupErr != nil {
		if errors.Is(lookupErr, persistence.ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		err = lookupErr
		return
	}
	if credentials.Disabled {
		err = ErrAccountDisabled
		return
	}
	if verifyErr := s.verifyPassword(credentials.PasswordHash, password); verifyErr != nil {
		err = ErrInvalidCredentials
		return
	}

	employee, lookupErr := s.employees.GetEmployee(ctx, credentials.EmployeeID)
	if lookupErr != nil {
		err = mapRepositoryError(lookupErr)
		return
	}

	now := s.now()
	if err = s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return
	}

	id := s.tokenGenerator()
	token := s.tokenGenerator()
	if token == "" {
		token = id
	}
	session, createErr := s.sessions.CreateSession(ctx, persistence.Session{
		ID:         id,
		EmployeeID: employee.ID,
		Token:      token,
		ExpiresAt:  now.Add(s.sessionTTL),
	})
	if createErr != nil {
		err = mapRepositoryError(createErr)
		return
	}

	result = AuthenticateResult{
		Employee:  employee,
		Principal: Principal{EmployeeID: employee.ID, IsAdmin: credentials.IsAdmin},
		Session:   session,
	}
	return
}

// ValidateSession resolves a bearer token to the principal behind it.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	if strings.TrimSpace(token) == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}
	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	if _, err := s.employees.GetEmployee(ctx, session.EmployeeID); err != nil {
		return Principal{}, mapRepositoryError(err)
	}
	credentials, err := s.credentials.GetCredentialsByEmployee(ctx, session.EmployeeID)
	if err != nil {
		return Principal{}, mapRepositoryError(err)
	}
	if credentials.Disabled {
		return Principal{}, ErrAccountDisabled
	}
	return Principal{EmployeeID: session.EmployeeID, IsAdmin: credentials.IsAdmin}, nil
}

// RevokeSession invalidates a session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if _, err := s.sessions.RevokeSession(ctx, token, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	serviceLogger(ctx, s.logger, "auth", "revoke").InfoContext(ctx, "session revoked")
	return nil
}

// RegisterCredentials stores argon2id credentials for an employee. Admin
// only; used by the bootstrap path and the account endpoints.
func (s *AuthService) RegisterCredentials(ctx context.Context, principal Principal, employeeID, email, password string, isAdmin bool) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		vErr := &ValidationError{}
		if email == "" {
			vErr.add("email", "email is required")
		}
		if password == "" {
			vErr.add("password", "password is required")
		}
		return vErr
	}

	if _, err := s.employees.GetEmployee(ctx, employeeID); err != nil {
		return mapRepositoryError(err)
	}

	hash, err := CreatePasswordHash(password, DefaultArgon2idParams)
	if err != nil {
		return err
	}
	if err := s.credentials.UpsertCredentials(ctx, persistence.Credentials{
		EmployeeID:   employeeID,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}); err != nil {
		return mapRepositoryError(err)
	}

	serviceLogger(ctx, s.logger, "auth", "register").
		InfoContext(ctx, "credentials registered", "employee_id", employeeID)
	return nil
}
