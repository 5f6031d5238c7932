package http

import (
	"context"
	"log/slog"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/logging"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	employeeIDContextKey   contextKey = "employee_id"
	projectIDContextKey    contextKey = "project_id"
	entryIDContextKey      contextKey = "entry_id"
	vacationIDContextKey   contextKey = "vacation_id"
	assignmentIDContextKey contextKey = "assignment_id"
	alertIDContextKey      contextKey = "alert_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithLogger attaches a request-scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, or nil when none is attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithEmployeeID injects the employee identifier resolved from the request path.
func ContextWithEmployeeID(ctx context.Context, employeeID string) context.Context {
	return context.WithValue(ctx, employeeIDContextKey, employeeID)
}

// EmployeeIDFromContext extracts an employee identifier previously associated with the context.
func EmployeeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(employeeIDContextKey).(string)
	return id, ok
}

// ContextWithProjectID injects the project identifier resolved from the request path.
func ContextWithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectIDContextKey, projectID)
}

// ProjectIDFromContext extracts a project identifier previously associated with the context.
func ProjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(projectIDContextKey).(string)
	return id, ok
}

// ContextWithEntryID injects the schedule entry identifier resolved from the request path.
func ContextWithEntryID(ctx context.Context, entryID string) context.Context {
	return context.WithValue(ctx, entryIDContextKey, entryID)
}

// EntryIDFromContext extracts a schedule entry identifier previously associated with the context.
func EntryIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(entryIDContextKey).(string)
	return id, ok
}

// ContextWithVacationID injects the vacation request identifier resolved from the request path.
func ContextWithVacationID(ctx context.Context, vacationID string) context.Context {
	return context.WithValue(ctx, vacationIDContextKey, vacationID)
}

// VacationIDFromContext extracts a vacation request identifier previously associated with the context.
func VacationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(vacationIDContextKey).(string)
	return id, ok
}

// ContextWithAssignmentID injects the assignment identifier resolved from the request path.
func ContextWithAssignmentID(ctx context.Context, assignmentID string) context.Context {
	return context.WithValue(ctx, assignmentIDContextKey, assignmentID)
}

// AssignmentIDFromContext extracts an assignment identifier previously associated with the context.
func AssignmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(assignmentIDContextKey).(string)
	return id, ok
}

// ContextWithAlertID injects the alert identifier resolved from the request path.
func ContextWithAlertID(ctx context.Context, alertID string) context.Context {
	return context.WithValue(ctx, alertIDContextKey, alertID)
}

// AlertIDFromContext extracts an alert identifier previously associated with the context.
func AlertIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(alertIDContextKey).(string)
	return id, ok
}
