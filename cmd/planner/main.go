// Command planner runs the resource planning API server.
//
// Besides the PLANNER_* variables consumed by the config package, the
// optional pair PLANNER_BOOTSTRAP_ADMIN_EMAIL and
// PLANNER_BOOTSTRAP_ADMIN_PASSWORD seeds an initial administrator account on
// startup when no credentials exist for that email yet.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/calendar"
	"github.com/example/resource-planner/internal/config"
	httptransport "github.com/example/resource-planner/internal/http"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/persistence/sqlite"
	"github.com/example/resource-planner/internal/workload"
)

// alertSweepInterval paces the background reconciliation loop. Each pass
// covers the configured number of days starting today.
const alertSweepInterval = time.Hour

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	services := buildServices(cfg, storage, logger)

	if err := bootstrapAdmin(ctx, storage, services.auth, logger); err != nil {
		logger.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	go runAlertSweeper(ctx, services.alerts, cfg.AlertReevaluationBatchDays, logger)

	handler := buildHandler(services, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// plannerServices bundles the application services the transport needs.
type plannerServices struct {
	auth        *application.AuthService
	employees   *application.EmployeeService
	projects    *application.ProjectService
	schedule    *application.ScheduleService
	vacations   *application.VacationService
	assignments *application.AssignmentService
	workloads   *application.WorkloadService
	alerts      *application.AlertService
}

func buildServices(cfg config.Config, storage *sqlite.Store, logger *slog.Logger) plannerServices {
	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	employees := storage.Employees()
	projects := storage.Projects()
	entries := storage.ScheduleEntries()
	vacations := storage.Vacations()
	assignments := storage.Assignments()

	scheduleService := application.NewScheduleServiceWithCache(
		employees, entries, vacations, assignments,
		idGenerator, now, cfg.WarningCacheTTL, cfg.WarningCacheSize, logger,
	)

	// Vacation and assignment writes change availability, so they flush
	// the cached warning computations.
	onWrite := scheduleService.InvalidateWarnings

	vacationService := application.NewVacationServiceWithLogger(
		employees, entries, vacations, assignments, onWrite, idGenerator, now, logger,
	)
	assignmentService := application.NewAssignmentServiceWithLogger(
		employees, projects, entries, vacations, assignments, onWrite, idGenerator, now, logger,
	)
	workloadService := application.NewWorkloadServiceWithLogger(
		storage.Workloads(), employees,
		workload.Thresholds{Overloaded: cfg.OverloadThreshold, Underutilized: cfg.UnderutilizationThreshold},
		idGenerator, now, logger,
	)
	alertService := application.NewAlertServiceWithLogger(
		storage.Alerts(), employees, entries, vacations, assignments,
		workloadService, idGenerator, now, logger,
	)
	authService := application.NewAuthServiceWithLogger(
		storage.Credentials(), storage.Sessions(), employees,
		application.VerifyPassword, tokenGenerator, now, cfg.SessionTTL, logger,
	)

	return plannerServices{
		auth:        authService,
		employees:   application.NewEmployeeServiceWithLogger(employees, idGenerator, now, logger),
		projects:    application.NewProjectServiceWithLogger(projects, idGenerator, now, logger),
		schedule:    scheduleService,
		vacations:   vacationService,
		assignments: assignmentService,
		workloads:   workloadService,
		alerts:      alertService,
	}
}

// buildHandler assembles the router and wraps every route except login in
// session enforcement.
func buildHandler(services plannerServices, logger *slog.Logger) http.Handler {
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(services.auth, logger),
		Employees:   httptransport.NewEmployeeHandler(services.employees, logger),
		Projects:    httptransport.NewProjectHandler(services.projects, logger),
		Schedule:    httptransport.NewScheduleHandler(services.schedule, logger),
		Vacations:   httptransport.NewVacationHandler(services.vacations, logger),
		Assignments: httptransport.NewAssignmentHandler(services.assignments, logger),
		Workload:    httptransport.NewWorkloadHandler(services.workloads, logger),
		Alerts:      httptransport.NewAlertHandler(services.alerts, logger),
	})

	protected := httptransport.RequireSession(services.auth, logger)(router)
	return httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.EqualFold(r.URL.Path, "/sessions") {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))
}

// bootstrapAdmin seeds the first administrator account from the environment.
// It is a no-op when the variables are unset or the email already has
// credentials.
func bootstrapAdmin(ctx context.Context, storage *sqlite.Store, auth *application.AuthService, logger *slog.Logger) error {
	email := strings.TrimSpace(strings.ToLower(os.Getenv("PLANNER_BOOTSTRAP_ADMIN_EMAIL")))
	password := os.Getenv("PLANNER_BOOTSTRAP_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	if _, err := storage.Credentials().GetCredentialsByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, persistence.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	employee := persistence.Employee{
		ID:            uuid.NewString(),
		Name:          "Administrator",
		Email:         email,
		Qualification: "ADMIN",
		Available:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := storage.Employees().CreateEmployee(ctx, employee); err != nil {
		return err
	}

	system := application.Principal{EmployeeID: employee.ID, IsAdmin: true}
	if err := auth.RegisterCredentials(ctx, system, employee.ID, email, password, true); err != nil {
		return err
	}

	logger.Info("bootstrap admin account created", "email", email, "employee_id", employee.ID)
	return nil
}

// runAlertSweeper reconciles alerts over a rolling window until ctx ends.
func runAlertSweeper(ctx context.Context, alerts *application.AlertService, batchDays int, logger *slog.Logger) {
	if batchDays <= 0 {
		batchDays = 28
	}
	system := application.Principal{EmployeeID: "system", IsAdmin: true}

	sweep := func() {
		from := calendar.DateOf(time.Now().UTC())
		to := from.AddDays(batchDays - 1)
		result, err := alerts.Reevaluate(ctx, application.ReevaluateParams{Principal: system, From: from, To: to})
		if err != nil {
			logger.Error("alert sweep failed", "error", err)
			return
		}
		logger.Info("alert sweep completed",
			"from", from.String(), "to", to.String(),
			"created", result.Created, "resolved", result.Resolved)
	}

	sweep()
	ticker := time.NewTicker(alertSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
