package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/resource-planner/internal/application"
	"github.com/example/resource-planner/internal/persistence"
	"github.com/example/resource-planner/internal/workload"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) idFunc(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) nowFunc(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// EmployeeServiceDeps captures dependencies for constructing an employee
// service.
type EmployeeServiceDeps struct {
	Employees   persistence.EmployeeRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewEmployeeService builds an employee service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewEmployeeService(deps EmployeeServiceDeps) *application.EmployeeService {
	return application.NewEmployeeServiceWithLogger(
		deps.Employees,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// ProjectServiceDeps captures dependencies for constructing a project service.
type ProjectServiceDeps struct {
	Projects    persistence.ProjectRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewProjectService builds a project service using the supplied dependencies.
func (f *ServiceFactory) NewProjectService(deps ProjectServiceDeps) *application.ProjectService {
	return application.NewProjectServiceWithLogger(
		deps.Projects,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// ScheduleServiceDeps captures dependencies for constructing a schedule
// service.
type ScheduleServiceDeps struct {
	Employees   persistence.EmployeeRepository
	Entries     persistence.ScheduleEntryRepository
	Vacations   persistence.VacationRepository
	Assignments persistence.AssignmentRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewScheduleService builds a schedule service using the supplied
// dependencies.
func (f *ServiceFactory) NewScheduleService(deps ScheduleServiceDeps) *application.ScheduleService {
	return application.NewScheduleServiceWithLogger(
		deps.Employees,
		deps.Entries,
		deps.Vacations,
		deps.Assignments,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// VacationServiceDeps captures dependencies for constructing a vacation
// service.
type VacationServiceDeps struct {
	Employees   persistence.EmployeeRepository
	Entries     persistence.ScheduleEntryRepository
	Vacations   persistence.VacationRepository
	Assignments persistence.AssignmentRepository
	OnWrite     func()
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewVacationService builds a vacation service using the supplied
// dependencies.
func (f *ServiceFactory) NewVacationService(deps VacationServiceDeps) *application.VacationService {
	return application.NewVacationServiceWithLogger(
		deps.Employees,
		deps.Entries,
		deps.Vacations,
		deps.Assignments,
		deps.OnWrite,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// AssignmentServiceDeps captures dependencies for constructing an assignment
// service.
type AssignmentServiceDeps struct {
	Employees   persistence.EmployeeRepository
	Projects    persistence.ProjectRepository
	Entries     persistence.ScheduleEntryRepository
	Vacations   persistence.VacationRepository
	Assignments persistence.AssignmentRepository
	OnWrite     func()
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAssignmentService builds an assignment service using the supplied
// dependencies.
func (f *ServiceFactory) NewAssignmentService(deps AssignmentServiceDeps) *application.AssignmentService {
	return application.NewAssignmentServiceWithLogger(
		deps.Employees,
		deps.Projects,
		deps.Entries,
		deps.Vacations,
		deps.Assignments,
		deps.OnWrite,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// WorkloadServiceDeps captures dependencies for constructing a workload
// service. Zero-valued thresholds are replaced with the defaults.
type WorkloadServiceDeps struct {
	Workloads   persistence.WorkloadRepository
	Employees   persistence.EmployeeRepository
	Thresholds  workload.Thresholds
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewWorkloadService builds a workload service using the supplied
// dependencies.
func (f *ServiceFactory) NewWorkloadService(deps WorkloadServiceDeps) *application.WorkloadService {
	thresholds := deps.Thresholds
	if thresholds.Overloaded.IsZero() && thresholds.Underutilized.IsZero() {
		thresholds = workload.DefaultThresholds()
	}
	return application.NewWorkloadServiceWithLogger(
		deps.Workloads,
		deps.Employees,
		thresholds,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// AlertServiceDeps captures dependencies for constructing an alert service.
type AlertServiceDeps struct {
	Alerts      persistence.AlertRepository
	Employees   persistence.EmployeeRepository
	Entries     persistence.ScheduleEntryRepository
	Vacations   persistence.VacationRepository
	Assignments persistence.AssignmentRepository
	Workloads   *application.WorkloadService
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAlertService builds an alert service using the supplied dependencies.
func (f *ServiceFactory) NewAlertService(deps AlertServiceDeps) *application.AlertService {
	return application.NewAlertServiceWithLogger(
		deps.Alerts,
		deps.Employees,
		deps.Entries,
		deps.Vacations,
		deps.Assignments,
		deps.Workloads,
		f.idFunc(deps.IDGenerator),
		f.nowFunc(deps.Now),
		deps.Logger,
	)
}

// AuthServiceDeps captures dependencies for constructing an auth service. A
// nil PasswordVerify accepts any password, which keeps authentication tests
// free of argon2id hashing cost.
type AuthServiceDeps struct {
	Credentials    persistence.CredentialRepository
	Sessions       persistence.SessionRepository
	Employees      persistence.EmployeeRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	verify := deps.PasswordVerify
	if verify == nil {
		verify = func(hashedPassword, password string) error { return nil }
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return application.NewAuthServiceWithLogger(
		deps.Credentials,
		deps.Sessions,
		deps.Employees,
		verify,
		f.idFunc(deps.TokenGenerator),
		f.nowFunc(deps.Now),
		ttl,
		deps.Logger,
	)
}
