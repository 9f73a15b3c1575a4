package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/config"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/jobs"
	"github.com/phrazzld/rota-api/internal/platform/memory"
	"github.com/phrazzld/rota-api/internal/platform/metrics"
	"github.com/phrazzld/rota-api/internal/platform/postgres"
	"github.com/phrazzld/rota-api/internal/platform/redis"
	"github.com/phrazzld/rota-api/internal/redact"
	"github.com/phrazzld/rota-api/internal/service"
	"github.com/phrazzld/rota-api/internal/service/auth"
	"github.com/phrazzld/rota-api/internal/service/conflict"
	"github.com/phrazzld/rota-api/internal/service/recurrence"
	"github.com/phrazzld/rota-api/internal/staffing"
	"github.com/phrazzld/rota-api/internal/store"
	goredis "github.com/redis/go-redis/v9"
)

const (
	driverMemory   = "memory"
	driverPostgres = "postgres"

	// bootstrapAdminID is the employee seeded into the memory backend so a
	// fresh process has someone to issue tokens for.
	bootstrapAdminID = 1
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// Persistence. db is nil for the memory backend.
	db        *sql.DB
	tx        store.Transactor
	repos     store.Repos
	roleStore store.RoleStore

	jwtService auth.JWTService
	authorizer *authz.Authorizer
	engine     *recurrence.Engine
	sweeper    *recurrence.Sweeper

	taskService     service.TaskService
	scheduleService service.ScheduleService
	roleService     service.RoleService
	employeeService service.EmployeeService
	conflictQueue   conflict.Queue

	eventEmitter *events.InMemoryEventEmitter
	jobRunner    *jobs.Runner
	redisClient  *goredis.Client

	metricsHandler  http.Handler
	shutdownMetrics func(context.Context) error
}

// newApplication creates a new application instance with all dependencies initialized.
// On failure every resource opened so far is released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}
	if err := app.init(ctx); err != nil {
		app.cleanup(context.Background())
		return nil, err
	}
	logger.Info("application initialized",
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("metrics", app.metricsHandler != nil),
		slog.Bool("redis", app.redisClient != nil),
		slog.Bool("sweeper", app.sweeper != nil))
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg := app.config

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err := app.setupMetrics(ctx); err != nil {
			return err
		}
	}

	if err := app.setupBackend(ctx); err != nil {
		return err
	}

	if err := app.setupEvents(ctx); err != nil {
		return err
	}

	oracle, err := staffing.NewOracle(app.repos.Shifts)
	if err != nil {
		return fmt.Errorf("failed to create staffing oracle: %w", err)
	}

	app.authorizer, err = authz.NewAuthorizer(app.roleStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create authorizer: %w", err)
	}

	loc := cfg.Recurrence.Location()
	app.engine, err = recurrence.NewEngine(app.tx, app.repos.Templates, oracle, app.logger,
		recurrence.WithLocation(loc),
		recurrence.WithEmitter(app.eventEmitter),
	)
	if err != nil {
		return fmt.Errorf("failed to create recurrence engine: %w", err)
	}

	if cfg.Recurrence.SweepSchedule != "" {
		app.sweeper, err = recurrence.NewSweeper(app.engine, cfg.Recurrence.SweepSchedule, loc, app.logger)
		if err != nil {
			return err
		}
	}

	app.taskService, err = service.NewTaskService(app.tx, app.repos, oracle, app.authorizer, app.logger,
		service.WithTicker(app.engine),
		service.WithEmitter(app.eventEmitter),
		service.WithLocation(loc),
	)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}

	app.scheduleService, err = service.NewScheduleService(app.repos.Employees, app.repos.Shifts, app.authorizer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create schedule service: %w", err)
	}

	app.roleService, err = service.NewRoleService(app.roleStore, app.authorizer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create role service: %w", err)
	}

	app.employeeService, err = service.NewEmployeeService(app.repos.Employees, app.roleStore, app.authorizer, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create employee service: %w", err)
	}

	app.conflictQueue, err = conflict.NewQueue(app.tx, app.repos.Notifications, oracle, app.authorizer, app.logger,
		conflict.WithTicker(app.engine),
		conflict.WithEmitter(app.eventEmitter),
	)
	if err != nil {
		return fmt.Errorf("failed to create conflict queue: %w", err)
	}
	return nil
}

// setupBackend opens the configured store. Postgres is migrated and seeded
// with the default roles; the memory backend gets the default roles and a
// bootstrap admin.
func (app *application) setupBackend(ctx context.Context) error {
	switch app.config.Database.Driver {
	case driverMemory:
		mem := memory.NewStore()
		for _, role := range authz.DefaultRoles() {
			mem.Roles().Put(ctx, role)
		}
		admin := &domain.Employee{
			ID:     bootstrapAdminID,
			Name:   "Administrator",
			Role:   authz.RoleAdmin,
			Active: true,
		}
		if err := mem.Employees().Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to seed bootstrap admin: %w", err)
		}
		app.tx = mem
		app.repos = mem.Repos()
		app.roleStore = mem.Roles()
		app.logger.Warn("using in-memory store; data is lost on exit",
			slog.Int64("admin_employee_id", admin.ID))
		return nil

	case driverPostgres:
		db, err := setupAppDatabase(ctx, app.config.Database, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return err
		}
		if err := postgres.SeedRoles(ctx, db, authz.DefaultRoles()); err != nil {
			return fmt.Errorf("failed to seed default roles: %w", err)
		}
		app.tx = postgres.NewTransactor(db, app.logger)
		app.repos = postgres.NewRepos(db, app.logger)
		app.roleStore = postgres.NewPostgresRoleStore(db, app.logger)
		return nil

	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
}

// setupEvents creates the in-process emitter and, when Redis is configured,
// forwards every event to the Redis channel through the job runner.
func (app *application) setupEvents(ctx context.Context) error {
	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)

	cfg := app.config.Redis
	if cfg.Addr == "" {
		return nil
	}

	client, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	app.redisClient = client

	publisher, err := redis.NewPublisher(client, cfg.Channel, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create redis publisher: %w", err)
	}

	app.jobRunner = jobs.NewRunner(runnerConfig(app.config.Jobs), app.logger)
	app.jobRunner.Start()
	app.eventEmitter.RegisterHandler(jobs.NewAsyncEventHandler(app.jobRunner, publisher, app.logger))
	return nil
}

// runnerConfig fills unset job settings with defaults.
func runnerConfig(cfg config.JobsConfig) jobs.RunnerConfig {
	rc := jobs.DefaultRunnerConfig()
	if cfg.WorkerCount > 0 {
		rc.WorkerCount = cfg.WorkerCount
	}
	if cfg.QueueSize > 0 {
		rc.QueueSize = cfg.QueueSize
	}
	return rc
}

func (app *application) setupMetrics(ctx context.Context) error {
	handler, shutdown, err := metrics.InitMeterProvider(ctx, "rota-api")
	if err != nil {
		return fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	app.metricsHandler = handler
	app.shutdownMetrics = shutdown
	if err := metrics.InitMetrics(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup(ctx context.Context) {
	var errs []error

	if app.sweeper != nil {
		if err := app.sweeper.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("sweeper: %w", err))
		}
	}
	if app.jobRunner != nil {
		if err := app.jobRunner.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("job runner: %w", err))
		}
	}
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if app.shutdownMetrics != nil {
		if err := app.shutdownMetrics(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		app.logger.Error("application shutdown completed with errors", redact.Attr(err))
		return
	}
	app.logger.Info("application shutdown completed")
}

// shutdownTimeout bounds graceful shutdown of the HTTP server and background workers.
const shutdownTimeout = 10 * time.Second
