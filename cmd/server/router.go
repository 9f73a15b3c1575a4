package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/rota-api/internal/api"
	"github.com/phrazzld/rota-api/internal/api/middleware"
	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/platform/logger"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Every /api route authenticates the bearer token and then
// checks the coarse permission for the route; services apply the
// finer-grained ownership rules.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(app.requestLogger)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimw.Recoverer)
	if app.metricsHandler != nil {
		r.Use(middleware.MetricsMiddleware)
	}
	r.Use(middleware.NewRateLimiter(app.config.Server.RateLimitRPS, app.config.Server.RateLimitBurst).Handler)

	health := api.NewHealthHandler(nil)
	if app.db != nil {
		health = api.NewHealthHandler(app.db)
	}
	r.Method(http.MethodGet, "/health", health)
	if app.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", app.metricsHandler)
	}

	authMiddleware := middleware.NewAuthMiddleware(app.jwtService, app.repos.Employees)
	taskHandler := api.NewTaskHandler(app.taskService, app.logger)
	conflictHandler := api.NewConflictHandler(app.conflictQueue, app.logger)
	scheduleHandler := api.NewScheduleHandler(app.scheduleService, app.logger)
	roleHandler := api.NewRoleHandler(app.roleService, app.logger)
	employeeHandler := api.NewEmployeeHandler(app.employeeService, app.logger)

	require := func(perms ...string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(app.authorizer, perms...)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.With(require(authz.TasksView)).Get("/", taskHandler.ListTasks)
			r.With(require(authz.TasksCreate)).Post("/", taskHandler.CreateTask)
			r.With(require(authz.TasksView)).Get("/{id}", taskHandler.GetTask)
			r.With(require(authz.TasksUpdate, authz.TasksUpdateAny)).Post("/{id}/start", taskHandler.StartTask)
			r.With(require(authz.TasksUpdate, authz.TasksUpdateAny)).Post("/{id}/finish", taskHandler.FinishTask)
		})
		r.With(require(authz.TasksCreate)).Post("/recurring-tasks", taskHandler.CreateRecurringTask)

		r.Route("/conflicts", func(r chi.Router) {
			r.With(require(authz.ConflictsView)).Get("/", conflictHandler.ListPending)
			r.With(require(authz.ConflictsResolve)).Post("/{id}/resolve", conflictHandler.Resolve)
		})

		r.Route("/schedules", func(r chi.Router) {
			r.With(require(authz.SchedulesView)).Get("/", scheduleHandler.ListShifts)
			r.With(require(authz.SchedulesCreate)).Post("/", scheduleHandler.CreateShift)
		})

		r.Route("/roles", func(r chi.Router) {
			r.With(require(authz.RolesView)).Get("/", roleHandler.ListRoles)
			r.With(require(authz.RolesView)).Get("/{id}/permissions", roleHandler.GetRolePermissions)
			r.With(require(authz.RolesManage)).Put("/{id}/permissions", roleHandler.UpdateRolePermissions)
		})
		r.Route("/employees", func(r chi.Router) {
			r.With(require(authz.EmployeesView, authz.EmployeesManage)).Get("/", employeeHandler.ListEmployees)
			r.With(require(authz.EmployeesManage)).Post("/", employeeHandler.CreateEmployee)
			r.With(require(authz.EmployeesManage)).Put("/{id}", employeeHandler.UpdateEmployee)
		})

		r.With(require(authz.RolesView)).Get("/permissions", roleHandler.Catalog)
		r.Get("/me/permissions", roleHandler.MyPermissions)
	})

	return r
}

// requestLogger seeds the request context with the application logger so
// downstream middleware derives request loggers from it.
func (app *application) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithLogger(r.Context(), app.logger.With("request_id", chimw.GetReqID(r.Context())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
