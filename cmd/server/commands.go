package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/rota-api/internal/authz"
	"github.com/phrazzld/rota-api/internal/config"
	"github.com/phrazzld/rota-api/internal/domain"
	"github.com/phrazzld/rota-api/internal/domain/calendar"
	"github.com/phrazzld/rota-api/internal/platform/logger"
	"github.com/phrazzld/rota-api/internal/platform/postgres"
	"github.com/phrazzld/rota-api/internal/service/auth"
	"github.com/spf13/cobra"
)

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	root := newRootCmd(Version)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func newRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rota-api",
		Short:         "Staffing-aware task assignment service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newTickCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newEmployeeCmd())

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.Version = version
	return cmd
}

// loadConfig loads configuration and sets up the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

var migrateCommands = []string{"up", "down", "reset", "status", "version"}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(migrateCommands, "|") + "]",
		Short:     "Run database migrations (default: up)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != driverPostgres {
				return fmt.Errorf("migrate requires the %s driver, got %q", driverPostgres, cfg.Database.Driver)
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := postgres.Migrate(cmd.Context(), db, command, log); err != nil {
				return err
			}
			if command == "up" || command == "reset" {
				if err := postgres.SeedRoles(cmd.Context(), db, authz.DefaultRoles()); err != nil {
					return fmt.Errorf("failed to seed default roles: %w", err)
				}
			}
			return nil
		},
	}
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Materialize due recurring tasks once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := newApplication(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup(context.WithoutCancel(cmd.Context()))

			result, err := app.engine.Tick(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "today: %s\n", calendar.FormatDate(result.Today))
			fmt.Fprintf(out, "materialized: %d\n", len(result.Materialized))
			fmt.Fprintf(out, "conflicts: %d\n", len(result.Conflicts))
			for _, f := range result.Failures {
				fmt.Fprintf(out, "failed template %s: %v\n", f.TemplateID, f.Err)
			}
			if len(result.Failures) > 0 {
				return fmt.Errorf("%d template(s) failed", len(result.Failures))
			}
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var employeeID int64

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if employeeID <= 0 {
				return fmt.Errorf("--employee must be a positive employee id")
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := jwtService.GenerateToken(cmd.Context(), employeeID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", bootstrapAdminID, "Employee id the token identifies")
	return cmd
}

func newEmployeeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employees",
	}
	cmd.AddCommand(newEmployeeAddCmd())
	return cmd
}

func newEmployeeAddCmd() *cobra.Command {
	var (
		name  string
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an active employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != driverPostgres {
				return fmt.Errorf("employee add requires the %s driver, got %q", driverPostgres, cfg.Database.Driver)
			}

			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if _, err := postgres.NewPostgresRoleStore(db, log).GetByID(cmd.Context(), role); err != nil {
				return fmt.Errorf("role %q: %w", role, err)
			}

			emp := &domain.Employee{Name: name, Email: email, Role: role, Active: true}
			if err := postgres.NewPostgresEmployeeStore(db, log).Create(cmd.Context(), emp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", emp.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", authz.RoleWorker, "Role id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
