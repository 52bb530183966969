package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teamaptiv/volunteer-hub/cmd/cli/commands"
	"github.com/teamaptiv/volunteer-hub/internal/config"
	"github.com/teamaptiv/volunteer-hub/pkg/core/services"
	"github.com/teamaptiv/volunteer-hub/pkg/metrics"
	"github.com/teamaptiv/volunteer-hub/pkg/postgres"
	"github.com/teamaptiv/volunteer-hub/pkg/utils/logging"
)

var (
	env   string
	admin string
	app   = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Volunteer Hub CLI - Manage events, volunteer slots and donations",
		Long:  `A CLI tool for scheduling volunteer events, running the HTTP API and administering accounts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, skip := cmd.Annotations[commands.SkipInitAnnotation]; skip {
				return nil
			}
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&admin, "admin", "admin", "Username administrative commands act as")

	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.CreateAdminCmd(app))
	rootCmd.AddCommand(commands.CreateEventCmd(app))
	rootCmd.AddCommand(commands.ScheduleSeriesCmd(app))
	rootCmd.AddCommand(commands.ListEventsCmd(app))
	rootCmd.AddCommand(commands.CancelEventCmd(app))
	rootCmd.AddCommand(commands.RescheduleEventCmd(app))
	rootCmd.AddCommand(commands.PreviewSlotsCmd())
	rootCmd.AddCommand(commands.InteractiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads config, then sets up the logger, database, metrics and service
func initApp() error {
	var err error
	app.Ctx = context.Background()
	app.AdminUsername = admin

	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app.Logger, err = logging.InitLogger(env, app.Cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))
	app.Logger.Debug("Configuration loaded successfully", zap.Int("event_templates", len(app.Cfg.EventTemplates)))

	app.Logger.Info("Connecting to database")
	app.Store, err = postgres.Connect(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.Logger.Debug("Database connected successfully")

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.Metrics = metrics.NewMetrics(app.Registry)

	app.Service = services.New(app.Store, app.Logger, app.Metrics)
	app.Logger.Info("Application initialized successfully")

	return nil
}

func closeApp() {
	if app.Store != nil {
		if err := app.Store.Close(); err != nil && app.Logger != nil {
			app.Logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
