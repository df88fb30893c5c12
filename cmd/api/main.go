// Command jobcard-api runs the job-card dispatch API and its maintenance tasks.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/jobcard-backend/internal/config"
	"github.com/baharkarakas/jobcard-backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "jobcard-api",
	Short:         "Job-card dispatch API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server (default)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account if the email is not taken",
	RunE:  runCreateAdmin,
}

var (
	adminEmail    string
	adminPassword string
)

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (default: ADMIN_EMAIL)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (default: ADMIN_PASSWORD)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// setup loads config and installs the default logger for every subcommand.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	return cfg, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
