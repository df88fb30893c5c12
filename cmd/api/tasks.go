package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/db"
	"github.com/baharkarakas/jobcard-backend/internal/repository/postgres"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	return run(cfg, log)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != "postgres" {
		return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
	}
	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()
	if err := db.RunMigrations(ctx, pool); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	email, password := adminEmail, adminPassword
	if email == "" {
		email = cfg.AdminEmail
	}
	if password == "" {
		password = cfg.AdminPassword
	}
	if email == "" || password == "" {
		return errors.New("--email and --password (or ADMIN_EMAIL/ADMIN_PASSWORD) are required")
	}
	if cfg.StoreDriver != "postgres" {
		return errors.New("create-admin only makes sense against postgres")
	}

	ctx := cmd.Context()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	tm := auth.NewTokenManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL)
	created, err := services.NewAuthService(postgres.NewStore(pool), tm, log).EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin created", "email", email)
	} else {
		log.Info("admin already exists", "email", email)
	}
	return nil
}
