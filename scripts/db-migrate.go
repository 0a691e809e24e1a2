package main

import (
	"context"
	"flag"

	"github.com/bugtracker-api/config"
	"github.com/bugtracker-api/database"
	"github.com/bugtracker-api/logging"
	"github.com/bugtracker-api/repositories"
	"github.com/bugtracker-api/services"
	"github.com/sirupsen/logrus"
)

// Migrates the schema and optionally creates the first admin account from
// ADMIN_EMAIL, ADMIN_USERNAME and ADMIN_PASSWORD.
func main() {
	skipAdmin := flag.Bool("skip-admin", false, "only migrate the schema")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	log := logging.New(logging.Options{SystemName: "db-migrate", Level: cfg.LogLevel})

	log.Info("Starting database migration...")

	db, err := database.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}
	log.Info("Schema migrated")

	if *skipAdmin {
		return
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin bootstrap")
		return
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	auth := services.NewAuthService(repositories.NewUserRepository(db), tokens, services.NoopTokenBlacklist{}, log)

	created, err := auth.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to bootstrap admin account: %v", err)
	}
	if created {
		log.WithField("email", cfg.AdminEmail).Info("Admin account created")
	} else {
		log.WithField("email", cfg.AdminEmail).Info("Admin account already exists")
	}

	log.Info("Database migration completed successfully!")
}
