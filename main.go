package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "github.com/bugtracker-api/api/v1"
	"github.com/bugtracker-api/config"
	"github.com/bugtracker-api/database"
	"github.com/bugtracker-api/logging"
	"github.com/bugtracker-api/middleware"
	"github.com/bugtracker-api/policy"
	"github.com/bugtracker-api/repositories"
	"github.com/bugtracker-api/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	db, err := database.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	if redisClient == nil {
		log.Warn("REDIS_ADDR not set, logout will not revoke tokens")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	issueRepo := repositories.NewIssueRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn)
	blacklist := services.NewTokenBlacklist(redisClient)
	rules := policy.New(policy.Options{StrictIssues: cfg.StrictIssuePolicy})
	cascade := services.NewCascadeManager(db, projectRepo, issueRepo, commentRepo, log, metrics)

	authService := services.NewAuthService(userRepo, tokens, blacklist, log)
	issueService := services.NewIssueService(db, issueRepo, projectRepo, userRepo, cascade, rules, cfg.StrictIssuePolicy, log)
	cookies := middleware.DefaultCookieSettings(cfg.CookieSecure)

	handler := &v1.Handler{
		Auth:     authService,
		Users:    services.NewUserService(userRepo),
		Projects: services.NewProjectService(db, projectRepo, userRepo, cascade, rules, log),
		Issues:   issueService,
		Comments: services.NewCommentService(db, commentRepo, issueService, rules),
		Gate:     middleware.NewAuthGate(tokens, userRepo, blacklist, cookies, log),
		Cookies:  cookies,
		TokenTTL: cfg.JWTExpiresIn,
		Log:      log,
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to bootstrap admin account: %v", err)
		}
		if created {
			log.WithField("email", cfg.AdminEmail).Info("Admin account created")
		}
	}

	router := v1.NewRouter(handler, v1.RouterOptions{CORSOrigins: cfg.CORSOrigins, Metrics: metrics})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "strictIssuePolicy": cfg.StrictIssuePolicy}).Info("Bug tracker API starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if redisClient != nil {
		redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}
