package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"review-responder-go/internal/auth"
	"review-responder-go/internal/config"
	"review-responder-go/internal/db"
	"review-responder-go/internal/generator"
	"review-responder-go/internal/guard"
	"review-responder-go/internal/handler"
	"review-responder-go/internal/metrics"
	"review-responder-go/internal/repository"
	"review-responder-go/internal/router"
	"review-responder-go/internal/service/responder"
	"review-responder-go/internal/service/scheduler"
	"review-responder-go/internal/source"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Review Responder Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	configureLogging(cfg.Log)

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	repo := repository.New(dbConn)
	m := metrics.NewMetrics(nil)
	gen := generator.NewFromConfig(cfg.AI)
	src := source.NewSimulator(cfg.Scheduler.ArrivalRate, time.Now().UnixNano())

	sched := scheduler.New(&cfg.Scheduler, repo, gen, src, guard.NewLocal(), m)

	h := handler.NewHandlers(
		repo,
		auth.NewService(repo),
		auth.NewSessions(cfg.Session),
		responder.New(repo, gen),
		sched,
		gen.BackendName(),
	)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.SetupRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	} else {
		logrus.Info("Review automation scheduler disabled by configuration")
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	// in-flight account pipelines finish before the database closes
	sched.Wait()

	logrus.Info("Server stopped gracefully")
	return nil
}

func configureLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("Unknown log level %q, keeping info", cfg.Level)
		return
	}
	logrus.SetLevel(level)
}
