package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-feedback-api/api/swagger"
	"github.com/noah-isme/course-feedback-api/internal/handler"
	"github.com/noah-isme/course-feedback-api/internal/repository"
	"github.com/noah-isme/course-feedback-api/internal/router"
	"github.com/noah-isme/course-feedback-api/internal/service"
	"github.com/noah-isme/course-feedback-api/pkg/cache"
	"github.com/noah-isme/course-feedback-api/pkg/config"
	"github.com/noah-isme/course-feedback-api/pkg/database"
	"github.com/noah-isme/course-feedback-api/pkg/export"
	"github.com/noah-isme/course-feedback-api/pkg/logger"
)

// @title Course Feedback API
// @version 1.0.0
// @description Anonymous course feedback with login codes, teacher reports and admin statistics
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	rdb, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// Login throttling is best effort; run without it.
		logr.Warn("redis unavailable, login throttling disabled", zap.Error(err))
	}
	attempts := repository.NewAttemptRepository(rdb, "login_attempts", logr)
	defer attempts.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	codeRepo := repository.NewLoginCodeRepository(db)
	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	codeService := service.NewCodeService(codeRepo, validate, logr, metrics, cfg.LoginCodes)
	authService, err := service.NewAuthService(codeService, attempts, validate, logr, metrics, service.AuthConfig{
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		MaxFailedAttempts: cfg.RateLimit.LoginAttempts,
		FailureWindow:     cfg.RateLimit.LoginWindow,
	})
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}
	feedbackService := service.NewFeedbackService(feedbackRepo, validate, logr, metrics, cfg.Feedback)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, subjectRepo, feedbackRepo, userRepo, validate, logr)
	statsService := service.NewStatsService(statsRepo, logr)
	exportService := service.NewExportService(enrollmentService, logr, export.NewCSVExporter(), export.NewPDFExporter())

	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Student:     handler.NewStudentHandler(enrollmentService, feedbackService),
		Teacher:     handler.NewTeacherHandler(enrollmentService, exportService),
		Stats:       handler.NewStatsHandler(statsService, enrollmentService),
		StatsStream: handler.NewStatsStreamHandler(statsService, metrics, cfg.Stats.StreamInterval, cfg.CORS.AllowedOrigins, logr),
		Codes:       handler.NewCodeHandler(codeService),
		Subjects:    handler.NewSubjectHandler(enrollmentService),
		Enrollments: handler.NewEnrollmentHandler(enrollmentService),
		Metrics:     handler.NewMetricsHandler(metrics, userRepo),
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.Setup(cfg, authService, metrics, handlers, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("code_policy", cfg.LoginCodes.Policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logr.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logr.Info("shutdown complete")
	return nil
}
