package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/zeroclasses/zero-backend/internal/config"
	"github.com/zeroclasses/zero-backend/internal/database"
	"github.com/zeroclasses/zero-backend/internal/handler"
	"github.com/zeroclasses/zero-backend/internal/logger"
	"github.com/zeroclasses/zero-backend/internal/middleware"
	"github.com/zeroclasses/zero-backend/internal/repository"
	"github.com/zeroclasses/zero-backend/internal/router"
	"github.com/zeroclasses/zero-backend/internal/service"
	"github.com/zeroclasses/zero-backend/internal/validator"
	"github.com/zeroclasses/zero-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "zero-backend",
	})
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Zero Classes backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	resultRepo := repository.NewQuizResultRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	resultQueue := worker.NewResultQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, service.NewLogNotifier(log))
	userService := service.NewUserService(cfg, userRepo, authService, log)
	courseService := service.NewCourseService(courseRepo, enrollmentRepo, log)
	quizService := service.NewQuizService(cfg, quizRepo, resultRepo, courseService, rdb, log)
	attemptService := service.NewAttemptService(
		service.AttemptConfig{
			TickInterval: cfg.QuizTickInterval,
			Retention:    cfg.AttemptRetention,
		},
		quizService, courseService, resultRepo, resultQueue, log,
	)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseService, log)
	mediaService := service.NewMediaService(cfg)
	settingService := service.NewSettingService(settingRepo, log)
	dashboardService := service.NewDashboardService(dashboardRepo, enrollmentRepo, resultRepo, assignmentRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService, userService),
		AdminUser:  handler.NewAdminUserHandler(userService),
		Course:     handler.NewCourseHandler(courseService),
		Quiz:       handler.NewQuizHandler(quizService),
		Attempt:    handler.NewAttemptHandler(attemptService),
		Assignment: handler.NewAssignmentHandler(assignmentService),
		Media:      handler.NewMediaHandler(mediaService),
		Setting:    handler.NewSettingHandler(settingService),
		Dashboard:  handler.NewDashboardHandler(dashboardService),
		WS:         handler.NewWSHandler(attemptService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	resultWorker := worker.NewResultWorker(resultRepo, resultQueue, log)
	go func() {
		resultWorker.Start(workerCtx)
		close(workerDone)
	}()

	stopLimiter := make(chan struct{})
	authLimiter := middleware.NewRateLimiter(cfg.AuthRatePerMinute, time.Minute)
	go authLimiter.Run(stopLimiter)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, authLimiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(stopLimiter)

	// 2. Stop attempt timers. Unsaved results are handed to the queue.
	log.Info().Int("active_attempts", attemptService.ActiveCount()).Msg("Stopping attempts")
	attemptService.Shutdown()

	// 3. Let the result worker drain its batch.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(5 * time.Second):
		log.Warn().Msg("Result worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
