package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"explorewithme/config"
	"explorewithme/internal/adapters/stats"
	deliveryhttp "explorewithme/internal/delivery/http"
	"explorewithme/internal/delivery/http/controllers"
	"explorewithme/internal/delivery/http/middleware"
	"explorewithme/internal/repository/postgres"
	"explorewithme/internal/services"
)

// @title Explore With Me API
// @version 1.0
// @description Event participation lifecycle: events, admission requests, and ratings.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	if err := postgres.RunMigrations(cfg.DBUrl, cfg.MigrationsPath); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("database open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("database unreachable", "err", err)
		os.Exit(1)
	}

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewParticipationRequestRepository(db)
	ratingRepo := postgres.NewEventRatingRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	compilationRepo := postgres.NewCompilationRepository(db)

	statsClient := stats.NewHTTPClient(cfg.StatsServerURL, &http.Client{Timeout: 5 * time.Second})

	eventSvc := services.NewEventService(eventRepo, userRepo, requestRepo, statsClient, logger)
	admissionSvc := services.NewAdmissionService(userRepo, eventRepo, requestRepo)
	ratingSvc := services.NewRatingService(ratingRepo, userRepo, eventRepo, requestRepo)
	userSvc := services.NewUserService(userRepo)
	categorySvc := services.NewCategoryService(categoryRepo, eventRepo)
	compilationSvc := services.NewCompilationService(compilationRepo, eventRepo)

	mux := deliveryhttp.NewRouter(
		controllers.NewEventController(logger, eventSvc),
		controllers.NewRequestController(logger, admissionSvc),
		controllers.NewRatingController(logger, ratingSvc),
		controllers.NewUserController(logger, userSvc),
		controllers.NewCategoryController(logger, categorySvc),
		controllers.NewCompilationController(logger, compilationSvc),
	)

	var handler http.Handler = mux
	if len(cfg.CORSOrigins) > 0 {
		handler = middleware.CORS(cfg.CORSOrigins, handler)
	}
	handler = middleware.LoggingMiddleware(logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
