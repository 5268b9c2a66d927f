package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthtrack/treatment-tracker/internal/adherence"
	"healthtrack/treatment-tracker/internal/api"
	"healthtrack/treatment-tracker/internal/config"
	"healthtrack/treatment-tracker/internal/logger"
	"healthtrack/treatment-tracker/internal/repository/mongo"
	"healthtrack/treatment-tracker/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Treatment Tracker API
// @version 1.0
// @description Treatment schedules, plan history and assessment history for authenticated patients.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "treatment-tracker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting treatment tracker", zap.String("address", cfg.Server.Address))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("Could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		log.Info("Disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			log.Warn("Failed to create indexes", zap.Error(err))
			return
		}
		log.Info("Index creation process completed")
	}()

	// --- Repositories & Services ---
	scheduleRepo := mongo.NewMongoScheduleRepository(appDB)
	historyRepo := mongo.NewMongoHistoryRepository(appDB)

	trackers := adherence.NewRegistry(scheduleRepo, log)
	pruneCtx, stopPrune := context.WithCancel(context.Background())
	defer stopPrune()
	if cfg.Tracker.IdleTTL > 0 && cfg.Tracker.PruneInterval > 0 {
		go trackers.Run(pruneCtx, cfg.Tracker.PruneInterval, cfg.Tracker.IdleTTL)
	}
	historyService := service.NewHistoryService(historyRepo, log.With(zap.String("component", "history_service")))

	// --- Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, log, trackers, historyService, cfg.Tracker.RequestTimeout)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10*time.Second + cfg.Tracker.RequestTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down server", zap.String("signal", sig.String()))

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}
