package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencustoms/tradeflow/internal/archive"
	"github.com/opencustoms/tradeflow/internal/auth"
	"github.com/opencustoms/tradeflow/internal/config"
	"github.com/opencustoms/tradeflow/internal/importjob"
	"github.com/opencustoms/tradeflow/internal/middleware"
	"github.com/opencustoms/tradeflow/internal/router"
	"github.com/opencustoms/tradeflow/internal/store"
	"github.com/opencustoms/tradeflow/internal/tradedata"
)

func main() {
	// Load configuration from .env / environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	initLogger(cfg.LogLevel)

	slog.Info("configuration loaded successfully",
		"es_host", cfg.Elasticsearch.Host,
		"es_port", cfg.Elasticsearch.Port,
		"data_index", cfg.Elasticsearch.DataIndex,
		"server_port", cfg.Server.Port,
	)

	// Connect to the document store; unreachable store is fatal at startup
	client, err := store.New(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("failed to connect to document store: %v", err)
	}

	ctx := context.Background()
	if err := client.EnsureIndex(ctx, cfg.Elasticsearch.DataIndex, tradedata.IndexMapping()); err != nil {
		log.Fatalf("failed to ensure trade-records index: %v", err)
	}

	// Import job ledger
	jobs, err := importjob.NewStore(cfg.Import.JobDBPath)
	if err != nil {
		log.Fatalf("failed to open import job store: %v", err)
	}

	// Archive storage for raw uploaded spreadsheets
	archiveDriver, err := archive.NewStorageFromConfig(ctx, cfg.Archive)
	if err != nil {
		log.Fatalf("failed to initialize archive storage: %v", err)
	}
	archiver := archive.NewArchiver(archiveDriver)

	service := tradedata.NewDataService(client, cfg.Elasticsearch.DataIndex, cfg.Import.ChunkSize)
	runner := importjob.NewRunner(jobs, service)
	dataRouter := router.NewDataRouter(service, jobs, runner, archiver, cfg.Import.MaxUploadSizeBytes)

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(&cfg.CORS))

	api := engine.Group("/api/v1", auth.RequireScope(verifier))
	dataRouter.Register(api)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	// Let accepted imports run their remaining chunks to completion
	slog.Info("waiting for in-flight imports...")
	runner.Wait()

	slog.Info("server stopped")
}

// initLogger installs a JSON slog handler at the configured level.
func initLogger(levelStr string) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
