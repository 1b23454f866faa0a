package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/talentlink/matchengine/api"
	migrations "github.com/talentlink/matchengine/db"
	"github.com/talentlink/matchengine/internal/augment"
	"github.com/talentlink/matchengine/internal/config"
	"github.com/talentlink/matchengine/internal/db"
	"github.com/talentlink/matchengine/internal/jobs"
	"github.com/talentlink/matchengine/internal/match"
	"github.com/talentlink/matchengine/internal/repository/sqlite"
	"github.com/talentlink/matchengine/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)
	ollama.SetLogger(logger)

	log.Printf("Starting matchengine server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	// Open database connection and apply migrations
	d, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, d, migrations.Migrations); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(d)

	// Augmentation is optional: without a configured model every result
	// falls back to the neutral analysis payload.
	var analyzer match.Analyzer
	var ollamaClient *ollama.Client
	if cfg.Augment.Model != "" {
		ollamaClient, err = ollama.NewClient(cfg.OllamaClientConfig(), nil)
		if err != nil {
			log.Fatalf("Failed to create ollama client: %v", err)
		}
		engine, err := augment.NewEngine(ollamaClient, cfg.AugmentEngineConfig(), logger)
		if err != nil {
			log.Fatalf("Failed to create augmentation engine: %v", err)
		}
		analyzer = engine
	}

	matchEngine := match.NewEngine(repo, repo, repo, analyzer, logger)
	matchEngine.SetAugmentTimeout(cfg.Augment.Timeout)
	runner := match.NewRunner(matchEngine, repo, repo, logger, cfg.Workers)

	// Background workers for batch runs
	jobRepo := jobs.NewRepository(d)
	handlers := map[string]jobs.Handler{
		jobs.TypeRunBatch: match.RunHandler(runner, repo, repo, logger),
	}
	pool := jobs.NewWorkerPool(jobRepo, handlers, logger, cfg.Workers)
	workerCtx, workerCancel := context.WithCancel(ctx)
	pool.Start(workerCtx)

	handler := api.SetupRoutes(cfg, version, buildTime, repo, matchEngine, pool)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	workerCancel()
	pool.Stop()

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if ollamaClient != nil {
		if err := ollamaClient.Close(); err != nil {
			log.Printf("Error closing ollama client: %v", err)
		}
	}

	if err := d.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}
