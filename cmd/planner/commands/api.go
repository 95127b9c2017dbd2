package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coogplanner/backend/internal/api"
	"github.com/coogplanner/backend/internal/api/handlers"
	"github.com/coogplanner/backend/internal/catalog"
	"github.com/coogplanner/backend/internal/external/syllabus"
	"github.com/coogplanner/backend/internal/scheduler"
	"github.com/coogplanner/backend/internal/scheduler/jobs"
	"github.com/coogplanner/backend/pkg/config"
	"github.com/coogplanner/backend/pkg/database"
	"github.com/coogplanner/backend/pkg/httputil"
	"github.com/coogplanner/backend/pkg/logger"
	"github.com/coogplanner/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the REST API server.

Endpoints:
  GET  /health                      - Health check with loader counters
  GET  /api/courses/{code}          - Full course aggregate
  GET  /api/courses/{code}/header   - Lightweight course header
  GET  /api/syllabi?courseCode=...  - Syllabus portal proxy

Example:
  go run ./cmd/planner api
  go run ./cmd/planner api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	if !redisClient.Enabled() {
		log.Warn("Redis disabled, edge cache degrades to always-recompute")
	}

	edgeCache := redis.NewCache(redisClient, cfg.Cache.Version, cfg.Cache.TTL, log)

	// Loader stack
	repo := catalog.NewRepository(db.Pool)
	loader := catalog.NewLoader(repo, edgeCache, log)

	// Syllabus portal client
	httpClient := httputil.New(log)
	syllabusClient := syllabus.NewClient(httpClient, log, cfg.Syllabus)

	// Handlers and router
	courseHandler := handlers.NewCourseHandler(loader, log)
	syllabusHandler := handlers.NewSyllabusHandler(syllabusClient, log, cfg.Syllabus.ResponseTTL)
	healthHandler := handlers.NewHealthHandler(db, loader, edgeCache)

	router := api.NewRouter(courseHandler, syllabusHandler, healthHandler, log)
	server := api.New(cfg, log, router)

	// Cache warming
	var sched *scheduler.Scheduler
	if cfg.Warm.Enabled {
		sched = scheduler.New(log)
		warmJob := jobs.NewCacheWarmJob(repo, loader, log, cfg.Warm.TopN, cfg.Warm.Schedule)
		if err := sched.AddJob(warmJob); err != nil {
			return fmt.Errorf("schedule cache warm: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
