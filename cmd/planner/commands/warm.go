package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coogplanner/backend/internal/catalog"
	"github.com/coogplanner/backend/internal/scheduler/jobs"
	"github.com/coogplanner/backend/pkg/config"
	"github.com/coogplanner/backend/pkg/database"
	"github.com/coogplanner/backend/pkg/logger"
	"github.com/coogplanner/backend/pkg/redis"
)

// warmCmd runs the cache-warm job once and exits
var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Warm the edge cache for the most-attended courses",
	Long: `Run the cache-warm job once: load the top courses by enrollment
through the normal loader path so their header and detail entries are
populated in the edge cache.

Example:
  go run ./cmd/planner warm --top 100`,
	RunE: runWarm,
}

var warmTopN int

func init() {
	rootCmd.AddCommand(warmCmd)

	warmCmd.Flags().IntVar(&warmTopN, "top", 0, "number of courses to warm (overrides WARM_TOP_N)")
}

func runWarm(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if warmTopN > 0 {
		cfg.Warm.TopN = warmTopN
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	edgeCache := redis.NewCache(redisClient, cfg.Cache.Version, cfg.Cache.TTL, log)
	repo := catalog.NewRepository(db.Pool)
	loader := catalog.NewLoader(repo, edgeCache, log)

	job := jobs.NewCacheWarmJob(repo, loader, log, cfg.Warm.TopN, cfg.Warm.Schedule)
	if err := job.Run(context.Background()); err != nil {
		return fmt.Errorf("cache warm failed: %w", err)
	}

	stats := loader.Stats()
	fmt.Printf("Done. cache_hits=%d cache_misses=%d source_errors=%d\n",
		stats.CacheHits, stats.CacheMisses, stats.SourceErrors)
	return nil
}
