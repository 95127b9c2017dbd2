package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coogplanner/backend/internal/catalog"
	"github.com/coogplanner/backend/pkg/config"
	"github.com/coogplanner/backend/pkg/database"
	"github.com/coogplanner/backend/pkg/logger"
	"github.com/coogplanner/backend/pkg/redis"
)

// lookupCmd resolves a course through the full loader stack, for operator
// debugging of cache and aggregation behavior.
var lookupCmd = &cobra.Command{
	Use:   "lookup <course code>",
	Short: "Resolve a course and print its JSON aggregate",
	Long: `Resolve a course code through the loader (edge cache included) and
print the full course aggregate as JSON.

Example:
  go run ./cmd/planner lookup "COSC 3320"
  go run ./cmd/planner lookup cosc3320 --header`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var lookupHeaderOnly bool

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().BoolVar(&lookupHeaderOnly, "header", false, "resolve only the lightweight header")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	ctx := context.Background()

	var result interface{}
	if lookupHeaderOnly {
		header, err := loader.CourseHeaderByCode(ctx, args[0])
		if err != nil {
			return err
		}
		if header == nil {
			fmt.Fprintf(os.Stderr, "no course found for %q\n", args[0])
			os.Exit(1)
		}
		result = header
	} else {
		course, err := loader.CourseByCode(ctx, args[0])
		if err != nil {
			return err
		}
		if course == nil {
			fmt.Fprintf(os.Stderr, "no course found for %q\n", args[0])
			os.Exit(1)
		}
		result = course
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
