package jobs

import (
	"context"
	"fmt"

	"github.com/coogplanner/backend/internal/catalog"
	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/pkg/logger"
)

// CacheWarmJob pre-populates the edge cache for the most-attended courses
// by pulling them through the normal loader path, so the hottest course
// pages rarely see a cold cache.
type CacheWarmJob struct {
	store    contracts.CourseStore
	loader   *catalog.Loader
	logger   *logger.Logger
	topN     int
	schedule string
}

// NewCacheWarmJob creates a new cache warm job
func NewCacheWarmJob(store contracts.CourseStore, loader *catalog.Loader, log *logger.Logger, topN int, schedule string) *CacheWarmJob {
	return &CacheWarmJob{
		store:    store,
		loader:   loader,
		logger:   log,
		topN:     topN,
		schedule: schedule,
	}
}

// Name returns the job name
func (j *CacheWarmJob) Name() string {
	return "cache_warm"
}

// Schedule returns the cron schedule
func (j *CacheWarmJob) Schedule() string {
	return j.schedule
}

// Run warms header and detail entries for the top courses. Individual
// course failures are counted, not fatal; the job fails only when the
// course list itself cannot be read.
func (j *CacheWarmJob) Run(ctx context.Context) error {
	codes, err := j.store.TopCoursesByEnrollment(ctx, j.topN)
	if err != nil {
		return fmt.Errorf("list top courses: %w", err)
	}

	warmed, missed := 0, 0
	for _, code := range codes {
		raw := code.Display()

		header, err := j.loader.CourseHeaderByCode(ctx, raw)
		if err != nil || header == nil {
			missed++
			continue
		}
		course, err := j.loader.CourseByCode(ctx, raw)
		if err != nil || course == nil {
			missed++
			continue
		}
		warmed++
	}

	j.logger.WithFields(map[string]interface{}{
		"requested": len(codes),
		"warmed":    warmed,
		"missed":    missed,
	}).Info("Cache warm completed")

	return nil
}
