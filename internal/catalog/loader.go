package catalog

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/pkg/logger"
	"github.com/coogplanner/backend/pkg/redis"
)

const unknownCourseTitle = "Unknown course title"

// Cache is the edge-cache surface the loader needs. pkg/redis.Cache
// satisfies it; tests substitute an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	CourseKey(kind, subject, number string) string
}

// Stats are the loader's observability counters. Cache and source failures
// never fail a lookup, so these counters are how a degraded state stays
// visible to operators.
type Stats struct {
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	SourceErrors int64 `json:"source_errors"`
}

// Loader resolves course headers and full course aggregates through the
// edge cache, with in-flight de-duplication per cache key. Both dependencies
// are injected; the singleflight group is owned by the instance so separate
// loaders (and tests) never share state.
//
// The de-duplication holds within one process only. Across instances the
// last cache write for a key wins and staleness up to the TTL is accepted.
type Loader struct {
	store  contracts.CourseStore
	cache  Cache
	logger *logger.Logger
	flight singleflight.Group

	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	sourceErrors atomic.Int64
}

// NewLoader creates a course loader
func NewLoader(store contracts.CourseStore, cache Cache, log *logger.Logger) *Loader {
	return &Loader{
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// Stats returns a snapshot of the loader's counters.
func (l *Loader) Stats() Stats {
	return Stats{
		CacheHits:    l.cacheHits.Load(),
		CacheMisses:  l.cacheMisses.Load(),
		SourceErrors: l.sourceErrors.Load(),
	}
}

// CourseHeaderByCode resolves the lightweight course header for a free-form
// course code. Returns (nil, nil) when the code is unparseable or no course
// exists. Data-source errors degrade to missing data, never to a failed
// call.
func (l *Loader) CourseHeaderByCode(ctx context.Context, rawCode string) (*contracts.CourseHeader, error) {
	code := ParseCourseCode(rawCode)
	if !code.Valid() {
		return nil, nil
	}

	key := l.cache.CourseKey(redis.KindCourseHeader, code.Subject, code.Number)

	memo := requestCacheFrom(ctx)
	if v, ok := memo.get(key); ok {
		header, _ := v.(*contracts.CourseHeader)
		return header, nil
	}

	v, err, _ := l.flight.Do(key, func() (interface{}, error) {
		var cached contracts.CourseHeader
		if l.cache.Get(ctx, key, &cached) {
			l.cacheHits.Add(1)
			return &cached, nil
		}
		l.cacheMisses.Add(1)

		header := l.buildHeader(ctx, code)
		if header != nil {
			l.cache.Set(ctx, key, header)
		}
		return header, nil
	})
	if err != nil {
		return nil, err
	}

	header, _ := v.(*contracts.CourseHeader)
	memo.set(key, header)
	return header, nil
}

// buildHeader issues at most two data-source queries: the difficulty row,
// plus the newest catalog title when the difficulty row lacks one.
func (l *Loader) buildHeader(ctx context.Context, code contracts.CourseCode) *contracts.CourseHeader {
	difficulty, err := l.store.DifficultyByCourse(ctx, code.Subject, code.Number)
	if err != nil {
		l.sourceErrors.Add(1)
		l.logger.WithError(err).WithField("course", code.Display()).Warn("difficulty query failed, continuing without it")
		difficulty = nil
	}

	name := ""
	if difficulty != nil && difficulty.Title != nil {
		name = strings.TrimSpace(*difficulty.Title)
	}
	if name == "" {
		title, err := l.store.LatestCatalogTitle(ctx, code.Subject, code.Number)
		if err != nil {
			l.sourceErrors.Add(1)
			l.logger.WithError(err).WithField("course", code.Display()).Warn("catalog title query failed, continuing without it")
		} else {
			name = strings.TrimSpace(title)
		}
	}

	if difficulty == nil && name == "" {
		return nil
	}
	if name == "" {
		name = unknownCourseTitle
	}

	displayCode := code.Display()
	if difficulty != nil && difficulty.DisplayCode != nil && strings.TrimSpace(*difficulty.DisplayCode) != "" {
		displayCode = *difficulty.DisplayCode
	}

	return &contracts.CourseHeader{
		Name:        name,
		DisplayCode: displayCode,
		Subject:     code.Subject,
		Number:      code.Number,
		Badges:      BuildBadges(difficulty, BuildSnapshot(difficulty, nil, nil)),
	}
}

// CourseByCode resolves the full course aggregate. Returns (nil, nil) when
// the code is unparseable or all three sources are empty.
func (l *Loader) CourseByCode(ctx context.Context, rawCode string) (*contracts.Course, error) {
	code := ParseCourseCode(rawCode)
	if !code.Valid() {
		return nil, nil
	}

	key := l.cache.CourseKey(redis.KindCourse, code.Subject, code.Number)

	memo := requestCacheFrom(ctx)
	if v, ok := memo.get(key); ok {
		course, _ := v.(*contracts.Course)
		return course, nil
	}

	v, err, _ := l.flight.Do(key, func() (interface{}, error) {
		var cached contracts.Course
		if l.cache.Get(ctx, key, &cached) {
			l.cacheHits.Add(1)
			return &cached, nil
		}
		l.cacheMisses.Add(1)

		course := l.buildCourse(ctx, code)
		if course != nil {
			l.cache.Set(ctx, key, course)
		}
		return course, nil
	})
	if err != nil {
		return nil, err
	}

	course, _ := v.(*contracts.Course)
	memo.set(key, course)
	return course, nil
}

// buildCourse fans the three independent source queries out concurrently
// and composes the aggregate. A failed source contributes nothing; the
// course is not-found only when all three come back empty.
func (l *Loader) buildCourse(ctx context.Context, code contracts.CourseCode) *contracts.Course {
	var (
		difficulty *contracts.DifficultyRow
		catalogRow *contracts.CatalogRow
		grades     []contracts.GradeDistributionRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		row, err := l.store.DifficultyByCourse(gctx, code.Subject, code.Number)
		if err != nil {
			l.sourceErrors.Add(1)
			l.logger.WithError(err).WithField("course", code.Display()).Warn("difficulty query failed, continuing without it")
			return nil
		}
		difficulty = row
		return nil
	})
	g.Go(func() error {
		row, err := l.store.LatestCatalogByCourse(gctx, code.Subject, code.Number)
		if err != nil {
			l.sourceErrors.Add(1)
			l.logger.WithError(err).WithField("course", code.Display()).Warn("catalog query failed, continuing without it")
			return nil
		}
		catalogRow = row
		return nil
	})
	g.Go(func() error {
		rows, err := l.store.GradeDistributionByCourse(gctx, code.Subject, code.Number)
		if err != nil {
			l.sourceErrors.Add(1)
			l.logger.WithError(err).WithField("course", code.Display()).Warn("grade distribution query failed, continuing without it")
			return nil
		}
		grades = rows
		return nil
	})
	_ = g.Wait() // the goroutines above never return errors

	if difficulty == nil && catalogRow == nil && len(grades) == 0 {
		return nil
	}

	name := resolveCourseName(difficulty, catalogRow, grades)

	instructors := SummarizeInstructors(grades)
	pastSections := PastSections(grades)

	var totalInstructors *int
	if len(instructors) > 0 {
		totalInstructors = intPtr(len(instructors))
	} else if difficulty != nil {
		totalInstructors = difficulty.TermCount
	}

	var totalSections *int
	if len(grades) > 0 {
		totalSections = intPtr(len(grades))
	}

	snapshot := BuildSnapshot(difficulty, totalInstructors, totalSections)

	return &contracts.Course{
		Code:                code,
		Name:                name,
		Department:          code.Subject,
		Badges:              BuildBadges(difficulty, snapshot),
		Catalog:             buildCatalogInfo(catalogRow, grades, name),
		Snapshot:            snapshot,
		GradeDistribution:   GradeBuckets(difficulty),
		Instructors:         instructors,
		InstructorNarrative: InstructorNarrative(instructors),
		PastSections:        pastSections,
	}
}

// resolveCourseName applies the title precedence: catalog, then difficulty,
// then the first grade row's description, then a literal fallback.
func resolveCourseName(d *contracts.DifficultyRow, c *contracts.CatalogRow, grades []contracts.GradeDistributionRow) string {
	if c != nil && c.Title != nil {
		if t := strings.TrimSpace(*c.Title); t != "" {
			return t
		}
	}
	if d != nil && d.Title != nil {
		if t := strings.TrimSpace(*d.Title); t != "" {
			return t
		}
	}
	if len(grades) > 0 && grades[0].CourseDescription != nil {
		if t := strings.TrimSpace(*grades[0].CourseDescription); t != "" {
			return t
		}
	}
	return unknownCourseTitle
}

func buildCatalogInfo(c *contracts.CatalogRow, grades []contracts.GradeDistributionRow, name string) contracts.CourseCatalogInfo {
	info := contracts.CourseCatalogInfo{
		Fulfills: []string{},
	}

	if c != nil {
		info.CreditHours = c.CreditHours
		info.LectureHours = c.LectureHours
		info.LabHours = c.LabHours
		info.Prerequisites = c.Prerequisites
		info.Repeatability = c.Repeatability
		info.AdditionalFee = c.AdditionalFee
		info.CatalogYear = intPtr(c.CatalogYear)
		if c.Description != nil {
			info.Description = strings.TrimSpace(*c.Description)
		}
	}

	if info.Description == "" && len(grades) > 0 && grades[0].CourseDescription != nil {
		info.Description = strings.TrimSpace(*grades[0].CourseDescription)
	}
	if info.Description == "" {
		info.Description = name
	}

	return info
}
