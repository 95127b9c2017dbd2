package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coogplanner/backend/internal/contracts"
	"github.com/coogplanner/backend/pkg/logger"
)

// fakeCache stores serialized copies like the real edge cache, so a hit
// never returns the same object identity that was written.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = raw
	f.sets++
}

func (f *fakeCache) CourseKey(kind, subject, number string) string {
	return fmt.Sprintf("test/%s/%s-%s.json", kind, subject, number)
}

type fakeStore struct {
	mu sync.Mutex

	difficulty   *contracts.DifficultyRow
	catalog      *contracts.CatalogRow
	catalogTitle string
	grades       []contracts.GradeDistributionRow

	difficultyErr error
	catalogErr    error
	gradesErr     error

	difficultyCalls int
	catalogCalls    int
	titleCalls      int
	gradesCalls     int

	// When set, DifficultyByCourse blocks until the channel closes.
	gate chan struct{}
}

func (f *fakeStore) DifficultyByCourse(_ context.Context, _, _ string) (*contracts.DifficultyRow, error) {
	f.mu.Lock()
	f.difficultyCalls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.difficulty, f.difficultyErr
}

func (f *fakeStore) LatestCatalogByCourse(_ context.Context, _, _ string) (*contracts.CatalogRow, error) {
	f.mu.Lock()
	f.catalogCalls++
	f.mu.Unlock()
	return f.catalog, f.catalogErr
}

func (f *fakeStore) LatestCatalogTitle(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	f.titleCalls++
	f.mu.Unlock()
	return f.catalogTitle, f.catalogErr
}

func (f *fakeStore) GradeDistributionByCourse(_ context.Context, _, _ string) ([]contracts.GradeDistributionRow, error) {
	f.mu.Lock()
	f.gradesCalls++
	f.mu.Unlock()
	return f.grades, f.gradesErr
}

func (f *fakeStore) TopCoursesByEnrollment(_ context.Context, _ int) ([]contracts.CourseCode, error) {
	return nil, nil
}

func (f *fakeStore) calls() (int, int, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.difficultyCalls, f.catalogCalls, f.titleCalls, f.gradesCalls
}

func strPtr(s string) *string { return &s }

func newTestLoader(store *fakeStore) (*Loader, *fakeCache) {
	cache := newFakeCache()
	return NewLoader(store, cache, logger.NewNop()), cache
}

func TestCourseByCodeInvalidInput(t *testing.T) {
	store := &fakeStore{}
	loader, _ := newTestLoader(store)

	for _, input := range []string{"", "COSC", "   ", "1234"} {
		course, err := loader.CourseByCode(context.Background(), input)
		require.NoError(t, err)
		assert.Nil(t, course, "input %q", input)
	}

	d, c, ti, g := store.calls()
	assert.Zero(t, d+c+ti+g, "invalid codes must not touch the data source")
}

func TestCourseByCodeNotFound(t *testing.T) {
	store := &fakeStore{}
	loader, _ := newTestLoader(store)

	course, err := loader.CourseByCode(context.Background(), "COSC 9999")
	require.NoError(t, err)
	assert.Nil(t, course)
}

func TestCourseByCodeComposesAggregate(t *testing.T) {
	gpa := 3.1
	store := &fakeStore{
		difficulty: difficultyFixture(),
		catalog: &contracts.CatalogRow{
			Subject:     "COSC",
			Number:      "3320",
			Title:       strPtr("Algorithms and Data Structures"),
			Description: strPtr("Design and analysis of algorithms."),
			CatalogYear: 2025,
		},
		grades: []contracts.GradeDistributionRow{
			{
				Subject: "COSC", CatalogNumber: "3320", Term: "Fall 2024",
				InstructorFirst: "Ada", InstructorLast: "Lovelace", Section: "01",
				ACount: 20, BCount: 10, DroppedCount: 2, AvgGPA: &gpa,
			},
		},
	}
	loader, _ := newTestLoader(store)

	course, err := loader.CourseByCode(context.Background(), "cosc3320")
	require.NoError(t, err)
	require.NotNil(t, course)

	assert.Equal(t, contracts.CourseCode{Subject: "COSC", Number: "3320"}, course.Code)
	assert.Equal(t, "Algorithms and Data Structures", course.Name, "catalog title wins")
	assert.Equal(t, "COSC", course.Department)
	assert.Equal(t, "Design and analysis of algorithms.", course.Catalog.Description)
	assert.Empty(t, course.Catalog.Fulfills)
	assert.Nil(t, course.Catalog.TCCNSEquivalent)
	assert.Equal(t, contracts.TrendStable, course.Badges.Trend)
	assert.Len(t, course.Instructors, 1)
	assert.Len(t, course.PastSections, 1)
	assert.Equal(t, "Recent sections have been taught by Ada Lovelace.", course.InstructorNarrative)
	require.NotNil(t, course.Snapshot.TotalInstructors)
	assert.Equal(t, 1, *course.Snapshot.TotalInstructors)
	require.NotNil(t, course.Snapshot.TotalSections)
	assert.Equal(t, 1, *course.Snapshot.TotalSections)
	assert.Len(t, course.GradeDistribution, 8)
}

func TestCourseByCodeNamePrecedence(t *testing.T) {
	t.Run("difficulty title when catalog absent", func(t *testing.T) {
		store := &fakeStore{difficulty: difficultyFixture()}
		store.difficulty.Title = strPtr("Diff Title")
		loader, _ := newTestLoader(store)

		course, err := loader.CourseByCode(context.Background(), "COSC 3320")
		require.NoError(t, err)
		require.NotNil(t, course)
		assert.Equal(t, "Diff Title", course.Name)
	})

	t.Run("grade row description as last source", func(t *testing.T) {
		store := &fakeStore{
			grades: []contracts.GradeDistributionRow{
				{Subject: "COSC", CatalogNumber: "3320", Term: "Fall 2024", CourseDescription: strPtr("Intro To Computing")},
			},
		}
		loader, _ := newTestLoader(store)

		course, err := loader.CourseByCode(context.Background(), "COSC 3320")
		require.NoError(t, err)
		require.NotNil(t, course)
		assert.Equal(t, "Intro To Computing", course.Name)
	})

	t.Run("literal fallback", func(t *testing.T) {
		store := &fakeStore{difficulty: &contracts.DifficultyRow{Subject: "COSC", Number: "3320", ACount: 1}}
		loader, _ := newTestLoader(store)

		course, err := loader.CourseByCode(context.Background(), "COSC 3320")
		require.NoError(t, err)
		require.NotNil(t, course)
		assert.Equal(t, "Unknown course title", course.Name)
	})
}

func TestCourseByCodeSourceErrorsDegrade(t *testing.T) {
	// One failing source contributes nothing; the others still resolve.
	store := &fakeStore{
		difficulty:    difficultyFixture(),
		difficultyErr: errors.New("connection reset"),
		catalog: &contracts.CatalogRow{
			Subject: "COSC", Number: "3320",
			Title: strPtr("Algorithms"), CatalogYear: 2025,
		},
	}
	loader, _ := newTestLoader(store)

	course, err := loader.CourseByCode(context.Background(), "COSC 3320")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "Algorithms", course.Name)
	assert.Empty(t, course.GradeDistribution, "failed difficulty source yields no buckets")
	assert.Equal(t, int64(1), loader.Stats().SourceErrors)
}

func TestCourseByCodeCacheMissThenHit(t *testing.T) {
	store := &fakeStore{difficulty: difficultyFixture()}
	loader, cache := newTestLoader(store)
	ctx := context.Background()

	first, err := loader.CourseByCode(ctx, "COSC 3320")
	require.NoError(t, err)
	require.NotNil(t, first)

	d1, _, _, g1 := store.calls()
	assert.Equal(t, 1, d1)
	assert.Equal(t, 1, g1)
	assert.Equal(t, 1, cache.sets)

	second, err := loader.CourseByCode(ctx, "COSC 3320")
	require.NoError(t, err)
	require.NotNil(t, second)

	d2, _, _, g2 := store.calls()
	assert.Equal(t, 1, d2, "cache hit must not query the data source")
	assert.Equal(t, 1, g2)

	// Value-equal, not identity-equal: the cache owns serialized copies.
	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	stats := loader.Stats()
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestCourseHeaderByCode(t *testing.T) {
	store := &fakeStore{difficulty: difficultyFixture()}
	store.difficulty.Title = strPtr("Algorithms")
	loader, _ := newTestLoader(store)

	header, err := loader.CourseHeaderByCode(context.Background(), "COSC-3320")
	require.NoError(t, err)
	require.NotNil(t, header)

	assert.Equal(t, "Algorithms", header.Name)
	assert.Equal(t, "COSC-3320", header.DisplayCode)
	require.NotNil(t, header.Badges.GPA)
	assert.Equal(t, 2.9, *header.Badges.GPA)

	// Difficulty row carried a title, so the catalog was never consulted.
	d, _, ti, _ := store.calls()
	assert.Equal(t, 1, d)
	assert.Zero(t, ti)
}

func TestCourseHeaderFallsBackToCatalogTitle(t *testing.T) {
	store := &fakeStore{
		difficulty:   &contracts.DifficultyRow{Subject: "COSC", Number: "3320", ACount: 1},
		catalogTitle: "Algorithms From Catalog",
	}
	loader, _ := newTestLoader(store)

	header, err := loader.CourseHeaderByCode(context.Background(), "COSC 3320")
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, "Algorithms From Catalog", header.Name)

	d, _, ti, _ := store.calls()
	assert.Equal(t, 1, d)
	assert.Equal(t, 1, ti, "header path issues at most two queries")
}

func TestCourseHeaderNotFound(t *testing.T) {
	store := &fakeStore{}
	loader, cache := newTestLoader(store)

	header, err := loader.CourseHeaderByCode(context.Background(), "COSC 3320")
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Zero(t, cache.sets, "not-found results are not cached")
}

func TestRequestScopedMemoization(t *testing.T) {
	store := &fakeStore{difficulty: difficultyFixture()}
	loader, _ := newTestLoader(store)
	ctx := WithRequestCache(context.Background())

	first, err := loader.CourseHeaderByCode(ctx, "COSC 3320")
	require.NoError(t, err)
	second, err := loader.CourseHeaderByCode(ctx, "COSC 3320")
	require.NoError(t, err)

	// Same request context: pointer-identical result, one load.
	assert.Same(t, first, second)
	d, _, _, _ := store.calls()
	assert.Equal(t, 1, d)

	// A separate request sees a value-equal copy from the edge cache.
	third, err := loader.CourseHeaderByCode(WithRequestCache(context.Background()), "COSC 3320")
	require.NoError(t, err)
	assert.Equal(t, first, third)
	assert.NotSame(t, first, third)
}

func TestInFlightDeduplication(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{difficulty: difficultyFixture(), gate: gate}
	loader, _ := newTestLoader(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*contracts.CourseHeader, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := loader.CourseHeaderByCode(ctx, "COSC 3320")
			assert.NoError(t, err)
			results[i] = h
		}(i)
	}

	// Let both goroutines pile onto the in-flight entry, then release.
	for {
		d, _, _, _ := store.calls()
		if d >= 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	d, _, _, _ := store.calls()
	assert.Equal(t, 1, d, "concurrent same-key calls share one upstream attempt")
	require.NotNil(t, results[0])
	assert.Equal(t, results[0], results[1])
}

func TestInFlightEntryClearedAfterSettlement(t *testing.T) {
	// Not-found results are not cached, so a second sequential call must
	// trigger a fresh attempt rather than reusing a settled flight.
	store := &fakeStore{}
	loader, _ := newTestLoader(store)
	ctx := context.Background()

	_, err := loader.CourseHeaderByCode(ctx, "COSC 3320")
	require.NoError(t, err)
	_, err = loader.CourseHeaderByCode(ctx, "COSC 3320")
	require.NoError(t, err)

	d, _, _, _ := store.calls()
	assert.Equal(t, 2, d)
}

func TestDifferentCodesRunIndependently(t *testing.T) {
	store := &fakeStore{difficulty: difficultyFixture()}
	loader, _ := newTestLoader(store)
	ctx := context.Background()

	_, err := loader.CourseHeaderByCode(ctx, "COSC 3320")
	require.NoError(t, err)
	_, err = loader.CourseHeaderByCode(ctx, "MATH 2414")
	require.NoError(t, err)

	d, _, _, _ := store.calls()
	assert.Equal(t, 2, d)
}
