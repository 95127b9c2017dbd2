package contracts

import "context"

// CourseStore is the read-only interface over the three course record sets.
// Implementations return (nil, nil) / empty results for "no data" so callers
// can distinguish absence from a query failure.
type CourseStore interface {
	// DifficultyByCourse returns the single pre-aggregated statistics row
	// for a course, or nil when none exists.
	DifficultyByCourse(ctx context.Context, subject, number string) (*DifficultyRow, error)

	// LatestCatalogByCourse returns the most recent catalog row by
	// (catalog_year desc, updated_at desc), or nil when none exists.
	LatestCatalogByCourse(ctx context.Context, subject, number string) (*CatalogRow, error)

	// LatestCatalogTitle returns only the most recent catalog title, or ""
	// when none exists. Kept separate so the header path stays narrow.
	LatestCatalogTitle(ctx context.Context, subject, number string) (string, error)

	// GradeDistributionByCourse returns every historical section row for a
	// course.
	GradeDistributionByCourse(ctx context.Context, subject, number string) ([]GradeDistributionRow, error)

	// TopCoursesByEnrollment lists course codes ordered by total recorded
	// enrollment, used by the cache-warm job.
	TopCoursesByEnrollment(ctx context.Context, limit int) ([]CourseCode, error)
}
