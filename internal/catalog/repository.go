package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coogplanner/backend/internal/contracts"
)

// Repository implements contracts.CourseStore over the three Supabase
// tables. All filters are exact matches on (subject, number); this layer
// never writes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a course repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DifficultyByCourse returns the pre-aggregated statistics row for a course.
// Single-row expectation is enforced by the query, not application logic.
func (r *Repository) DifficultyByCourse(ctx context.Context, subject, number string) (*contracts.DifficultyRow, error) {
	query := `
		SELECT subject, course_number, course_title, course_code,
		       COALESCE(a_count, 0), COALESCE(b_count, 0), COALESCE(c_count, 0),
		       COALESCE(d_count, 0), COALESCE(f_count, 0), COALESCE(s_count, 0),
		       COALESCE(nr_count, 0), COALESCE(dropped_count, 0),
		       avg_gpa, withdraw_rate, difficulty_score, difficulty_label, term_count
		FROM course_difficulty
		WHERE subject = $1 AND course_number = $2
		LIMIT 1
	`

	var d contracts.DifficultyRow
	err := r.pool.QueryRow(ctx, query, subject, number).Scan(
		&d.Subject, &d.Number, &d.Title, &d.DisplayCode,
		&d.ACount, &d.BCount, &d.CCount,
		&d.DCount, &d.FCount, &d.SCount,
		&d.NRCount, &d.DroppedCount,
		&d.AvgGPA, &d.WithdrawRate, &d.DifficultyScore, &d.DifficultyLabel, &d.TermCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query course_difficulty: %w", err)
	}
	return &d, nil
}

// LatestCatalogByCourse returns the most recent catalog publication row.
func (r *Repository) LatestCatalogByCourse(ctx context.Context, subject, number string) (*contracts.CatalogRow, error) {
	query := `
		SELECT subject, course_number, course_title,
		       credit_hours, lecture_hours, lab_hours,
		       description, prerequisites, repeatability, additional_fee,
		       catalog_year, updated_at
		FROM course_catalog
		WHERE subject = $1 AND course_number = $2
		ORDER BY catalog_year DESC, updated_at DESC
		LIMIT 1
	`

	var c contracts.CatalogRow
	err := r.pool.QueryRow(ctx, query, subject, number).Scan(
		&c.Subject, &c.Number, &c.Title,
		&c.CreditHours, &c.LectureHours, &c.LabHours,
		&c.Description, &c.Prerequisites, &c.Repeatability, &c.AdditionalFee,
		&c.CatalogYear, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query course_catalog: %w", err)
	}
	return &c, nil
}

// LatestCatalogTitle returns only the newest catalog title, "" when absent.
func (r *Repository) LatestCatalogTitle(ctx context.Context, subject, number string) (string, error) {
	query := `
		SELECT course_title
		FROM course_catalog
		WHERE subject = $1 AND course_number = $2
		ORDER BY catalog_year DESC, updated_at DESC
		LIMIT 1
	`

	var title *string
	err := r.pool.QueryRow(ctx, query, subject, number).Scan(&title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("query course_catalog title: %w", err)
	}
	if title == nil {
		return "", nil
	}
	return *title, nil
}

// GradeDistributionByCourse returns every historical section row for a
// course, newest terms first.
func (r *Repository) GradeDistributionByCourse(ctx context.Context, subject, number string) ([]contracts.GradeDistributionRow, error) {
	query := `
		SELECT subject, catalog_number, term,
		       COALESCE(instructor_first_name, ''), COALESCE(instructor_last_name, ''),
		       COALESCE(class_section, ''),
		       COALESCE(a_count, 0), COALESCE(b_count, 0), COALESCE(c_count, 0),
		       COALESCE(d_count, 0), COALESCE(f_count, 0), COALESCE(s_count, 0),
		       COALESCE(nr_count, 0), COALESCE(dropped_count, 0),
		       avg_gpa, course_description
		FROM grade_distribution
		WHERE subject = $1 AND catalog_number = $2
		ORDER BY term DESC, class_section ASC
	`

	rows, err := r.pool.Query(ctx, query, subject, number)
	if err != nil {
		return nil, fmt.Errorf("query grade_distribution: %w", err)
	}
	defer rows.Close()

	var dist []contracts.GradeDistributionRow
	for rows.Next() {
		var g contracts.GradeDistributionRow
		if err := rows.Scan(
			&g.Subject, &g.CatalogNumber, &g.Term,
			&g.InstructorFirst, &g.InstructorLast,
			&g.Section,
			&g.ACount, &g.BCount, &g.CCount,
			&g.DCount, &g.FCount, &g.SCount,
			&g.NRCount, &g.DroppedCount,
			&g.AvgGPA, &g.CourseDescription,
		); err != nil {
			return nil, fmt.Errorf("scan grade_distribution: %w", err)
		}
		dist = append(dist, g)
	}
	return dist, rows.Err()
}

// TopCoursesByEnrollment lists the most-attended courses for cache warming.
func (r *Repository) TopCoursesByEnrollment(ctx context.Context, limit int) ([]contracts.CourseCode, error) {
	query := `
		SELECT subject, course_number
		FROM course_difficulty
		ORDER BY COALESCE(a_count, 0) + COALESCE(b_count, 0) + COALESCE(c_count, 0)
		       + COALESCE(d_count, 0) + COALESCE(f_count, 0) + COALESCE(s_count, 0)
		       + COALESCE(nr_count, 0) + COALESCE(dropped_count, 0) DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top courses: %w", err)
	}
	defer rows.Close()

	var codes []contracts.CourseCode
	for rows.Next() {
		var c contracts.CourseCode
		if err := rows.Scan(&c.Subject, &c.Number); err != nil {
			return nil, fmt.Errorf("scan top courses: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}
