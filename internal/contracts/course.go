package contracts

import (
	"fmt"
	"strings"
	"time"
)

// CourseCode is a normalized (subject, number) pair, e.g. ("COSC", "3320").
type CourseCode struct {
	Subject string `json:"subject"`
	Number  string `json:"number"`
}

// Valid reports whether both parts are non-empty. Lookups with an invalid
// code short-circuit to not-found without touching the data source.
func (c CourseCode) Valid() bool {
	return c.Subject != "" && c.Number != ""
}

// Display returns the canonical "SUBJ-1234" form.
func (c CourseCode) Display() string {
	return fmt.Sprintf("%s-%s", c.Subject, c.Number)
}

// DifficultyRow is one pre-aggregated statistics record per course, produced
// by the upstream ETL. Read-only here.
type DifficultyRow struct {
	Subject string
	Number  string

	Title       *string
	DisplayCode *string

	// Letter-grade counts; nulls in the source are coalesced to zero at
	// query time.
	ACount       int
	BCount       int
	CCount       int
	DCount       int
	FCount       int
	SCount       int // satisfactory (S/CR style grading)
	NRCount      int // not reported
	DroppedCount int

	AvgGPA          *float64
	WithdrawRate    *float64 // percent, pre-computed by the ETL
	DifficultyScore *float64
	DifficultyLabel *string
	TermCount       *int
}

// GradedCount is the number of students with a recorded outcome other
// than a drop.
func (r *DifficultyRow) GradedCount() int {
	return r.ACount + r.BCount + r.CCount + r.DCount + r.FCount + r.SCount + r.NRCount
}

// CatalogRow is one per-course per-catalog-year publication record. The
// loader only ever reads the most recent one.
type CatalogRow struct {
	Subject string
	Number  string

	Title         *string
	CreditHours   *float64
	LectureHours  *float64
	LabHours      *float64
	Description   *string
	Prerequisites *string
	Repeatability *string
	AdditionalFee *string
	CatalogYear   int
	UpdatedAt     time.Time
}

// GradeDistributionRow is one historical section offering with its letter
// grade counts.
type GradeDistributionRow struct {
	Subject       string
	CatalogNumber string
	Term          string

	InstructorFirst string
	InstructorLast  string
	Section         string

	ACount       int
	BCount       int
	CCount       int
	DCount       int
	FCount       int
	SCount       int
	NRCount      int
	DroppedCount int

	AvgGPA            *float64
	CourseDescription *string
}

// GradedCount is the section's student count excluding drops.
func (r *GradeDistributionRow) GradedCount() int {
	return r.ACount + r.BCount + r.CCount + r.DCount + r.FCount + r.SCount + r.NRCount
}

// InstructorName returns the trimmed "First Last" grouping key, or
// "Unknown" when both parts are blank.
func (r *GradeDistributionRow) InstructorName() string {
	name := trimJoin(r.InstructorFirst, r.InstructorLast)
	if name == "" {
		return "Unknown"
	}
	return name
}

func trimJoin(first, last string) string {
	f := strings.TrimSpace(first)
	l := strings.TrimSpace(last)
	switch {
	case f == "":
		return l
	case l == "":
		return f
	default:
		return f + " " + l
	}
}
