package contracts

// Derived course entities. All of these are value objects recomputed on
// every cache miss; none is mutated after construction. Nullable numerics
// are pointers: nil means "cannot be computed", which is distinct from a
// legitimate zero.

// TrendStable is the only trend value currently produced.
// TODO: derive a real trend once per-term difficulty history is loaded.
const TrendStable = "Stable"

// GradeBucket is one slice of a course's grade distribution.
type GradeBucket struct {
	Label      string  `json:"label"`
	Percentage float64 `json:"percentage"`
}

// CourseSnapshot is the aggregate numeric summary shown on a course page.
type CourseSnapshot struct {
	AvgGPA           *float64 `json:"avgGpa"`
	DropRate         *float64 `json:"dropRate"` // percent
	TotalEnrolled    *int     `json:"totalEnrolled"`
	TotalInstructors *int     `json:"totalInstructors"`
	TotalSections    *int     `json:"totalSections"`
	AvgClassSize     *float64 `json:"avgClassSize"`
}

// CourseBadges are the headline metrics rendered above the fold.
type CourseBadges struct {
	GPA             *float64 `json:"gpa"`
	DropRate        *float64 `json:"dropRate"`
	DifficultyLabel *string  `json:"difficultyLabel"` // pass-through from source, never synthesized
	DifficultyScore *float64 `json:"difficultyScore"`
	Trend           string   `json:"trend"`
}

// InstructorSummary is a per-instructor rollup across every section of one
// course. TotalStudents is the sort key; the display Summary string is
// derived from it, never the other way around.
type InstructorSummary struct {
	Name          string   `json:"name"`
	TotalStudents int      `json:"totalStudents"`
	Sections      int      `json:"sections"`
	Courses       int      `json:"courses"`
	AvgGPA        *float64 `json:"avgGpa"`
	DropRate      *float64 `json:"dropRate"`
	Summary       string   `json:"summary"`
}

// PastSection is one historical offering, reshaped for display.
type PastSection struct {
	Term       string         `json:"term"`
	Instructor string         `json:"instructor"`
	Section    string         `json:"section"`
	Enrolled   int            `json:"enrolled"`
	AvgGPA     *float64       `json:"avgGpa"`
	Letters    map[string]int `json:"letters"`
}

// CourseCatalogInfo is the publication-facing description of a course.
type CourseCatalogInfo struct {
	Description   string   `json:"description"`
	CreditHours   *float64 `json:"creditHours"`
	LectureHours  *float64 `json:"lectureHours"`
	LabHours      *float64 `json:"labHours"`
	Prerequisites *string  `json:"prerequisites"`
	Repeatability *string  `json:"repeatability"`
	AdditionalFee *string  `json:"additionalFee"`
	CatalogYear   *int     `json:"catalogYear"`

	// Fulfills is always empty: requirement mapping is not implemented.
	// TODO: populate once degree-requirement data lands.
	Fulfills []string `json:"fulfills"`
	// TCCNSEquivalent is always null in the DB-backed loader.
	// TODO: source TCCNS mappings.
	TCCNSEquivalent *string `json:"tccnsEquivalent"`
}

// CourseHeader is the lightweight projection used for fast above-the-fold
// rendering before the full detail payload resolves.
type CourseHeader struct {
	Name        string       `json:"name"`
	DisplayCode string       `json:"displayCode"`
	Subject     string       `json:"subject"`
	Number      string       `json:"number"`
	Badges      CourseBadges `json:"badges"`
}

// Course is the full aggregate for a course detail page.
type Course struct {
	Code                CourseCode          `json:"code"`
	Name                string              `json:"name"`
	Department          string              `json:"department"`
	Badges              CourseBadges        `json:"badges"`
	Catalog             CourseCatalogInfo   `json:"catalog"`
	Snapshot            CourseSnapshot      `json:"snapshot"`
	GradeDistribution   []GradeBucket       `json:"gradeDistribution"`
	Instructors         []InstructorSummary `json:"instructors"`
	InstructorNarrative string              `json:"instructorNarrative"`
	PastSections        []PastSection       `json:"pastSections"`
}
