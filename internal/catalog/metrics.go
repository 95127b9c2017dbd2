package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/coogplanner/backend/internal/contracts"
)

// Pure derivation functions from raw rows to display entities. Numeric
// policy: raw nulls/NaN are coerced to 0 before summation, but a derived
// value with no meaningful denominator comes out nil rather than 0.

// safeNumber coerces a nullable/NaN raw value to a usable float.
func safeNumber(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

// GradeBuckets converts a difficulty row's raw counts into an ordered
// percentage distribution. The result is empty when the row is absent or
// holds no students; percentages sum to 100 otherwise.
func GradeBuckets(d *contracts.DifficultyRow) []contracts.GradeBucket {
	if d == nil {
		return []contracts.GradeBucket{}
	}

	counts := []struct {
		label string
		n     int
	}{
		{"A", d.ACount},
		{"B", d.BCount},
		{"C", d.CCount},
		{"D", d.DCount},
		{"F", d.FCount},
		{"W", d.DroppedCount},
		{"S", d.SCount},
		{"NR", d.NRCount},
	}

	total := 0
	for _, c := range counts {
		total += c.n
	}
	if total == 0 {
		return []contracts.GradeBucket{}
	}

	buckets := make([]contracts.GradeBucket, 0, len(counts))
	for _, c := range counts {
		buckets = append(buckets, contracts.GradeBucket{
			Label:      c.label,
			Percentage: float64(c.n) / float64(total) * 100,
		})
	}
	return buckets
}

// BuildSnapshot derives the course snapshot from the difficulty row plus the
// instructor/section counts resolved from grade-distribution data.
func BuildSnapshot(d *contracts.DifficultyRow, totalInstructors, totalSections *int) contracts.CourseSnapshot {
	snap := contracts.CourseSnapshot{
		TotalInstructors: totalInstructors,
		TotalSections:    totalSections,
	}
	if d == nil {
		return snap
	}

	graded := d.GradedCount()
	dropped := d.DroppedCount
	enrolled := graded + dropped

	snap.AvgGPA = d.AvgGPA
	snap.TotalEnrolled = intPtr(enrolled)

	// dropped/(graded+dropped) when the denominator is positive, else the
	// ETL's pre-computed withdraw rate, else nil. A zero here is a real
	// drop rate; nil means it cannot be computed.
	switch {
	case enrolled > 0:
		snap.DropRate = floatPtr(float64(dropped) / float64(enrolled) * 100)
	case d.WithdrawRate != nil:
		snap.DropRate = d.WithdrawRate
	}

	if totalSections != nil && *totalSections > 0 && enrolled > 0 {
		snap.AvgClassSize = floatPtr(float64(enrolled) / float64(*totalSections))
	}

	return snap
}

// BuildBadges derives the headline badges. Snapshot-derived GPA and drop
// rate win over the raw difficulty-row values when both exist. The
// difficulty label passes through as-is: a blank label stays nil, no
// fallback text is synthesized.
func BuildBadges(d *contracts.DifficultyRow, snap contracts.CourseSnapshot) contracts.CourseBadges {
	badges := contracts.CourseBadges{
		Trend: contracts.TrendStable,
	}
	if d == nil {
		badges.GPA = snap.AvgGPA
		badges.DropRate = snap.DropRate
		return badges
	}

	badges.GPA = snap.AvgGPA
	if badges.GPA == nil {
		badges.GPA = d.AvgGPA
	}

	badges.DropRate = snap.DropRate
	if badges.DropRate == nil {
		badges.DropRate = d.WithdrawRate
	}

	if d.DifficultyLabel != nil {
		if label := strings.TrimSpace(*d.DifficultyLabel); label != "" {
			badges.DifficultyLabel = &label
		}
	}
	badges.DifficultyScore = d.DifficultyScore

	return badges
}

// SummarizeInstructors rolls grade-distribution rows up to one entry per
// distinct instructor name, sorted by total student count descending.
func SummarizeInstructors(rows []contracts.GradeDistributionRow) []contracts.InstructorSummary {
	type accum struct {
		students    int
		drops       int
		weightedGPA float64
		sections    int
		courses     map[contracts.CourseCode]struct{}
	}

	groups := make(map[string]*accum)
	order := make([]string, 0)

	for i := range rows {
		row := &rows[i]
		name := row.InstructorName()

		acc, ok := groups[name]
		if !ok {
			acc = &accum{courses: make(map[contracts.CourseCode]struct{})}
			groups[name] = acc
			order = append(order, name)
		}

		sectionTotal := row.GradedCount() + row.DroppedCount
		acc.students += sectionTotal
		acc.drops += row.DroppedCount
		acc.sections++
		acc.courses[contracts.CourseCode{Subject: row.Subject, Number: row.CatalogNumber}] = struct{}{}

		if row.AvgGPA != nil && sectionTotal > 0 {
			acc.weightedGPA += safeNumber(row.AvgGPA) * float64(sectionTotal)
		}
	}

	summaries := make([]contracts.InstructorSummary, 0, len(groups))
	for _, name := range order {
		acc := groups[name]
		s := contracts.InstructorSummary{
			Name:          name,
			TotalStudents: acc.students,
			Sections:      acc.sections,
			Courses:       len(acc.courses),
			Summary:       fmt.Sprintf("%d students · %d sections", acc.students, acc.sections),
		}
		if acc.weightedGPA > 0 && acc.students > 0 {
			s.AvgGPA = floatPtr(acc.weightedGPA / float64(acc.students))
		}
		if acc.students > 0 {
			s.DropRate = floatPtr(float64(acc.drops) / float64(acc.students) * 100)
		}
		summaries = append(summaries, s)
	}

	// Numeric sort key, never parsed back out of the summary string.
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].TotalStudents != summaries[j].TotalStudents {
			return summaries[i].TotalStudents > summaries[j].TotalStudents
		}
		return summaries[i].Name < summaries[j].Name
	})

	return summaries
}

// PastSections reshapes grade-distribution rows into per-offering records
// with a computed enrollment and letter breakdown.
func PastSections(rows []contracts.GradeDistributionRow) []contracts.PastSection {
	sections := make([]contracts.PastSection, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		sections = append(sections, contracts.PastSection{
			Term:       row.Term,
			Instructor: row.InstructorName(),
			Section:    row.Section,
			Enrolled:   row.GradedCount() + row.DroppedCount,
			AvgGPA:     row.AvgGPA,
			Letters: map[string]int{
				"A":  row.ACount,
				"B":  row.BCount,
				"C":  row.CCount,
				"D":  row.DCount,
				"F":  row.FCount,
				"W":  row.DroppedCount,
				"S":  row.SCount,
				"NR": row.NRCount,
			},
		})
	}
	return sections
}

// InstructorNarrative renders the templated sentence naming up to the first
// four instructors.
func InstructorNarrative(instructors []contracts.InstructorSummary) string {
	if len(instructors) == 0 {
		return "No instructor history is available for this course yet."
	}

	names := make([]string, 0, 4)
	for i, ins := range instructors {
		if i == 4 {
			break
		}
		names = append(names, ins.Name)
	}

	return fmt.Sprintf("Recent sections have been taught by %s.", joinNames(names))
}

// joinNames joins a name list as "A", "A and B", "A, B and C".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
