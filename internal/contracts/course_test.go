package contracts

import "testing"

func TestCourseCodeValid(t *testing.T) {
	tests := []struct {
		name string
		code CourseCode
		want bool
	}{
		{"both parts", CourseCode{Subject: "COSC", Number: "3320"}, true},
		{"missing number", CourseCode{Subject: "COSC"}, false},
		{"missing subject", CourseCode{Number: "3320"}, false},
		{"empty", CourseCode{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGradeDistributionRowInstructorName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"both", "Ada", "Lovelace", "Ada Lovelace"},
		{"trimmed", "  Ada ", " Lovelace ", "Ada Lovelace"},
		{"first only", "Ada", "", "Ada"},
		{"last only", "", "Lovelace", "Lovelace"},
		{"blank", "  ", "", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := GradeDistributionRow{InstructorFirst: tt.first, InstructorLast: tt.last}
			if got := row.InstructorName(); got != tt.want {
				t.Errorf("InstructorName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDifficultyRowGradedCount(t *testing.T) {
	row := DifficultyRow{ACount: 1, BCount: 2, CCount: 3, DCount: 4, FCount: 5, SCount: 6, NRCount: 7, DroppedCount: 100}
	if got := row.GradedCount(); got != 28 {
		t.Errorf("GradedCount() = %d, want 28 (drops excluded)", got)
	}
}
