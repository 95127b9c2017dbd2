package catalog

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/coogplanner/backend/internal/contracts"
)

var (
	codeSeparators = regexp.MustCompile(`[\s-]+`)
	concatenated   = regexp.MustCompile(`^([A-Z]+)(\d.*)$`)
)

// ParseCourseCode normalizes free-form course code input into a
// (subject, number) pair. Accepted forms include "COSC 3320", "COSC-3320"
// and "cosc3320"; input may be URL-encoded.
//
// Unparseable input yields a code with an empty Number (or Subject); callers
// must check Valid() and treat failures as not-found without querying the
// data source.
func ParseCourseCode(raw string) contracts.CourseCode {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	decoded = strings.ToUpper(strings.TrimSpace(decoded))
	if decoded == "" {
		return contracts.CourseCode{}
	}

	if tokens := codeSeparators.Split(decoded, -1); len(tokens) >= 2 && tokens[0] != "" && tokens[1] != "" {
		return contracts.CourseCode{Subject: tokens[0], Number: tokens[1]}
	}

	if m := concatenated.FindStringSubmatch(decoded); m != nil {
		return contracts.CourseCode{Subject: m[1], Number: m[2]}
	}

	// Whole string as subject with no number; Valid() is false.
	return contracts.CourseCode{Subject: decoded}
}
