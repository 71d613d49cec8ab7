package course

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// idNamespace scopes the name-based UUIDs generated for course ids.
var idNamespace = uuid.MustParse("6f1c2a4e-9b7d-4e52-8c3a-1d2e5f7a9b0c")

// HierarchicalCourse pairs the two tiers of one catalog entity under a
// single stable id.
type HierarchicalCourse struct {
	ID      string        `json:"id"`
	Summary CourseSummary `json:"summary"`
	Details CourseDetails `json:"details"`
}

// NormalizeCode returns the canonical form of a course code used for ids and
// index keys: trimmed and upper-cased.
func NormalizeCode(courseCode string) string {
	return strings.ToUpper(strings.TrimSpace(courseCode))
}

// NewID returns the stable entity id for a course code. Re-ingesting the same
// code yields the same id, so delete-and-reinsert keeps keys stable.
func NewID(courseCode string) string {
	return uuid.NewSHA1(idNamespace, []byte(NormalizeCode(courseCode))).String()
}

// NewHierarchicalCourse validates details and derives the summary tier.
func NewHierarchicalCourse(details CourseDetails) (HierarchicalCourse, error) {
	if err := details.Validate(); err != nil {
		return HierarchicalCourse{}, err
	}
	if details.ID == "" {
		details.ID = NewID(details.CourseCode)
	}
	return HierarchicalCourse{
		ID:      details.ID,
		Summary: details.ToSummary(),
		Details: details,
	}, nil
}

// ValidateConsistency reports whether the summary and details agree on the
// shared identity fields.
func ValidateConsistency(hc HierarchicalCourse) bool {
	return hc.Summary.CourseCode == hc.Details.CourseCode &&
		hc.Summary.Title == hc.Details.Title &&
		hc.Summary.Department == hc.Details.Department
}

// CheckConsistency is ValidateConsistency with a descriptive error.
func CheckConsistency(hc HierarchicalCourse) error {
	if ValidateConsistency(hc) {
		return nil
	}
	return fmt.Errorf("summary %s/%q/%q does not match details %s/%q/%q",
		hc.Summary.CourseCode, hc.Summary.Title, hc.Summary.Department,
		hc.Details.CourseCode, hc.Details.Title, hc.Details.Department)
}
