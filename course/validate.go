package course

import (
	"fmt"
	"strings"
)

// ValidationError lists every integrity problem found in a record.
type ValidationError struct {
	CourseCode string
	Issues     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("course %q is invalid: %s", e.CourseCode, strings.Join(e.Issues, "; "))
}

// Validate checks the record's own cross-references: enum values, syllabus
// week numbering, assignment due weeks and the assignment titles each week
// lists as due. It returns a *ValidationError or nil.
func (d *CourseDetails) Validate() error {
	var issues []string
	addf := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(d.CourseCode) == "" {
		addf("course_code is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		addf("title is required")
	}
	if strings.TrimSpace(d.Department) == "" {
		addf("department is required")
	}
	if d.Credits <= 0 {
		addf("credits must be positive, got %d", d.Credits)
	}
	if !d.DifficultyLevel.Valid() {
		addf("unknown difficulty_level %q", d.DifficultyLevel)
	}
	if !d.Format.Valid() {
		addf("unknown format %q", d.Format)
	}

	for i, week := range d.Syllabus {
		if week.WeekNumber != i+1 {
			addf("syllabus entry %d has week_number %d, want %d", i, week.WeekNumber, i+1)
		}
	}

	titles := make(map[string]bool, len(d.Assignments))
	totalWeeks := d.TotalWeeks()
	for _, a := range d.Assignments {
		titles[a.Title] = true
		if !a.Type.Valid() {
			addf("assignment %q has unknown type %q", a.Title, a.Type)
		}
		if a.DueWeek < 1 || a.DueWeek > totalWeeks {
			addf("assignment %q is due in week %d outside [1, %d]", a.Title, a.DueWeek, totalWeeks)
		}
		if a.Points < 0 {
			addf("assignment %q has negative points %d", a.Title, a.Points)
		}
		if a.EstimatedHours < 0 {
			addf("assignment %q has negative estimated_hours", a.Title)
		}
	}

	for _, week := range d.Syllabus {
		for _, due := range week.AssignmentsDue {
			if !titles[due] {
				addf("week %d lists unknown assignment %q as due", week.WeekNumber, due)
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{CourseCode: d.CourseCode, Issues: issues}
	}
	return nil
}
