package course

import "fmt"

// DifficultyLevel is the academic level of a course.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
	DifficultyGraduate     DifficultyLevel = "graduate"
)

// Valid reports whether d is a known difficulty level.
func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyGraduate:
		return true
	}
	return false
}

// CourseFormat is the delivery format of a course.
type CourseFormat string

const (
	FormatInPerson CourseFormat = "in-person"
	FormatOnline   CourseFormat = "online"
	FormatHybrid   CourseFormat = "hybrid"
)

// Valid reports whether f is a known format.
func (f CourseFormat) Valid() bool {
	switch f {
	case FormatInPerson, FormatOnline, FormatHybrid:
		return true
	}
	return false
}

// AssignmentType classifies graded work.
type AssignmentType string

const (
	AssignmentHomework     AssignmentType = "homework"
	AssignmentProject      AssignmentType = "project"
	AssignmentQuiz         AssignmentType = "quiz"
	AssignmentExam         AssignmentType = "exam"
	AssignmentLab          AssignmentType = "lab"
	AssignmentReading      AssignmentType = "reading"
	AssignmentPresentation AssignmentType = "presentation"
)

// AssignmentTypes lists every assignment type in display order.
var AssignmentTypes = []AssignmentType{
	AssignmentHomework,
	AssignmentProject,
	AssignmentQuiz,
	AssignmentExam,
	AssignmentLab,
	AssignmentReading,
	AssignmentPresentation,
}

// Valid reports whether t is a known assignment type.
func (t AssignmentType) Valid() bool {
	for _, known := range AssignmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseDifficulty converts a string into a DifficultyLevel.
func ParseDifficulty(s string) (DifficultyLevel, error) {
	d := DifficultyLevel(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty level %q", s)
	}
	return d, nil
}

// ParseFormat converts a string into a CourseFormat.
func ParseFormat(s string) (CourseFormat, error) {
	f := CourseFormat(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown course format %q", s)
	}
	return f, nil
}
