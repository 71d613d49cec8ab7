package course

import "slices"

// Prerequisite references another course that must be completed first.
type Prerequisite struct {
	CourseCode      string `json:"course_code" yaml:"course_code"`
	CourseTitle     string `json:"course_title" yaml:"course_title"`
	MinimumGrade    string `json:"minimum_grade,omitempty" yaml:"minimum_grade,omitempty"`
	CanBeConcurrent bool   `json:"can_be_concurrent" yaml:"can_be_concurrent"`
}

// WeekPlan is one week of a syllabus.
type WeekPlan struct {
	WeekNumber         int      `json:"week_number" yaml:"week_number"`
	Topic              string   `json:"topic" yaml:"topic"`
	Subtopics          []string `json:"subtopics,omitempty" yaml:"subtopics,omitempty"`
	Readings           []string `json:"readings,omitempty" yaml:"readings,omitempty"`
	AssignmentsDue     []string `json:"assignments_due,omitempty" yaml:"assignments_due,omitempty"`
	LearningObjectives []string `json:"learning_objectives,omitempty" yaml:"learning_objectives,omitempty"`
}

// Assignment is a piece of graded work due in a syllabus week.
type Assignment struct {
	Title            string         `json:"title" yaml:"title"`
	Description      string         `json:"description" yaml:"description"`
	Type             AssignmentType `json:"type" yaml:"type"`
	DueWeek          int            `json:"due_week" yaml:"due_week"`
	Points           int            `json:"points" yaml:"points"`
	EstimatedHours   float64        `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	GroupWork        bool           `json:"group_work" yaml:"group_work"`
	SubmissionFormat string         `json:"submission_format,omitempty" yaml:"submission_format,omitempty"`
}

// CourseDetails is the comprehensive tier-2 representation of a course and
// the single authoritative source both tiers are built from.
type CourseDetails struct {
	ID              string          `json:"id,omitempty" yaml:"id,omitempty"`
	CourseCode      string          `json:"course_code" yaml:"course_code"`
	Title           string          `json:"title" yaml:"title"`
	Department      string          `json:"department" yaml:"department"`
	Credits         int             `json:"credits" yaml:"credits"`
	DifficultyLevel DifficultyLevel `json:"difficulty_level" yaml:"difficulty_level"`
	Format          CourseFormat    `json:"format" yaml:"format"`
	Instructor      string          `json:"instructor" yaml:"instructor"`
	Tags            []string        `json:"tags,omitempty" yaml:"tags,omitempty"`

	FullDescription    string         `json:"full_description" yaml:"full_description"`
	Prerequisites      []Prerequisite `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	LearningObjectives []string       `json:"learning_objectives,omitempty" yaml:"learning_objectives,omitempty"`
	Syllabus           []WeekPlan     `json:"syllabus,omitempty" yaml:"syllabus,omitempty"`
	Assignments        []Assignment   `json:"assignments,omitempty" yaml:"assignments,omitempty"`
	Semester           string         `json:"semester,omitempty" yaml:"semester,omitempty"`
	Year               int            `json:"year,omitempty" yaml:"year,omitempty"`
	MaxEnrollment      int            `json:"max_enrollment,omitempty" yaml:"max_enrollment,omitempty"`
}

// ToSummary derives the tier-1 summary. The short description is the first
// two sentences of the full description.
func (d *CourseDetails) ToSummary() CourseSummary {
	var codes []string
	for _, p := range d.Prerequisites {
		codes = append(codes, p.CourseCode)
	}

	s := CourseSummary{
		CourseCode:        d.CourseCode,
		Title:             d.Title,
		Department:        d.Department,
		Credits:           d.Credits,
		DifficultyLevel:   d.DifficultyLevel,
		Format:            d.Format,
		Instructor:        d.Instructor,
		ShortDescription:  firstSentences(d.FullDescription, 2),
		PrerequisiteCodes: codes,
		Tags:              slices.Clone(d.Tags),
	}
	s.EmbeddingText = GenerateEmbeddingText(s)
	return s
}

// TotalPoints sums the points of every assignment.
func (d *CourseDetails) TotalPoints() int {
	total := 0
	for _, a := range d.Assignments {
		total += a.Points
	}
	return total
}

// TotalAssignments counts the assignments.
func (d *CourseDetails) TotalAssignments() int {
	return len(d.Assignments)
}

// TotalWeeks is the number of weeks in the syllabus.
func (d *CourseDetails) TotalWeeks() int {
	return len(d.Syllabus)
}
