package catalog

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/smallnest/coursectx/course"
)

type department struct {
	name   string
	prefix string
	topics []string
}

var departments = []department{
	{"Computer Science", "CS", []string{"Programming", "Data Structures", "Databases", "Machine Learning", "Operating Systems", "Computer Networks", "Compilers", "Distributed Systems"}},
	{"Mathematics", "MATH", []string{"Calculus", "Linear Algebra", "Probability", "Statistics", "Number Theory", "Real Analysis"}},
	{"Physics", "PHYS", []string{"Mechanics", "Electromagnetism", "Thermodynamics", "Quantum Mechanics", "Optics"}},
	{"Biology", "BIO", []string{"Cell Biology", "Genetics", "Ecology", "Microbiology", "Neuroscience"}},
	{"History", "HIST", []string{"Ancient History", "Medieval Europe", "Modern China", "American History", "World Wars"}},
	{"Economics", "ECON", []string{"Microeconomics", "Macroeconomics", "Econometrics", "Game Theory", "Public Finance"}},
}

var instructors = []string{
	"Dr. Ada Lovelace", "Dr. Alan Turing", "Dr. Grace Hopper", "Dr. Emmy Noether",
	"Dr. Richard Feynman", "Dr. Rosalind Franklin", "Dr. John Nash", "Dr. Mary Beard",
}

var levels = []course.DifficultyLevel{
	course.DifficultyBeginner,
	course.DifficultyIntermediate,
	course.DifficultyAdvanced,
	course.DifficultyGraduate,
}

var formats = []course.CourseFormat{course.FormatInPerson, course.FormatOnline, course.FormatHybrid}

// Generate returns n synthetic courses. The same seed always yields the same
// catalog. Every course validates and every prerequisite refers to an
// earlier course in the same department.
func Generate(n int, seed uint64) []course.CourseDetails {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	courses := make([]course.CourseDetails, 0, n)

	for i := range n {
		dept := departments[i%len(departments)]
		seq := i / len(departments)
		level := levels[seq%len(levels)]
		number := 100*(1+seq%len(levels)) + seq/len(levels) + 1
		topic := dept.topics[seq%len(dept.topics)]

		d := course.CourseDetails{
			CourseCode:      fmt.Sprintf("%s%d", dept.prefix, number),
			Title:           titleFor(topic, level),
			Department:      dept.name,
			Credits:         3 + r.IntN(2),
			DifficultyLevel: level,
			Format:          formats[r.IntN(len(formats))],
			Instructor:      instructors[r.IntN(len(instructors))],
			Tags:            []string{strings.ToLower(topic), strings.ToLower(dept.prefix), string(level)},
			FullDescription: fmt.Sprintf(
				"This course covers %s within %s. Students work through %s material in lectures and labs. Assessment combines regular assignments with a final evaluation.",
				strings.ToLower(topic), strings.ToLower(dept.name), level),
			LearningObjectives: []string{
				"Explain the core concepts of " + strings.ToLower(topic),
				"Apply " + strings.ToLower(topic) + " techniques to unfamiliar problems",
			},
			Semester:      []string{"Fall", "Spring"}[r.IntN(2)],
			Year:          2025 + r.IntN(2),
			MaxEnrollment: 20 + r.IntN(180),
		}

		if seq > 0 {
			prev := courses[i-len(departments)]
			d.Prerequisites = []course.Prerequisite{{
				CourseCode:      prev.CourseCode,
				CourseTitle:     prev.Title,
				MinimumGrade:    "C",
				CanBeConcurrent: r.IntN(4) == 0,
			}}
		}

		d.Syllabus, d.Assignments = generateSchedule(r, topic)
		courses = append(courses, d)
	}
	return courses
}

func titleFor(topic string, level course.DifficultyLevel) string {
	switch level {
	case course.DifficultyBeginner:
		return "Introduction to " + topic
	case course.DifficultyAdvanced:
		return "Advanced " + topic
	case course.DifficultyGraduate:
		return "Graduate Seminar in " + topic
	default:
		return topic
	}
}

func generateSchedule(r *rand.Rand, topic string) ([]course.WeekPlan, []course.Assignment) {
	weeks := 4 + r.IntN(9)
	syllabus := make([]course.WeekPlan, weeks)
	for w := range syllabus {
		syllabus[w] = course.WeekPlan{
			WeekNumber: w + 1,
			Topic:      fmt.Sprintf("%s, part %d", topic, w+1),
			Readings:   []string{fmt.Sprintf("Chapter %d", w+1)},
		}
	}

	count := 3 + r.IntN(4)
	assignments := make([]course.Assignment, count)
	for j := range assignments {
		kind := course.AssignmentTypes[r.IntN(len(course.AssignmentTypes))]
		due := 1 + r.IntN(weeks)
		if j == count-1 {
			kind, due = course.AssignmentExam, weeks
		}
		a := course.Assignment{
			Title:          fmt.Sprintf("%s %d", strings.ToUpper(string(kind[:1]))+string(kind[1:]), j+1),
			Description:    fmt.Sprintf("%s on %s", kind, strings.ToLower(topic)),
			Type:           kind,
			DueWeek:        due,
			Points:         10 * (1 + r.IntN(10)),
			EstimatedHours: float64(1 + r.IntN(12)),
			GroupWork:      kind == course.AssignmentProject,
		}
		assignments[j] = a
		syllabus[due-1].AssignmentsDue = append(syllabus[due-1].AssignmentsDue, a.Title)
	}
	return syllabus, assignments
}
