package assembler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/coursectx/course"
)

func details(code string, sentences int) course.CourseDetails {
	return course.CourseDetails{
		CourseCode:      code,
		Title:           "Course " + code,
		Department:      "Computer Science",
		Credits:         3,
		DifficultyLevel: course.DifficultyIntermediate,
		Format:          course.FormatInPerson,
		Instructor:      "Dr. Grace Hopper",
		FullDescription: strings.TrimSpace(strings.Repeat("Lecture covers core ideas in depth. ", sentences)),
		Syllabus: []course.WeekPlan{
			{WeekNumber: 1, Topic: "Basics"},
			{WeekNumber: 2, Topic: "Advanced"},
		},
	}
}

func summariesOf(ds []course.CourseDetails) []course.CourseSummary {
	out := make([]course.CourseSummary, len(ds))
	for i := range ds {
		out[i] = ds[i].ToSummary()
	}
	return out
}

func TestEstimateTokens(t *testing.T) {
	a := New()
	assert.Equal(t, 0, a.EstimateTokens(""))
	assert.Equal(t, 0, a.EstimateTokens("abc"))
	assert.Equal(t, 1, a.EstimateTokens("abcd"))
	assert.Equal(t, 25, a.EstimateTokens(strings.Repeat("x", 100)))
}

type fixedEstimator int

func (f fixedEstimator) EstimateTokens(string) int { return int(f) }

func TestWithEstimator(t *testing.T) {
	a := New(WithEstimator(fixedEstimator(42)))
	assert.Equal(t, 42, a.EstimateTokens("anything"))
}

func TestAssembleSummaryOnlyContext(t *testing.T) {
	d := details("CS101", 10)
	d.Tags = []string{"intro", "programming"}
	d.Prerequisites = []course.Prerequisite{{CourseCode: "MATH100"}}
	s := d.ToSummary()

	out := New().AssembleSummaryOnlyContext([]course.CourseSummary{s}, "intro programming")

	assert.Contains(t, out, "Query: intro programming")
	assert.Contains(t, out, "### 1. CS101: Course CS101")
	assert.Contains(t, out, "- Department: Computer Science")
	assert.Contains(t, out, "- Instructor: Dr. Grace Hopper")
	assert.Contains(t, out, "- Credits: 3 | Level: intermediate | Format: in-person")
	assert.Contains(t, out, "- Prerequisites: MATH100")
	assert.Contains(t, out, "- Tags: intro, programming")
	assert.NotContains(t, out, "Detailed Information")
}

func TestAssembleSummaryOnlyContext_OmitsEmptyFields(t *testing.T) {
	d := details("CS101", 3)
	s := d.ToSummary()

	out := New().AssembleSummaryOnlyContext([]course.CourseSummary{s}, "")

	assert.NotContains(t, out, "Prerequisites")
	assert.NotContains(t, out, "Tags")
	assert.NotContains(t, out, "Query:")
}

func TestAssembleSummaryOnlyContext_Empty(t *testing.T) {
	out := New().AssembleSummaryOnlyContext(nil, "nothing")
	assert.Contains(t, out, "No matching courses found.")
}

func TestAssembleHierarchicalContext(t *testing.T) {
	d := details("CS201", 5)
	d.LearningObjectives = []string{"Implement lists", "Analyze complexity"}
	d.Prerequisites = []course.Prerequisite{
		{CourseCode: "CS101", CourseTitle: "Intro", MinimumGrade: "C"},
		{CourseCode: "MATH120", CourseTitle: "Discrete Math", CanBeConcurrent: true},
	}
	d.Syllabus = []course.WeekPlan{
		{WeekNumber: 1, Topic: "Arrays", Subtopics: []string{"indexing", "slices"}, AssignmentsDue: []string{"Quiz 1"}},
		{WeekNumber: 2, Topic: "Lists"},
		{WeekNumber: 3, Topic: "Trees", Readings: []string{"Chapter 5"}},
	}
	d.Assignments = []course.Assignment{
		{Title: "HW2", Type: course.AssignmentHomework, DueWeek: 3, Points: 20},
		{Title: "Quiz 1", Type: course.AssignmentQuiz, DueWeek: 1, Points: 10},
		{Title: "HW1", Type: course.AssignmentHomework, DueWeek: 1, Points: 20, GroupWork: true},
		{Title: "Project", Type: course.AssignmentProject, DueWeek: 3, Points: 100, EstimatedHours: 12.5},
	}
	d.Semester = "Spring"
	d.Year = 2027
	other := details("CS100", 5)

	out := New().AssembleHierarchicalContext(summariesOf([]course.CourseDetails{d, other}), []course.CourseDetails{d}, "data structures")

	assert.Contains(t, out, "## Course Overview (2 courses)")
	assert.Contains(t, out, "## Detailed Information (1 courses)")
	assert.Contains(t, out, "*Spring 2027*")
	assert.Contains(t, out, "#### Learning Objectives\n\n1. Implement lists\n2. Analyze complexity\n")
	assert.Contains(t, out, "- CS101 Intro (minimum grade C)")
	assert.Contains(t, out, "- MATH120 Discrete Math (may be taken concurrently)")
	assert.Contains(t, out, "#### Assignments (4, 150 points total)")
	assert.Contains(t, out, "- Week 3: Project (100 points, ~12.5 hours)")
	assert.Contains(t, out, "#### Syllabus (3 weeks)")
	assert.Contains(t, out, "- Subtopics: indexing, slices")
	assert.Contains(t, out, "- Readings: Chapter 5")

	// Groups follow the assignment type order, each sorted by due week.
	hw1 := strings.Index(out, "HW1")
	hw2 := strings.Index(out, "HW2")
	project := strings.Index(out, "**Project**")
	quiz := strings.Index(out, "**Quiz**")
	require.True(t, hw1 > 0 && hw2 > 0 && project > 0 && quiz > 0)
	assert.Less(t, hw1, hw2)
	assert.Less(t, hw2, project)
	assert.Less(t, project, quiz)

	// Only the expanded course gets a detail section.
	assert.NotContains(t, out, "### CS100: Course CS100")
}

func TestAssembleHierarchicalContext_OmitsAbsentSections(t *testing.T) {
	d := details("CS105", 0)
	d.Syllabus = nil

	out := New().AssembleHierarchicalContext(summariesOf([]course.CourseDetails{d}), []course.CourseDetails{d}, "q")

	for _, heading := range []string{"#### Description", "#### Learning Objectives", "#### Prerequisites", "#### Assignments", "#### Syllabus"} {
		assert.NotContains(t, out, heading)
	}
	assert.Contains(t, out, "### CS105: Course CS105")
}

func largeFixture() ([]course.CourseSummary, []course.CourseDetails) {
	ds := []course.CourseDetails{
		details("CS301", 300),
		details("CS302", 300),
		details("CS303", 300),
	}
	return summariesOf(ds), ds
}

func TestAssembleWithBudget_TrimsTail(t *testing.T) {
	a := New()
	summaries, ds := largeFixture()

	full := a.AssembleHierarchicalContext(summaries, ds, "systems")
	fullTokens := a.EstimateTokens(full)
	require.Greater(t, fullTokens, 5000)

	context, tokens, kept := a.assembleWithBudget(summaries, ds, "systems", 2000)

	assert.LessOrEqual(t, kept, 2)
	assert.LessOrEqual(t, tokens, fullTokens)
	assert.Equal(t, a.EstimateTokens(context), tokens)
	assert.Contains(t, context, "### CS301: Course CS301")
	assert.NotContains(t, context, "### CS303: Course CS303")
}

func TestAssembleWithBudget_SingleItemFloor(t *testing.T) {
	a := New()
	summaries, ds := largeFixture()

	context, tokens, kept := a.assembleWithBudget(summaries, ds, "systems", 1)

	assert.Equal(t, 1, kept)
	assert.Greater(t, tokens, 1)
	assert.Contains(t, context, "### CS301: Course CS301")
}

func TestAssembleWithBudget_UnderBudgetKeepsAll(t *testing.T) {
	a := New()
	summaries, ds := largeFixture()

	context, tokens, kept := a.assembleWithBudget(summaries, ds, "systems", 1_000_000)

	assert.Equal(t, 3, kept)
	assert.Equal(t, a.AssembleHierarchicalContext(summaries, ds, "systems"), context)
	assert.Equal(t, a.EstimateTokens(context), tokens)
}

func TestAssembleWithBudget_NoDetails(t *testing.T) {
	a := New()
	summaries, _ := largeFixture()

	context, tokens := a.AssembleWithBudget(summaries, nil, "systems", 1)

	assert.NotEmpty(t, context)
	assert.Equal(t, a.EstimateTokens(context), tokens)
}

func TestAssembleWithBudget_Monotone(t *testing.T) {
	a := New()
	summaries, ds := largeFixture()

	prevKept := len(ds) + 1
	for budget := 10000; budget >= 0; budget -= 500 {
		_, _, kept := a.assembleWithBudget(summaries, ds, "systems", budget)
		assert.LessOrEqual(t, kept, prevKept, fmt.Sprintf("budget %d", budget))
		assert.GreaterOrEqual(t, kept, 1)
		prevKept = kept
	}
}

func TestRenderHTML(t *testing.T) {
	d := details("CS101", 4)
	out := New().AssembleSummaryOnlyContext([]course.CourseSummary{d.ToSummary()}, "<script>alert(1)</script>")

	rendered := string(RenderHTML(out))

	assert.Contains(t, rendered, "<h1")
	assert.Contains(t, rendered, "Course Search Results")
	assert.Contains(t, rendered, "<li>")
	assert.NotContains(t, rendered, "<script>")
}

func TestTiktokenEstimator(t *testing.T) {
	e, err := NewTiktokenEstimator("")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}

	assert.Equal(t, 0, e.EstimateTokens(""))
	assert.Greater(t, e.EstimateTokens("hierarchical course retrieval"), 0)
}
