package assembler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/smallnest/coursectx/course"
)

// Assembler builds context strings. It holds no per-call state and is safe
// for concurrent use.
type Assembler struct {
	estimator TokenEstimator
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithEstimator replaces the default HeuristicEstimator.
func WithEstimator(e TokenEstimator) Option {
	return func(a *Assembler) {
		a.estimator = e
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	if a.estimator == nil {
		a.estimator = HeuristicEstimator{}
	}
	return a
}

// EstimateTokens approximates the token count of text.
func (a *Assembler) EstimateTokens(text string) int {
	return a.estimator.EstimateTokens(text)
}

// AssembleSummaryOnlyContext renders an overview block for each summary.
func (a *Assembler) AssembleSummaryOnlyContext(summaries []course.CourseSummary, query string) string {
	var b strings.Builder
	writeHeader(&b, query)
	writeOverview(&b, summaries)
	return b.String()
}

// AssembleHierarchicalContext renders every summary, then expands each of
// details in the given order.
func (a *Assembler) AssembleHierarchicalContext(summaries []course.CourseSummary, details []course.CourseDetails, query string) string {
	var b strings.Builder
	writeHeader(&b, query)
	writeOverview(&b, summaries)

	if len(details) > 0 {
		fmt.Fprintf(&b, "## Detailed Information (%d courses)\n\n", len(details))
		for i := range details {
			writeDetails(&b, &details[i])
		}
	}
	return b.String()
}

// AssembleWithBudget renders the hierarchical context and drops trailing
// details while the estimate exceeds maxTokens. At least one detail is kept
// if any were given. It returns the context and its estimated token count.
func (a *Assembler) AssembleWithBudget(summaries []course.CourseSummary, details []course.CourseDetails, query string, maxTokens int) (string, int) {
	context, tokens, _ := a.assembleWithBudget(summaries, details, query, maxTokens)
	return context, tokens
}

func (a *Assembler) assembleWithBudget(summaries []course.CourseSummary, details []course.CourseDetails, query string, maxTokens int) (string, int, int) {
	kept := len(details)
	context := a.AssembleHierarchicalContext(summaries, details[:kept], query)
	tokens := a.EstimateTokens(context)

	for tokens > maxTokens && kept > 1 {
		kept--
		context = a.AssembleHierarchicalContext(summaries, details[:kept], query)
		tokens = a.EstimateTokens(context)
	}
	return context, tokens, kept
}

func writeHeader(b *strings.Builder, query string) {
	b.WriteString("# Course Search Results\n\n")
	if query != "" {
		fmt.Fprintf(b, "Query: %s\n\n", query)
	}
}

func writeOverview(b *strings.Builder, summaries []course.CourseSummary) {
	if len(summaries) == 0 {
		b.WriteString("No matching courses found.\n\n")
		return
	}

	fmt.Fprintf(b, "## Course Overview (%d courses)\n\n", len(summaries))
	for i := range summaries {
		writeSummary(b, i+1, &summaries[i])
	}
}

func writeSummary(b *strings.Builder, rank int, s *course.CourseSummary) {
	fmt.Fprintf(b, "### %d. %s: %s\n", rank, s.CourseCode, s.Title)
	writeField(b, "Department", s.Department)
	writeField(b, "Instructor", s.Instructor)
	fmt.Fprintf(b, "- Credits: %d | Level: %s | Format: %s\n", s.Credits, s.DifficultyLevel, s.Format)
	writeField(b, "Summary", s.ShortDescription)
	writeField(b, "Prerequisites", strings.Join(s.PrerequisiteCodes, ", "))
	writeField(b, "Tags", strings.Join(s.Tags, ", "))
	b.WriteString("\n")
}

func writeField(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", name, value)
}

func writeDetails(b *strings.Builder, d *course.CourseDetails) {
	fmt.Fprintf(b, "### %s: %s\n\n", d.CourseCode, d.Title)

	if term := formatTerm(d); term != "" {
		fmt.Fprintf(b, "%s\n\n", term)
	}

	if d.FullDescription != "" {
		fmt.Fprintf(b, "#### Description\n\n%s\n\n", d.FullDescription)
	}

	if len(d.LearningObjectives) > 0 {
		b.WriteString("#### Learning Objectives\n\n")
		for i, obj := range d.LearningObjectives {
			fmt.Fprintf(b, "%d. %s\n", i+1, obj)
		}
		b.WriteString("\n")
	}

	if len(d.Prerequisites) > 0 {
		b.WriteString("#### Prerequisites\n\n")
		for _, p := range d.Prerequisites {
			b.WriteString(formatPrerequisite(p))
		}
		b.WriteString("\n")
	}

	if len(d.Assignments) > 0 {
		fmt.Fprintf(b, "#### Assignments (%d, %d points total)\n\n", d.TotalAssignments(), d.TotalPoints())
		writeAssignments(b, d.Assignments)
	}

	if len(d.Syllabus) > 0 {
		fmt.Fprintf(b, "#### Syllabus (%d weeks)\n\n", d.TotalWeeks())
		for _, week := range d.Syllabus {
			writeWeek(b, week)
		}
	}
}

func formatTerm(d *course.CourseDetails) string {
	var parts []string
	if d.Semester != "" && d.Year > 0 {
		parts = append(parts, fmt.Sprintf("%s %d", d.Semester, d.Year))
	} else if d.Semester != "" {
		parts = append(parts, d.Semester)
	}
	if d.MaxEnrollment > 0 {
		parts = append(parts, fmt.Sprintf("max enrollment %d", d.MaxEnrollment))
	}
	if len(parts) == 0 {
		return ""
	}
	return "*" + strings.Join(parts, ", ") + "*"
}

func formatPrerequisite(p course.Prerequisite) string {
	line := "- " + p.CourseCode
	if p.CourseTitle != "" {
		line += " " + p.CourseTitle
	}
	var notes []string
	if p.MinimumGrade != "" {
		notes = append(notes, "minimum grade "+p.MinimumGrade)
	}
	if p.CanBeConcurrent {
		notes = append(notes, "may be taken concurrently")
	}
	if len(notes) > 0 {
		line += " (" + strings.Join(notes, ", ") + ")"
	}
	return line + "\n"
}

// writeAssignments groups assignments by type, in the order of
// course.AssignmentTypes, each group sorted by due week.
func writeAssignments(b *strings.Builder, assignments []course.Assignment) {
	groups := make(map[course.AssignmentType][]course.Assignment)
	var unknown []course.Assignment
	for _, a := range assignments {
		if a.Type.Valid() {
			groups[a.Type] = append(groups[a.Type], a)
		} else {
			unknown = append(unknown, a)
		}
	}

	write := func(title string, group []course.Assignment) {
		if len(group) == 0 {
			return
		}
		slices.SortStableFunc(group, func(x, y course.Assignment) int {
			return x.DueWeek - y.DueWeek
		})
		fmt.Fprintf(b, "**%s**\n", title)
		for _, a := range group {
			b.WriteString(formatAssignment(a))
		}
		b.WriteString("\n")
	}

	for _, t := range course.AssignmentTypes {
		write(typeTitle(t), groups[t])
	}
	write("Other", unknown)
}

func typeTitle(t course.AssignmentType) string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatAssignment(a course.Assignment) string {
	line := fmt.Sprintf("- Week %d: %s (%d points", a.DueWeek, a.Title, a.Points)
	if a.EstimatedHours > 0 {
		line += fmt.Sprintf(", ~%g hours", a.EstimatedHours)
	}
	if a.GroupWork {
		line += ", group work"
	}
	if a.SubmissionFormat != "" {
		line += ", submit as " + a.SubmissionFormat
	}
	line += ")"
	if a.Description != "" {
		line += " " + a.Description
	}
	return line + "\n"
}

func writeWeek(b *strings.Builder, w course.WeekPlan) {
	fmt.Fprintf(b, "**Week %d: %s**\n", w.WeekNumber, w.Topic)
	writeField(b, "Subtopics", strings.Join(w.Subtopics, ", "))
	writeField(b, "Readings", strings.Join(w.Readings, "; "))
	writeField(b, "Due", strings.Join(w.AssignmentsDue, ", "))
	writeField(b, "Objectives", strings.Join(w.LearningObjectives, "; "))
	b.WriteString("\n")
}
