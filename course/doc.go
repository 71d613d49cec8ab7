// Package course defines the two record shapes of the hierarchical catalog.
//
// A CourseSummary is the lightweight tier-1 record that gets embedded and
// searched. A CourseDetails is the comprehensive tier-2 record that is only
// fetched for top-ranked matches. Summaries are never authored on their own:
// they are derived from details with ToSummary so the two tiers cannot drift.
//
//	details := course.CourseDetails{CourseCode: "CS101", ...}
//	hc, err := course.NewHierarchicalCourse(details)
//	if err != nil {
//		// details failed validation
//	}
//	fmt.Println(hc.Summary.EmbeddingText)
package course
