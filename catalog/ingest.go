package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/log"
)

// Adder stores a course. hierarchy.Manager implements it.
type Adder interface {
	AddCourse(ctx context.Context, hc course.HierarchicalCourse) bool
}

// IngestOptions controls Ingest.
type IngestOptions struct {
	// RejectDangling rejects courses whose prerequisites name unknown
	// courses instead of flagging them for review.
	RejectDangling bool

	Logger log.Logger
}

// Rejection records why a course was not ingested.
type Rejection struct {
	CourseCode string
	Reason     string
}

// IngestReport summarizes an Ingest run.
type IngestReport struct {
	Added    int
	Failed   int
	Rejected []Rejection

	// NeedsReview maps ingested course codes to prerequisite codes that
	// matched no course in the batch.
	NeedsReview map[string][]string
}

// DanglingPrerequisites returns, per course code, the prerequisite codes that
// name no course in courses.
func DanglingPrerequisites(courses []course.CourseDetails) map[string][]string {
	known := make(map[string]bool, len(courses))
	for _, c := range courses {
		known[c.CourseCode] = true
	}

	dangling := make(map[string][]string)
	for _, c := range courses {
		for _, p := range c.Prerequisites {
			if !known[p.CourseCode] {
				dangling[c.CourseCode] = append(dangling[c.CourseCode], p.CourseCode)
			}
		}
	}
	return dangling
}

// Ingest validates courses and adds the valid ones through adder. It only
// returns an error when ctx is done; per-course problems are in the report.
func Ingest(ctx context.Context, adder Adder, courses []course.CourseDetails, opts IngestOptions) (*IngestReport, error) {
	logger := log.OrDefault(opts.Logger)
	report := &IngestReport{NeedsReview: make(map[string][]string)}
	dangling := DanglingPrerequisites(courses)
	seen := make(map[string]bool, len(courses))

	reject := func(code, reason string) {
		report.Rejected = append(report.Rejected, Rejection{CourseCode: code, Reason: reason})
		logger.Warn("rejected course %s: %s", code, reason)
	}

	for _, d := range courses {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		code := d.CourseCode
		if seen[course.NormalizeCode(code)] {
			reject(code, "duplicate course code")
			continue
		}

		hc, err := course.NewHierarchicalCourse(d)
		if err != nil {
			reject(code, err.Error())
			continue
		}
		seen[course.NormalizeCode(code)] = true

		if missing := dangling[code]; len(missing) > 0 {
			if opts.RejectDangling {
				reject(code, fmt.Sprintf("unknown prerequisites %s", strings.Join(missing, ", ")))
				continue
			}
			report.NeedsReview[code] = missing
			logger.Warn("course %s needs review: unknown prerequisites %s", code, strings.Join(missing, ", "))
		}

		if adder.AddCourse(ctx, hc) {
			report.Added++
		} else {
			report.Failed++
		}
	}

	logger.Info("ingested %d courses: %d added, %d failed, %d rejected, %d need review",
		len(courses), report.Added, report.Failed, len(report.Rejected), len(report.NeedsReview))
	return report, nil
}
