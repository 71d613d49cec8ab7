// Package hierarchy implements the two-tier progressive-disclosure retrieval
// manager.
//
// Tier 1 is a vector index of lightweight course summaries that is searched
// broadly. Tier 2 is a key-value store of full course details that is only
// read for the top-ranked tier-1 hits. A Manager owns both tiers and the
// course code index; nothing else should write to them.
//
// # Writes
//
// AddCourse embeds the summary first, then writes details, summary and code
// index in that order. If any write fails the earlier writes are deleted
// again, so a course is either present in both tiers or in neither. Failures
// are logged and reported through the boolean result, which suits batch
// ingestion where partial success is acceptable.
//
// # Reads
//
//	summaries, details, err := manager.HierarchicalSearch(ctx,
//		"machine learning for beginners", 10, 3,
//		store.FilterFor("Computer Science", course.DifficultyBeginner, ""))
//
// details is always a rank-ordered prefix of summaries, minus any course
// whose details could not be resolved. Embedding and index failures are
// returned to the caller; the manager never retries. Use the context to
// impose deadlines.
//
// A summary whose details are missing at read time is treated as an
// incomplete write: it is skipped, logged and quarantined. RepairQuarantined
// removes such orphans from tier 1.
package hierarchy
