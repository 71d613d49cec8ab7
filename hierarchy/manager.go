package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/embedding"
	"github.com/smallnest/coursectx/log"
	"github.com/smallnest/coursectx/store"
)

// ErrCourseNotFound is returned when a course code has no index entry.
var ErrCourseNotFound = errors.New("course not found")

const (
	tierSummary = "summary"
	tierDetails = "details"

	statusOK     = "ok"
	statusError  = "error"
	statusFailed = "failed"
	statusReject = "rejected"

	missUnknownCode    = "unknown_code"
	missMissingDetails = "missing_details"
)

// Manager coordinates the summary index, the details store and the code index.
type Manager struct {
	embedder  embedding.Embedder
	summaries store.SummaryIndex
	details   store.DetailsStore
	codes     store.CodeIndex
	logger    log.Logger
	metrics   *Metrics

	mu          sync.Mutex
	quarantined map[string]string // id -> course code
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Without one the manager is silent.
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics sets the Prometheus collectors.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// NewManager creates a manager over the given stores.
func NewManager(embedder embedding.Embedder, summaries store.SummaryIndex, details store.DetailsStore, codes store.CodeIndex, opts ...Option) *Manager {
	m := &Manager{
		embedder:    embedder,
		summaries:   summaries,
		details:     details,
		codes:       codes,
		quarantined: make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = log.OrDefault(m.logger)
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	return m
}

// Init prepares the summary index for the embedder's dimension.
func (m *Manager) Init(ctx context.Context) error {
	if err := m.summaries.EnsureIndex(ctx, m.embedder.Dimension()); err != nil {
		return fmt.Errorf("failed to prepare summary index: %w", err)
	}
	return nil
}

// AddCourse stores both tiers of hc and indexes its course code. It reports
// whether the course was stored; failures are logged and any partial write is
// undone. Re-adding a stored course replaces it, and a failed replacement
// leaves the previous version in place.
func (m *Manager) AddCourse(ctx context.Context, hc course.HierarchicalCourse) bool {
	code := course.NormalizeCode(hc.Summary.CourseCode)
	if err := course.CheckConsistency(hc); err != nil {
		m.logger.Error("rejected course %s: %v", code, err)
		m.metrics.WritesTotal.WithLabelValues(statusReject).Inc()
		return false
	}
	if hc.ID == "" {
		hc.ID = course.NewID(code)
	}
	hc.Details.ID = hc.ID

	existing, indexed, err := m.codes.Lookup(ctx, code)
	if err != nil {
		m.logger.Error("failed to look up course %s: %v", code, err)
		m.metrics.WritesTotal.WithLabelValues(statusFailed).Inc()
		return false
	}
	if indexed && existing != hc.ID {
		m.logger.Error("rejected course %s: code already belongs to %s", code, existing)
		m.metrics.WritesTotal.WithLabelValues(statusReject).Inc()
		return false
	}

	var previous *course.CourseDetails
	if indexed {
		previous, err = m.details.Get(ctx, hc.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			m.logger.Error("failed to read stored details for %s: %v", code, err)
			m.metrics.WritesTotal.WithLabelValues(statusFailed).Inc()
			return false
		}
	}

	summary := hc.Summary
	if !summary.EmbeddingTextValid() {
		m.logger.Warn("regenerating stale embedding text for %s", code)
		summary.EmbeddingText = ""
	}
	if summary.EmbeddingText == "" {
		summary.EmbeddingText = course.GenerateEmbeddingText(summary)
	}

	vector, err := m.embedder.Embed(ctx, summary.EmbeddingText)
	if err != nil {
		m.logger.Error("failed to embed course %s: %v", code, err)
		m.metrics.WritesTotal.WithLabelValues(statusFailed).Inc()
		return false
	}

	if err := m.details.Put(ctx, hc.ID, hc.Details); err != nil {
		m.logger.Error("failed to store details for %s: %v", code, err)
		m.metrics.WritesTotal.WithLabelValues(statusFailed).Inc()
		return false
	}

	record := store.SummaryRecord{ID: hc.ID, Summary: summary, Vector: vector}
	if err := m.summaries.Upsert(ctx, record); err != nil {
		m.logger.Error("failed to store summary for %s: %v", code, err)
		m.rollback(ctx, hc.ID, code, false, previous)
		return false
	}

	if !indexed {
		if err := m.codes.Set(ctx, code, hc.ID); err != nil {
			m.logger.Error("failed to index course code %s: %v", code, err)
			m.rollback(ctx, hc.ID, code, true, nil)
			return false
		}
	}

	m.unquarantine(hc.ID)
	m.metrics.WritesTotal.WithLabelValues(statusOK).Inc()
	m.logger.Debug("added course %s as %s", code, hc.ID)
	return true
}

// rollback undoes the tiers written so far, newest first. Details that
// replaced a previous version are restored rather than deleted. It runs even
// when ctx is already canceled.
func (m *Manager) rollback(ctx context.Context, id, code string, summaryWritten bool, previous *course.CourseDetails) {
	ctx = context.WithoutCancel(ctx)
	m.metrics.WritesTotal.WithLabelValues(statusFailed).Inc()
	m.metrics.RollbacksTotal.Inc()

	if summaryWritten {
		if err := m.summaries.Delete(ctx, id); err != nil {
			m.logger.Error("rollback of summary %s (%s) failed, record is orphaned: %v", id, code, err)
		}
	}

	if previous != nil {
		if err := m.details.Put(ctx, id, *previous); err != nil {
			m.logger.Error("restoring details %s (%s) failed: %v", id, code, err)
		}
		return
	}
	if err := m.details.Delete(ctx, id); err != nil {
		m.logger.Error("rollback of details %s (%s) failed, record is orphaned: %v", id, code, err)
	}
}

// AddCourses adds each course in order and counts the outcomes.
func (m *Manager) AddCourses(ctx context.Context, courses []course.HierarchicalCourse) (added, failed int) {
	for _, hc := range courses {
		if m.AddCourse(ctx, hc) {
			added++
		} else {
			failed++
		}
	}
	m.logger.Info("added %d courses, %d failed", added, failed)
	return added, failed
}

// DeleteCourse removes the summary, details and code index entry of a course.
// The code index entry goes last so an interrupted delete can be retried.
func (m *Manager) DeleteCourse(ctx context.Context, courseCode string) error {
	courseCode = course.NormalizeCode(courseCode)
	id, ok, err := m.codes.Lookup(ctx, courseCode)
	if err != nil {
		return fmt.Errorf("failed to look up course %s: %w", courseCode, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCourseNotFound, courseCode)
	}

	if err := m.summaries.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete summary %s: %w", courseCode, err)
	}
	if err := m.details.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete details %s: %w", courseCode, err)
	}
	if err := m.codes.Remove(ctx, courseCode); err != nil {
		return fmt.Errorf("failed to remove course code %s: %w", courseCode, err)
	}

	m.unquarantine(id)
	m.logger.Info("deleted course %s", courseCode)
	return nil
}

// SearchSummaries runs a tier-1 search and returns up to limit summaries in
// descending similarity order.
func (m *Manager) SearchSummaries(ctx context.Context, query string, limit int, filter store.Filter) ([]course.CourseSummary, error) {
	hits, err := m.SearchSummariesWithScores(ctx, query, limit, filter)
	if err != nil {
		return nil, err
	}
	summaries := make([]course.CourseSummary, len(hits))
	for i, hit := range hits {
		summaries[i] = hit.Summary
	}
	return summaries, nil
}

// SearchSummariesWithScores is SearchSummaries with entity ids and scores.
func (m *Manager) SearchSummariesWithScores(ctx context.Context, query string, limit int, filter store.Filter) ([]store.ScoredSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	start := time.Now()
	defer func() {
		m.metrics.SearchDuration.WithLabelValues(tierSummary).Observe(time.Since(start).Seconds())
	}()

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		m.metrics.SearchesTotal.WithLabelValues(tierSummary, statusError).Inc()
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := m.summaries.Search(ctx, vector, limit, filter)
	if err != nil {
		m.metrics.SearchesTotal.WithLabelValues(tierSummary, statusError).Inc()
		return nil, fmt.Errorf("summary search failed: %w", err)
	}

	m.metrics.SearchesTotal.WithLabelValues(tierSummary, statusOK).Inc()
	m.logger.Debug("summary search returned %d of %d for %q", len(hits), limit, query)
	return hits, nil
}

// FetchDetails loads full details for the given course codes, preserving
// their order. Unknown codes are skipped with a warning. A code whose details
// are missing is skipped and its id quarantined.
func (m *Manager) FetchDetails(ctx context.Context, courseCodes []string) ([]course.CourseDetails, error) {
	start := time.Now()
	defer func() {
		m.metrics.SearchDuration.WithLabelValues(tierDetails).Observe(time.Since(start).Seconds())
	}()

	results := make([]course.CourseDetails, 0, len(courseCodes))
	for _, code := range courseCodes {
		code = course.NormalizeCode(code)
		id, ok, err := m.codes.Lookup(ctx, code)
		if err != nil {
			m.metrics.SearchesTotal.WithLabelValues(tierDetails, statusError).Inc()
			return nil, fmt.Errorf("failed to look up course %s: %w", code, err)
		}
		if !ok {
			m.logger.Warn("course %s not found in index", code)
			m.metrics.DetailMisses.WithLabelValues(missUnknownCode).Inc()
			continue
		}

		details, err := m.details.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			m.quarantine(id, code)
			continue
		}
		if err != nil {
			m.metrics.SearchesTotal.WithLabelValues(tierDetails, statusError).Inc()
			return nil, fmt.Errorf("failed to load details for %s: %w", code, err)
		}
		results = append(results, *details)
	}

	m.metrics.SearchesTotal.WithLabelValues(tierDetails, statusOK).Inc()
	return results, nil
}

// HierarchicalSearch searches summaries, then expands the first detailLimit
// hits in rank order.
func (m *Manager) HierarchicalSearch(ctx context.Context, query string, summaryLimit, detailLimit int, filter store.Filter) ([]course.CourseSummary, []course.CourseDetails, error) {
	summaries, err := m.SearchSummaries(ctx, query, summaryLimit, filter)
	if err != nil {
		return nil, nil, err
	}

	n := max(min(detailLimit, len(summaries)), 0)
	codes := make([]string, n)
	for i := range n {
		codes[i] = summaries[i].CourseCode
	}

	details, err := m.FetchDetails(ctx, codes)
	if err != nil {
		return summaries, nil, err
	}
	m.logger.Info("hierarchical search %q: %d summaries, %d details", query, len(summaries), len(details))
	return summaries, details, nil
}

func (m *Manager) quarantine(id, code string) {
	m.mu.Lock()
	_, seen := m.quarantined[id]
	m.quarantined[id] = code
	m.mu.Unlock()

	m.metrics.DetailMisses.WithLabelValues(missMissingDetails).Inc()
	if !seen {
		m.metrics.QuarantineTotal.Inc()
	}
	m.logger.Warn("details missing for %s (%s), summary quarantined", code, id)
}

func (m *Manager) unquarantine(id string) {
	m.mu.Lock()
	delete(m.quarantined, id)
	m.mu.Unlock()
}

// Quarantined returns the sorted course codes of summaries found without
// details.
func (m *Manager) Quarantined() []string {
	m.mu.Lock()
	codes := make([]string, 0, len(m.quarantined))
	for _, code := range m.quarantined {
		codes = append(codes, code)
	}
	m.mu.Unlock()
	sort.Strings(codes)
	return codes
}

// RepairQuarantined removes the summary and code index entry of every
// quarantined course whose details are still missing, and returns how many
// were removed. Courses whose details have reappeared are released.
func (m *Manager) RepairQuarantined(ctx context.Context) (int, error) {
	m.mu.Lock()
	pending := make(map[string]string, len(m.quarantined))
	for id, code := range m.quarantined {
		pending[id] = code
	}
	m.mu.Unlock()

	repaired := 0
	for id, code := range pending {
		_, err := m.details.Get(ctx, id)
		if err == nil {
			m.unquarantine(id)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return repaired, fmt.Errorf("failed to check details for %s: %w", code, err)
		}

		if err := m.summaries.Delete(ctx, id); err != nil {
			return repaired, fmt.Errorf("failed to delete orphaned summary %s: %w", code, err)
		}
		current, ok, err := m.codes.Lookup(ctx, code)
		if err != nil {
			return repaired, fmt.Errorf("failed to look up course %s: %w", code, err)
		}
		if ok && current == id {
			if err := m.codes.Remove(ctx, code); err != nil {
				return repaired, fmt.Errorf("failed to remove course code %s: %w", code, err)
			}
		}

		m.unquarantine(id)
		repaired++
		m.logger.Info("removed orphaned summary %s (%s)", code, id)
	}
	return repaired, nil
}
