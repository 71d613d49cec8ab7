package store

import (
	"context"
	"errors"

	"github.com/smallnest/coursectx/course"
)

// ErrNotFound is returned by DetailsStore.Get when no payload exists for an id.
var ErrNotFound = errors.New("store: not found")

// Tag field names accepted in a Filter.
const (
	FieldDepartment = "department"
	FieldDifficulty = "difficulty_level"
	FieldFormat     = "format"
)

// Filter restricts a summary search to records whose tag fields equal the
// given values exactly. A nil or empty Filter matches everything.
type Filter map[string]string

// SummaryRecord is one tier-1 entry: the summary and its embedding.
type SummaryRecord struct {
	ID      string
	Summary course.CourseSummary
	Vector  []float32
}

// ScoredSummary is a search hit. Higher Score means more similar.
type ScoredSummary struct {
	ID      string
	Summary course.CourseSummary
	Score   float64
}

// SummaryIndex is the vector-searchable tier-1 store.
type SummaryIndex interface {
	// EnsureIndex prepares the index for vectors of the given dimension.
	EnsureIndex(ctx context.Context, dimension int) error

	// Upsert writes a record keyed by its ID.
	Upsert(ctx context.Context, record SummaryRecord) error

	// Search returns up to k records ordered by descending score.
	Search(ctx context.Context, vector []float32, k int, filter Filter) ([]ScoredSummary, error)

	// Delete removes a record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// DetailsStore is the key-value tier-2 store.
type DetailsStore interface {
	Put(ctx context.Context, id string, details course.CourseDetails) error

	// Get returns ErrNotFound when nothing is stored under id.
	Get(ctx context.Context, id string) (*course.CourseDetails, error)

	Delete(ctx context.Context, id string) error
}

// CodeIndex maps course codes to entity ids.
type CodeIndex interface {
	Set(ctx context.Context, courseCode, id string) error
	Lookup(ctx context.Context, courseCode string) (id string, ok bool, err error)
	Remove(ctx context.Context, courseCode string) error
}

// FilterFor builds a Filter from optional department, difficulty and format
// values. Empty values are omitted.
func FilterFor(department string, difficulty course.DifficultyLevel, format course.CourseFormat) Filter {
	f := Filter{}
	if department != "" {
		f[FieldDepartment] = department
	}
	if difficulty != "" {
		f[FieldDifficulty] = string(difficulty)
	}
	if format != "" {
		f[FieldFormat] = string(format)
	}
	return f
}

// TagValues returns the filterable tag fields of a summary.
func TagValues(s course.CourseSummary) map[string]string {
	return map[string]string{
		FieldDepartment: s.Department,
		FieldDifficulty: string(s.DifficultyLevel),
		FieldFormat:     string(s.Format),
	}
}

// Matches reports whether s satisfies every entry of f.
func (f Filter) Matches(s course.CourseSummary) bool {
	values := TagValues(s)
	for field, want := range f {
		if values[field] != want {
			return false
		}
	}
	return true
}
