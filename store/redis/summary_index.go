package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/coursectx/store"
)

const (
	fieldCourseCode = "course_code"
	fieldTitle      = "title"
	fieldTags       = "tags"
	fieldPayload    = "payload"
	fieldEmbedding  = "embedding"
	fieldDistance   = "vector_distance"
)

// SummaryIndexOptions configures the RediSearch index.
type SummaryIndexOptions struct {
	IndexName string // default "coursectx_summaries"
	Prefix    string // key prefix, default DefaultPrefix
}

// SummaryIndex implements store.SummaryIndex on RediSearch.
type SummaryIndex struct {
	client    redis.UniversalClient
	indexName string
	keyPrefix string
}

var _ store.SummaryIndex = (*SummaryIndex)(nil)

// NewSummaryIndex creates a summary index handle. Call EnsureIndex before
// the first search.
func NewSummaryIndex(client redis.UniversalClient, opts SummaryIndexOptions) *SummaryIndex {
	name := opts.IndexName
	if name == "" {
		name = "coursectx_summaries"
	}
	return &SummaryIndex{
		client:    client,
		indexName: name,
		keyPrefix: prefixOrDefault(opts.Prefix) + "summary:",
	}
}

func (s *SummaryIndex) key(id string) string {
	return s.keyPrefix + id
}

// EnsureIndex creates the index if it does not exist yet.
func (s *SummaryIndex) EnsureIndex(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("dimension must be positive")
	}

	schema := []*redis.FieldSchema{
		{FieldName: fieldCourseCode, FieldType: redis.SearchFieldTypeTag},
		{FieldName: store.FieldDepartment, FieldType: redis.SearchFieldTypeTag},
		{FieldName: store.FieldDifficulty, FieldType: redis.SearchFieldTypeTag},
		{FieldName: store.FieldFormat, FieldType: redis.SearchFieldTypeTag},
		{FieldName: fieldTags, FieldType: redis.SearchFieldTypeTag, Separator: ","},
		{FieldName: fieldTitle, FieldType: redis.SearchFieldTypeText},
		{
			FieldName: fieldEmbedding,
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				HNSWOptions: &redis.FTHNSWOptions{
					Type:           "FLOAT32",
					Dim:            dimension,
					DistanceMetric: "COSINE",
				},
			},
		},
	}

	err := s.client.FTCreate(ctx, s.indexName, &redis.FTCreateOptions{
		OnHash: true,
		Prefix: []any{s.keyPrefix},
	}, schema...).Err()
	if err != nil {
		if strings.Contains(err.Error(), "Index already exists") {
			return nil
		}
		return fmt.Errorf("failed to create search index %s: %w", s.indexName, err)
	}
	return nil
}

// Upsert writes the summary hash for a record.
func (s *SummaryIndex) Upsert(ctx context.Context, record store.SummaryRecord) error {
	fields, err := summaryHash(record)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.key(record.ID), fields).Err(); err != nil {
		return fmt.Errorf("failed to save summary %s to redis: %w", record.ID, err)
	}
	return nil
}

// Search runs a KNN query, pre-filtered by exact TAG matches.
func (s *SummaryIndex) Search(ctx context.Context, vector []float32, k int, filter store.Filter) ([]store.ScoredSummary, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	res, err := s.client.FTSearchWithArgs(ctx, s.indexName, buildKNNQuery(filter), &redis.FTSearchOptions{
		Params: map[string]any{
			"K":    k,
			"BLOB": encodeVector(vector),
		},
		Return: []redis.FTSearchReturn{
			{FieldName: fieldPayload},
			{FieldName: fieldDistance},
		},
		SortBy:         []redis.FTSearchSortBy{{FieldName: fieldDistance, Asc: true}},
		LimitOffset:    0,
		Limit:          k,
		DialectVersion: 2,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]store.ScoredSummary, 0, len(res.Docs))
	for _, doc := range res.Docs {
		hit, err := s.parseDocument(doc)
		if err != nil {
			return nil, err
		}
		results = append(results, hit)
	}
	return results, nil
}

// Delete removes the summary hash.
func (s *SummaryIndex) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete summary %s: %w", id, err)
	}
	return nil
}

// Drop removes the index definition and, when deleteDocs is set, every
// summary hash under the prefix.
func (s *SummaryIndex) Drop(ctx context.Context, deleteDocs bool) error {
	return s.client.FTDropIndexWithArgs(ctx, s.indexName, &redis.FTDropIndexOptions{
		DeleteDocs: deleteDocs,
	}).Err()
}

func (s *SummaryIndex) parseDocument(doc redis.Document) (store.ScoredSummary, error) {
	hit := store.ScoredSummary{ID: strings.TrimPrefix(doc.ID, s.keyPrefix)}

	payload, ok := doc.Fields[fieldPayload]
	if !ok {
		return hit, fmt.Errorf("summary %s has no payload", doc.ID)
	}
	if err := json.Unmarshal([]byte(payload), &hit.Summary); err != nil {
		return hit, fmt.Errorf("failed to unmarshal summary %s: %w", doc.ID, err)
	}

	distance, err := strconv.ParseFloat(doc.Fields[fieldDistance], 64)
	if err != nil {
		return hit, fmt.Errorf("summary %s has invalid distance %q: %w", doc.ID, doc.Fields[fieldDistance], err)
	}
	// cosine distance is 1 - cosine similarity
	hit.Score = 1 - distance
	return hit, nil
}

func summaryHash(record store.SummaryRecord) (map[string]any, error) {
	if record.ID == "" {
		return nil, fmt.Errorf("record id is required")
	}
	payload, err := json.Marshal(record.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	fields := map[string]any{
		fieldCourseCode: record.Summary.CourseCode,
		fieldTitle:      record.Summary.Title,
		fieldTags:       strings.Join(record.Summary.Tags, ","),
		fieldPayload:    string(payload),
		fieldEmbedding:  encodeVector(record.Vector),
	}
	for field, value := range store.TagValues(record.Summary) {
		fields[field] = value
	}
	return fields, nil
}

// buildKNNQuery renders a dialect 2 hybrid query. Filter fields are sorted
// so the same filter always yields the same query string.
func buildKNNQuery(filter store.Filter) string {
	pre := "*"
	if len(filter) > 0 {
		fields := make([]string, 0, len(filter))
		for field := range filter {
			fields = append(fields, field)
		}
		slices.Sort(fields)

		clauses := make([]string, 0, len(fields))
		for _, field := range fields {
			clauses = append(clauses, fmt.Sprintf("@%s:{%s}", field, escapeTag(filter[field])))
		}
		pre = strings.Join(clauses, " ")
	}
	return fmt.Sprintf("(%s)=>[KNN $K @%s $BLOB AS %s]", pre, fieldEmbedding, fieldDistance)
}

// escapeTag backslash-escapes the characters RediSearch treats as tag
// separators or query syntax.
func escapeTag(value string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~|/\\ ", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// encodeVector packs a vector as little-endian FLOAT32, the layout
// RediSearch expects for vector fields and query blobs.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}
