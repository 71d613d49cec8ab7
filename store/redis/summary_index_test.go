package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSummary() course.CourseSummary {
	return course.CourseSummary{
		CourseCode:      "CS101",
		Title:           "Intro to Programming",
		Department:      "Computer Science",
		Credits:         3,
		DifficultyLevel: course.DifficultyBeginner,
		Format:          course.FormatOnline,
		Tags:            []string{"python", "intro"},
	}
}

func TestEscapeTag(t *testing.T) {
	assert.Equal(t, `Computer\ Science`, escapeTag("Computer Science"))
	assert.Equal(t, `in\-person`, escapeTag("in-person"))
	assert.Equal(t, "beginner", escapeTag("beginner"))
	assert.Equal(t, `a\,b\{c\}`, escapeTag("a,b{c}"))
}

func TestBuildKNNQuery(t *testing.T) {
	assert.Equal(t, "(*)=>[KNN $K @embedding $BLOB AS vector_distance]", buildKNNQuery(nil))

	q := buildKNNQuery(store.FilterFor("Computer Science", course.DifficultyBeginner, course.FormatInPerson))
	assert.Equal(t,
		`(@department:{Computer\ Science} @difficulty_level:{beginner} @format:{in\-person})=>[KNN $K @embedding $BLOB AS vector_distance]`,
		q)
}

func TestEncodeVector(t *testing.T) {
	v := []float32{1.5, -2, 0}
	buf := encodeVector(v)
	require.Len(t, buf, 12)
	for i, want := range v {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		assert.Equal(t, want, got)
	}
}

func TestSummaryHash(t *testing.T) {
	fields, err := summaryHash(store.SummaryRecord{ID: "id-1", Summary: testSummary(), Vector: []float32{1, 0}})
	require.NoError(t, err)

	assert.Equal(t, "CS101", fields[fieldCourseCode])
	assert.Equal(t, "Computer Science", fields[store.FieldDepartment])
	assert.Equal(t, "beginner", fields[store.FieldDifficulty])
	assert.Equal(t, "online", fields[store.FieldFormat])
	assert.Equal(t, "python,intro", fields[fieldTags])
	assert.Len(t, fields[fieldEmbedding], 8)

	var decoded course.CourseSummary
	require.NoError(t, json.Unmarshal([]byte(fields[fieldPayload].(string)), &decoded))
	assert.Equal(t, testSummary(), decoded)

	_, err = summaryHash(store.SummaryRecord{})
	assert.Error(t, err)
}

func TestParseDocument(t *testing.T) {
	idx := NewSummaryIndex(nil, SummaryIndexOptions{})
	payload, err := json.Marshal(testSummary())
	require.NoError(t, err)

	hit, err := idx.parseDocument(goredis.Document{
		ID: "coursectx:summary:id-1",
		Fields: map[string]string{
			fieldPayload:  string(payload),
			fieldDistance: "0.25",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", hit.ID)
	assert.Equal(t, "CS101", hit.Summary.CourseCode)
	assert.InDelta(t, 0.75, hit.Score, 1e-9)

	_, err = idx.parseDocument(goredis.Document{ID: "x", Fields: map[string]string{}})
	assert.Error(t, err)

	_, err = idx.parseDocument(goredis.Document{ID: "x", Fields: map[string]string{
		fieldPayload:  string(payload),
		fieldDistance: "far",
	}})
	assert.Error(t, err)
}

func TestSummaryIndex_UpsertDelete(t *testing.T) {
	mr := newMiniredis(t)
	client := NewClient(Options{Addr: mr.Addr()})
	defer client.Close()

	idx := NewSummaryIndex(client, SummaryIndexOptions{})
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, store.SummaryRecord{ID: "id-1", Summary: testSummary(), Vector: []float32{1, 0}}))
	assert.Equal(t, "CS101", mr.HGet("coursectx:summary:id-1", fieldCourseCode))
	assert.Equal(t, "Computer Science", mr.HGet("coursectx:summary:id-1", store.FieldDepartment))

	require.NoError(t, idx.Delete(ctx, "id-1"))
	assert.False(t, mr.Exists("coursectx:summary:id-1"))

	_, err := idx.Search(ctx, []float32{1, 0}, 0, nil)
	assert.Error(t, err)
	assert.Error(t, idx.EnsureIndex(ctx, 0))
}

// TestSummaryIndex_RedisStack runs against a real Redis Stack server when
// REDIS_STACK_ADDR is set.
func TestSummaryIndex_RedisStack(t *testing.T) {
	addr := os.Getenv("REDIS_STACK_ADDR")
	if addr == "" {
		t.Skip("REDIS_STACK_ADDR not set")
	}

	client := NewClient(Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	idx := NewSummaryIndex(client, SummaryIndexOptions{IndexName: "coursectx_test", Prefix: "coursectx_test:"})
	require.NoError(t, idx.EnsureIndex(ctx, 2))
	require.NoError(t, idx.EnsureIndex(ctx, 2))
	defer idx.Drop(ctx, true)

	math101 := testSummary()
	math101.CourseCode = "MATH101"
	math101.Department = "Mathematics"

	require.NoError(t, idx.Upsert(ctx, store.SummaryRecord{ID: "cs", Summary: testSummary(), Vector: []float32{0, 1}}))
	require.NoError(t, idx.Upsert(ctx, store.SummaryRecord{ID: "math", Summary: math101, Vector: []float32{1, 0}}))

	results, err := idx.Search(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "math", results[0].ID)
	assert.Greater(t, results[0].Score, results[1].Score)

	results, err = idx.Search(ctx, []float32{1, 0}, 2, store.Filter{store.FieldDepartment: "Computer Science"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "CS101", results[0].Summary.CourseCode)
}
