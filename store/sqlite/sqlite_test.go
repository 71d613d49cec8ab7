package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetailsStore(t *testing.T) {
	s, err := NewDetailsStore(Options{Path: filepath.Join(t.TempDir(), "catalog.db")})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	details := course.CourseDetails{
		ID:                 "id-1",
		CourseCode:         "CS101",
		Title:              "Intro to Programming",
		Department:         "Computer Science",
		Credits:            3,
		LearningObjectives: []string{"Write loops"},
	}

	_, err = s.Get(ctx, "id-1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, "id-1", details))
	loaded, err := s.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, details, *loaded)

	details.Title = "Programming I"
	require.NoError(t, s.Put(ctx, "id-1", details))
	loaded, err = s.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Programming I", loaded.Title)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.Delete(ctx, "id-1"))
	_, err = s.Get(ctx, "id-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDetailsStore_CustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := NewDetailsStore(Options{Path: path, TableName: "tier2"})
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "x", course.CourseDetails{CourseCode: "X1"}))
	require.NoError(t, s.Close())

	reopened, err := NewDetailsStore(Options{Path: path, TableName: "tier2"})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Get(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "X1", loaded.CourseCode)
}
