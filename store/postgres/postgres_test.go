package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetails() course.CourseDetails {
	return course.CourseDetails{
		ID:              "id-1",
		CourseCode:      "CS101",
		Title:           "Intro to Programming",
		Department:      "Computer Science",
		Credits:         3,
		FullDescription: "Learn to program.",
	}
}

func TestDetailsStore_InitSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewDetailsStoreWithPool(mock, "")

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS course_details")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(t, s.InitSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsStore_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewDetailsStoreWithPool(mock, "details")
	details := testDetails()
	payload, _ := json.Marshal(details)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO details")).
		WithArgs("id-1", "CS101", payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, s.Put(context.Background(), "id-1", details))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsStore_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewDetailsStoreWithPool(mock, "details")
	details := testDetails()
	payload, _ := json.Marshal(details)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM details WHERE id = $1")).
		WithArgs("id-1").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow(payload))

	loaded, err := s.Get(context.Background(), "id-1")
	require.NoError(t, err)
	assert.Equal(t, details, *loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsStore_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewDetailsStoreWithPool(mock, "details")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM details")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetailsStore_GetError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewDetailsStoreWithPool(mock, "details")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM details")).
		WithArgs("id-1").
		WillReturnError(errors.New("connection reset"))

	_, err = s.Get(context.Background(), "id-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestDetailsStore_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewDetailsStoreWithPool(mock, "details")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM details WHERE id = $1")).
		WithArgs("id-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, s.Delete(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
