package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
)

// Options configures the SQLite database.
type Options struct {
	Path      string
	TableName string // Default "course_details"
}

// DetailsStore implements store.DetailsStore using SQLite
type DetailsStore struct {
	db        *sql.DB
	tableName string
}

var _ store.DetailsStore = (*DetailsStore)(nil)

// NewDetailsStore opens the database and initializes the schema.
func NewDetailsStore(opts Options) (*DetailsStore, error) {
	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	tableName := opts.TableName
	if tableName == "" {
		tableName = "course_details"
	}

	s := &DetailsStore{
		db:        db,
		tableName: tableName,
	}

	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// InitSchema creates the necessary table if it doesn't exist
func (s *DetailsStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			course_code TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_%s_course_code ON %s (course_code);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *DetailsStore) Close() error {
	return s.db.Close()
}

// Put upserts the details row for id.
func (s *DetailsStore) Put(ctx context.Context, id string, details course.CourseDetails) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, course_code, payload, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			course_code = excluded.course_code,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query, id, details.CourseCode, string(payload)); err != nil {
		return fmt.Errorf("failed to save details: %w", err)
	}
	return nil
}

// Get loads the details row for id.
func (s *DetailsStore) Get(ctx context.Context, id string) (*course.CourseDetails, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = ?`, s.tableName)

	var payload string
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load details: %w", err)
	}

	var details course.CourseDetails
	if err := json.Unmarshal([]byte(payload), &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal details %s: %w", id, err)
	}
	return &details, nil
}

// Delete removes the details row for id.
func (s *DetailsStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete details: %w", err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *DetailsStore) Count(ctx context.Context) (int, error) {
	var n int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.tableName)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count details: %w", err)
	}
	return n, nil
}
