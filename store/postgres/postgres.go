package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smallnest/coursectx/course"
	"github.com/smallnest/coursectx/store"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Options configures the Postgres connection.
type Options struct {
	ConnString string
	TableName  string // Default "course_details"
}

// DetailsStore implements store.DetailsStore using PostgreSQL
type DetailsStore struct {
	pool      DBPool
	tableName string
}

var _ store.DetailsStore = (*DetailsStore)(nil)

// NewDetailsStore connects to Postgres and returns a details store.
func NewDetailsStore(ctx context.Context, opts Options) (*DetailsStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return NewDetailsStoreWithPool(pool, opts.TableName), nil
}

// NewDetailsStoreWithPool creates a details store on an existing pool.
func NewDetailsStoreWithPool(pool DBPool, tableName string) *DetailsStore {
	if tableName == "" {
		tableName = "course_details"
	}
	return &DetailsStore{
		pool:      pool,
		tableName: tableName,
	}
}

// InitSchema creates the necessary table if it doesn't exist
func (s *DetailsStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			course_code TEXT NOT NULL,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_%s_course_code ON %s (course_code);
	`, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *DetailsStore) Close() {
	s.pool.Close()
}

// Put upserts the details row for id.
func (s *DetailsStore) Put(ctx context.Context, id string, details course.CourseDetails) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, course_code, payload, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			course_code = EXCLUDED.course_code,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query, id, details.CourseCode, payload); err != nil {
		return fmt.Errorf("failed to save details: %w", err)
	}
	return nil
}

// Get loads the details row for id.
func (s *DetailsStore) Get(ctx context.Context, id string) (*course.CourseDetails, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1`, s.tableName)

	var payload []byte
	if err := s.pool.QueryRow(ctx, query, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load details: %w", err)
	}

	var details course.CourseDetails
	if err := json.Unmarshal(payload, &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal details %s: %w", id, err)
	}
	return &details, nil
}

// Delete removes the details row for id.
func (s *DetailsStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete details: %w", err)
	}
	return nil
}
