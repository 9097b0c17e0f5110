package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kensho/internal/models"
)

// SQLiteStore implements ResultStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite store path must be specified")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		story_id TEXT NOT NULL UNIQUE,
		prediction INTEGER NOT NULL CHECK (prediction IN (0, 1)),
		rationale TEXT NOT NULL,
		book TEXT,
		run_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id);
	`
	_, err := db.Exec(schema)
	return err
}

const selectResults = `SELECT story_id, prediction, rationale, COALESCE(book, ''), COALESCE(run_id, '') FROM results`

// Load returns every result in insertion order.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.Result, error) {
	return s.query(ctx, selectResults+` ORDER BY seq`)
}

// Append inserts results in one transaction. Rows whose story id already exists are
// left untouched.
func (s *SQLiteStore) Append(ctx context.Context, results []models.Result) error {
	if len(results) == 0 {
		return nil
	}
	if err := validate(results); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO results (story_id, prediction, rationale, book, run_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, r.StoryID, r.Prediction, r.Rationale, r.Book, r.RunID, now); err != nil {
			return fmt.Errorf("failed to insert result %s: %w", r.StoryID, err)
		}
	}
	return tx.Commit()
}

// Get returns the result for storyID or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, storyID string) (*models.Result, error) {
	var r models.Result
	err := s.db.QueryRowContext(ctx, selectResults+` WHERE story_id = ?`, storyID).
		Scan(&r.StoryID, &r.Prediction, &r.Rationale, &r.Book, &r.RunID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, storyID)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns results in insertion order. limit <= 0 means no limit.
func (s *SQLiteStore) List(ctx context.Context, offset, limit int) ([]models.Result, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return s.query(ctx, selectResults+` ORDER BY seq LIMIT ? OFFSET ?`, limit, offset)
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]models.Result, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.Result{}
	for rows.Next() {
		var r models.Result
		if err := rows.Scan(&r.StoryID, &r.Prediction, &r.Rationale, &r.Book, &r.RunID); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the total number of results.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM results`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
