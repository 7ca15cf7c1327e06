package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/anhducnguyen2006/mrg-labs-graphing-app/pkg/similarity"
)

// SQLiteStore implements AnalysisStore using SQLite as the backend.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time interface check
var _ AnalysisStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite-backed analysis store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
// Creates tables and indexes if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		baseline_file TEXT NOT NULL,
		sample_file TEXT NOT NULL,
		sample_name TEXT NOT NULL,
		baseline_hash TEXT,
		sample_hash TEXT,
		report TEXT,
		insights TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
	CREATE INDEX IF NOT EXISTS idx_analyses_hashes ON analyses(baseline_hash, sample_hash);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save persists an analysis with upsert semantics (INSERT OR REPLACE by ID).
func (s *SQLiteStore) Save(ctx context.Context, a *Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	var reportJSON []byte
	var err error
	if a.Report != nil {
		reportJSON, err = json.Marshal(a.Report)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
	}

	query := `
		INSERT OR REPLACE INTO analyses (id, baseline_file, sample_file, sample_name, baseline_hash, sample_hash, report, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		a.ID,
		a.BaselineFile,
		a.SampleFile,
		a.SampleName,
		a.BaselineHash,
		a.SampleHash,
		reportJSON,
		a.Insights,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	return nil
}

// Get retrieves an analysis by its ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Analysis, error) {
	query := `
		SELECT id, baseline_file, sample_file, sample_name, baseline_hash, sample_hash, report, insights, created_at
		FROM analyses
		WHERE id = ?
	`

	a, err := scanAnalysis(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return a, nil
}

// List returns the most recent analyses, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Analysis, error) {
	query := `
		SELECT id, baseline_file, sample_file, sample_name, baseline_hash, sample_hash, report, insights, created_at
		FROM analyses
		ORDER BY created_at DESC, id
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return analyses, nil
}

// Delete removes an analysis by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

// Count returns the total number of stored analyses.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner abstracts *sql.Row and *sql.Rows for scanAnalysis.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAnalysis(row scanner) (*Analysis, error) {
	var a Analysis
	var reportJSON []byte

	err := row.Scan(
		&a.ID,
		&a.BaselineFile,
		&a.SampleFile,
		&a.SampleName,
		&a.BaselineHash,
		&a.SampleHash,
		&reportJSON,
		&a.Insights,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(reportJSON) > 0 {
		var report similarity.Report
		if err := json.Unmarshal(reportJSON, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		a.Report = &report
	}

	return &a, nil
}
