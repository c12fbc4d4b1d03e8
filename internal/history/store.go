// Package history persists completed organize operations in SQLite so
// past runs can be listed, inspected and exported.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/tidydir/internal/executor"
)

// placementCacheSize bounds the per-operation placement lists held in
// memory for repeated "history show" lookups.
const placementCacheSize = 32

// Operation is one recorded organize run.
type Operation struct {
	ID             int64
	OperationID    string
	RootPath       string
	OutputPath     string
	Mode           string
	Transfer       string
	Label          string
	StartedAt      time.Time
	DurationMS     int64
	TotalFiles     int
	ProcessedFiles int
	FailedFiles    int
	SkippedFiles   int
	RenamedFiles   int
	CreatedAt      time.Time
}

// Placement is one file outcome within a recorded operation.
type Placement struct {
	ID           int64
	OperationID  string
	Source       string
	Destination  string
	Category     string
	Status       string
	ErrorMessage string
}

// Store manages the SQLite database of past operations
type Store struct {
	db         *sql.DB
	dbPath     string
	placements *lru.Cache[string, []Placement]
}

// NewStore creates a new Store instance and initializes the database
func NewStore(dbPath string) (*Store, error) {
	// Handle in-memory database
	if dbPath == ":memory:" {
		return openAndInitStore(dbPath)
	}

	// Ensure parent directory exists for file-based databases
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	return openAndInitStore(dbPath)
}

// openAndInitStore opens the database connection and initializes schema
func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure SQLite for concurrent access with retry logic.
	// busy_timeout goes first so the remaining pragmas wait on locks
	// instead of failing when two invocations initialize the same file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	cache, err := lru.New[string, []Placement](placementCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create placement cache: %w", err)
	}

	store := &Store{
		db:         db,
		dbPath:     dbPath,
		placements: cache,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, sql string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(sql)
		if err == nil {
			return nil
		}

		// Only retry on "database is locked" errors
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		delay := baseDelay * time.Duration(1<<attempt)
		time.Sleep(delay)
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.dbPath
}

// tableExists checks if a table exists in the database
func (s *Store) tableExists(tableName string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
	err := s.db.QueryRow(query, tableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return count > 0, nil
}

// indexExists checks if an index exists in the database
func (s *Store) indexExists(indexName string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?`
	err := s.db.QueryRow(query, indexName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check index existence: %w", err)
	}
	return count > 0, nil
}

// RecordReport stores an execution report and its placements in one
// transaction.
func (s *Store) RecordReport(ctx context.Context, report *executor.Report, label string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	opQuery := `INSERT INTO operations
		(operation_id, root_path, output_path, mode, transfer, label, started_at, duration_ms,
		 total_files, processed_files, failed_files, skipped_files, renamed_files)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, opQuery,
		report.ID,
		report.RootPath,
		report.OutputPath,
		string(report.Policy),
		string(report.Transfer),
		label,
		report.StartedAt.UTC(),
		report.Duration.Milliseconds(),
		report.TotalFiles,
		report.ProcessedFiles,
		report.FailedFiles,
		report.SkippedFiles,
		report.RenamedFiles,
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}

	if len(report.Placements) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO placements
			(operation_id, source, destination, category, status, error_message)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare placement statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range report.Placements {
			_, err := stmt.ExecContext(ctx, report.ID, p.Source, p.Destination, p.Category, p.Status, p.Error)
			if err != nil {
				return fmt.Errorf("insert placement: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.placements.Remove(report.ID)
	return nil
}

// operationColumns is the select list shared by the operation queries.
const operationColumns = `id, operation_id, root_path, output_path, mode, transfer, label,
	started_at, duration_ms, total_files, processed_files, failed_files, skipped_files, renamed_files, created_at`

// scanOperation reads one operation row.
func scanOperation(row interface{ Scan(...interface{}) error }) (*Operation, error) {
	op := &Operation{}
	var label sql.NullString
	err := row.Scan(
		&op.ID,
		&op.OperationID,
		&op.RootPath,
		&op.OutputPath,
		&op.Mode,
		&op.Transfer,
		&label,
		&op.StartedAt,
		&op.DurationMS,
		&op.TotalFiles,
		&op.ProcessedFiles,
		&op.FailedFiles,
		&op.SkippedFiles,
		&op.RenamedFiles,
		&op.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if label.Valid {
		op.Label = label.String
	}
	return op, nil
}

// ListOperations retrieves recorded operations, most recent first.
// A limit of 0 or less returns everything.
func (s *Store) ListOperations(ctx context.Context, limit int) ([]*Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations ORDER BY started_at DESC, id DESC`

	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var operations []*Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		operations = append(operations, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation rows: %w", err)
	}

	return operations, nil
}

// GetOperation retrieves one operation by its identifier. Prefixes are
// accepted when they match exactly one operation.
func (s *Store) GetOperation(ctx context.Context, operationID string) (*Operation, error) {
	query := `SELECT ` + operationColumns + ` FROM operations WHERE operation_id = ?`
	op, err := scanOperation(s.db.QueryRowContext(ctx, query, operationID))
	if err == nil {
		return op, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("query operation: %w", err)
	}

	// Fall back to prefix match for short IDs from "history" output.
	prefixQuery := `SELECT ` + operationColumns + ` FROM operations WHERE operation_id LIKE ? LIMIT 2`
	rows, err := s.db.QueryContext(ctx, prefixQuery, operationID+"%")
	if err != nil {
		return nil, fmt.Errorf("query operation by prefix: %w", err)
	}
	defer rows.Close()

	var matches []*Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operation row: %w", err)
		}
		matches = append(matches, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operation rows: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("operation not found: %s", operationID)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("operation id %q is ambiguous", operationID)
	}
}

// GetPlacements retrieves the per-file outcomes for an operation.
// Results are cached, so repeated lookups skip the database.
func (s *Store) GetPlacements(ctx context.Context, operationID string) ([]Placement, error) {
	if cached, ok := s.placements.Get(operationID); ok {
		return cached, nil
	}

	query := `SELECT id, operation_id, source, destination, category, status, error_message
		FROM placements WHERE operation_id = ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var placements []Placement
	for rows.Next() {
		var p Placement
		var destination, category, errorMessage sql.NullString
		if err := rows.Scan(&p.ID, &p.OperationID, &p.Source, &destination, &category, &p.Status, &errorMessage); err != nil {
			return nil, fmt.Errorf("scan placement row: %w", err)
		}
		if destination.Valid {
			p.Destination = destination.String
		}
		if category.Valid {
			p.Category = category.String
		}
		if errorMessage.Valid {
			p.ErrorMessage = errorMessage.String
		}
		placements = append(placements, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placement rows: %w", err)
	}

	s.placements.Add(operationID, placements)
	return placements, nil
}

// CleanupOldOperations removes operations older than the given number of
// days, with their placements. Returns the number of deleted operations.
// A keepDays of 0 or less keeps everything.
func (s *Store) CleanupOldOperations(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays).UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Placements go first; the foreign key is not enforced without
	// PRAGMA foreign_keys, so cascading is done by hand.
	_, err = tx.ExecContext(ctx, `DELETE FROM placements WHERE operation_id IN
		(SELECT operation_id FROM operations WHERE started_at < ?)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old placements: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old operations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.placements.Purge()
	return deleted, nil
}

// ClearAll removes every recorded operation and placement.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM placements`); err != nil {
		return 0, fmt.Errorf("delete placements: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM operations`)
	if err != nil {
		return 0, fmt.Errorf("delete operations: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	s.placements.Purge()
	return deleted, nil
}
