package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/portalscan/portalscan/internal/model"
)

// HistoryDB provides SQLite-based storage for mapping-run history and
// extraction findings.
//
// Design decision: We use a single database file for all runs rather than
// one per run because:
//  1. Cross-run queries (all findings for one value) become trivial
//  2. Backup and restore is one file
//  3. The per-run data lives in the run directory anyway; the database
//     only indexes it
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "portalscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; keep the pool at one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Runs store one row per mapping run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		start_url TEXT NOT NULL,
		run_dir TEXT NOT NULL,
		status TEXT NOT NULL,
		pages_visited INTEGER DEFAULT 0,
		pages_succeeded INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		notes TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_start_url ON runs(start_url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Findings store extraction results, one row per finding
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source_url TEXT NOT NULL,
		detector TEXT NOT NULL,
		value TEXT NOT NULL,
		context TEXT,
		page_path TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(run_id, source_url, detector, value)
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_detector ON findings(detector);
	CREATE INDEX IF NOT EXISTS idx_findings_value ON findings(value);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored mapping run.
type RunRecord struct {
	ID             int64
	RunID          string
	StartURL       string
	RunDir         string
	Status         model.CrawlStatus
	PagesVisited   int
	PagesSucceeded int
	PagesFailed    int
	Notes          string
	Timestamp      time.Time
}

// SaveRun inserts or updates the history row for a run.
// Uses UPSERT so re-saving after a scan refreshes the same row.
func (hdb *HistoryDB) SaveRun(ctx context.Context, siteMap *model.SiteMap, runDir string) error {
	query := `
	INSERT INTO runs (run_id, start_url, run_dir, status, pages_visited, pages_succeeded, pages_failed, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		status = excluded.status,
		pages_visited = excluded.pages_visited,
		pages_succeeded = excluded.pages_succeeded,
		pages_failed = excluded.pages_failed,
		notes = excluded.notes,
		timestamp = CURRENT_TIMESTAMP
	`

	_, err := hdb.db.ExecContext(ctx, query,
		siteMap.RunID,
		siteMap.StartURL,
		runDir,
		string(siteMap.Status),
		siteMap.PagesVisited,
		siteMap.SucceededCount(),
		siteMap.FailedCount(),
		siteMap.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its run ID. Returns nil when the run is not
// recorded.
func (hdb *HistoryDB) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	query := `
	SELECT id, run_id, start_url, run_dir, status, pages_visited, pages_succeeded, pages_failed, notes, timestamp
	FROM runs
	WHERE run_id = ?
	`

	var record RunRecord
	var status string
	var notes sql.NullString
	var timestamp string

	err := hdb.db.QueryRowContext(ctx, query, runID).Scan(
		&record.ID,
		&record.RunID,
		&record.StartURL,
		&record.RunDir,
		&status,
		&record.PagesVisited,
		&record.PagesSucceeded,
		&record.PagesFailed,
		&notes,
		&timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	record.Status = model.CrawlStatus(status)
	record.Notes = notes.String
	record.Timestamp = parseTimestamp(timestamp)
	return &record, nil
}

// ListRuns returns stored runs, newest first. When startURL is non-empty,
// only runs for that start URL are returned.
func (hdb *HistoryDB) ListRuns(ctx context.Context, startURL string) ([]RunRecord, error) {
	query := `
	SELECT id, run_id, start_url, run_dir, status, pages_visited, pages_succeeded, pages_failed, notes, timestamp
	FROM runs
	WHERE 1=1
	`
	args := make([]any, 0)

	if startURL != "" {
		query += " AND start_url = ?"
		args = append(args, startURL)
	}

	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var record RunRecord
		var status string
		var notes sql.NullString
		var timestamp string

		err := rows.Scan(
			&record.ID,
			&record.RunID,
			&record.StartURL,
			&record.RunDir,
			&status,
			&record.PagesVisited,
			&record.PagesSucceeded,
			&record.PagesFailed,
			&notes,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		record.Status = model.CrawlStatus(status)
		record.Notes = notes.String
		record.Timestamp = parseTimestamp(timestamp)
		results = append(results, record)
	}

	return results, rows.Err()
}

// SaveFindings stores the extraction results of a run. Re-scanning the
// same archive overwrites nothing: the unique constraint absorbs repeats
// of the same (run, page, detector, value) finding.
func (hdb *HistoryDB) SaveFindings(ctx context.Context, runID string, findings []model.Finding) error {
	if len(findings) == 0 {
		return nil
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
	INSERT INTO findings (run_id, source_url, detector, value, context, page_path)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, source_url, detector, value) DO UPDATE SET
		context = excluded.context,
		page_path = excluded.page_path
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range findings {
		if _, err := stmt.ExecContext(ctx, runID, f.SourceURL, f.Detector, f.Value, f.Context, f.PagePath); err != nil {
			return fmt.Errorf("failed to save finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit findings: %w", err)
	}
	return nil
}

// GetFindings retrieves the stored findings of a run in insertion order.
func (hdb *HistoryDB) GetFindings(ctx context.Context, runID string) ([]model.Finding, error) {
	query := `
	SELECT source_url, detector, value, context, page_path
	FROM findings
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := hdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer rows.Close()

	var results []model.Finding
	for rows.Next() {
		var f model.Finding
		var contextText, pagePath sql.NullString

		if err := rows.Scan(&f.SourceURL, &f.Detector, &f.Value, &contextText, &pagePath); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Context = contextText.String
		f.PagePath = pagePath.String
		results = append(results, f)
	}

	return results, rows.Err()
}

// FindValue returns every run a given value was ever found in, newest
// first. This is the cross-run correlation query the database exists for.
func (hdb *HistoryDB) FindValue(ctx context.Context, value string) ([]model.Finding, error) {
	query := `
	SELECT f.source_url, f.detector, f.value, f.context, f.page_path
	FROM findings f
	JOIN runs r ON r.run_id = f.run_id
	WHERE f.value = ?
	ORDER BY r.timestamp DESC, f.id
	`

	rows, err := hdb.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query value: %w", err)
	}
	defer rows.Close()

	var results []model.Finding
	for rows.Next() {
		var f model.Finding
		var contextText, pagePath sql.NullString

		if err := rows.Scan(&f.SourceURL, &f.Detector, &f.Value, &contextText, &pagePath); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Context = contextText.String
		f.PagePath = pagePath.String
		results = append(results, f)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
