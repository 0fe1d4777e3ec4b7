package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/biomail/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "biomail.db"

// HistoryDB stores finished runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when
	// they are missing. Read-only commands leave it false.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the scrape command.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		mode = "rw"
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := hdb.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the location of the database file.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		handles INTEGER NOT NULL DEFAULT 0,
		emails INTEGER NOT NULL DEFAULT 0,
		interrupted INTEGER NOT NULL DEFAULT 0,
		outcomes TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- position keeps the emission order of rows within a run
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		handle TEXT NOT NULL,
		email TEXT NOT NULL,
		source TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);
	CREATE INDEX IF NOT EXISTS idx_results_email ON results(email);

	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		handle TEXT NOT NULL,
		snapshot TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_run ON profiles(run_id);
	CREATE INDEX IF NOT EXISTS idx_profiles_handle ON profiles(handle);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// RunRecord is the stored summary of a run.
type RunRecord struct {
	ID          int64
	Source      model.Source
	StartedAt   time.Time
	FinishedAt  time.Time
	Handles     int
	Emails      int
	Interrupted bool
	Outcomes    []model.HandleOutcome
}

// SaveRun stores run with its rows and profiles in one transaction and
// sets run.ID to the new identifier.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (id int64, err error) {
	outcomes, err := json.Marshal(run.Outcomes)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize outcomes: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (source, started_at, finished_at, handles, emails, interrupted, outcomes)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Source.String(),
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		len(run.Outcomes),
		len(run.Rows),
		run.Interrupted,
		string(outcomes),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	if id, err = result.LastInsertId(); err != nil {
		return 0, err
	}

	for i, row := range run.Rows {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO results (run_id, position, handle, email, source) VALUES (?, ?, ?, ?, ?)`,
			id, i, row.Handle, row.Email, row.Source.String(),
		); err != nil {
			return 0, fmt.Errorf("failed to insert result row: %w", err)
		}
	}

	for _, p := range run.Profiles {
		snapshot, merr := json.Marshal(p)
		if merr != nil {
			err = fmt.Errorf("failed to serialize profile %s: %w", p.Handle, merr)
			return 0, err
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (run_id, handle, snapshot) VALUES (?, ?, ?)`,
			id, p.Handle, string(snapshot),
		); err != nil {
			return 0, fmt.Errorf("failed to insert profile: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	run.ID = id
	return id, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, source, started_at, finished_at, handles, emails, interrupted, outcomes
	FROM runs
	ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetRun returns the stored summary of one run.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := h.db.QueryRowContext(ctx, `
	SELECT id, source, started_at, finished_at, handles, emails, interrupted, outcomes
	FROM runs
	WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	return rec, err
}

// GetRunRows returns the result rows of a run in emission order.
func (h *HistoryDB) GetRunRows(ctx context.Context, id int64) ([]model.ResultRow, error) {
	if _, err := h.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT handle, email, source FROM results WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query result rows: %w", err)
	}
	defer rows.Close()

	result := make([]model.ResultRow, 0)
	for rows.Next() {
		var (
			r      model.ResultRow
			source string
		)
		if err := rows.Scan(&r.Handle, &r.Email, &source); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		if err := r.Source.UnmarshalText([]byte(source)); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// GetRunProfiles returns the profile snapshots stored with a run.
func (h *HistoryDB) GetRunProfiles(ctx context.Context, id int64) ([]model.Profile, error) {
	if _, err := h.GetRun(ctx, id); err != nil {
		return nil, err
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT snapshot FROM profiles WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]model.Profile, 0)
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		var p model.Profile
		if err := json.Unmarshal([]byte(snapshot), &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// LoadRun rebuilds a full run from the database.
func (h *HistoryDB) LoadRun(ctx context.Context, id int64) (*model.Run, error) {
	rec, err := h.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := h.GetRunRows(ctx, id)
	if err != nil {
		return nil, err
	}
	profiles, err := h.GetRunProfiles(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.Run{
		ID:          rec.ID,
		Source:      rec.Source,
		StartedAt:   rec.StartedAt,
		FinishedAt:  rec.FinishedAt,
		Rows:        rows,
		Outcomes:    rec.Outcomes,
		Profiles:    profiles,
		Interrupted: rec.Interrupted,
	}, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*RunRecord, error) {
	var (
		rec         RunRecord
		source      string
		started     string
		finished    sql.NullString
		outcomes    sql.NullString
		interrupted int
	)
	err := s.Scan(&rec.ID, &source, &started, &finished, &rec.Handles, &rec.Emails, &interrupted, &outcomes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := rec.Source.UnmarshalText([]byte(source)); err != nil {
		return nil, err
	}
	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished.String)
	rec.Interrupted = interrupted != 0
	if outcomes.String != "" {
		if err := json.Unmarshal([]byte(outcomes.String), &rec.Outcomes); err != nil {
			return nil, fmt.Errorf("failed to parse outcomes: %w", err)
		}
	}
	return &rec, nil
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats lists the layouts parseTimestamp accepts.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
