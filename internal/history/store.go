package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotRunning is returned when finishing a render that already finished.
var ErrNotRunning = errors.New("render is not running")

// Store manages render history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Begin records a render in the running state.
func (s *Store) Begin(ctx context.Context, r Render) (*Render, error) {
	if strings.TrimSpace(r.SessionID) == "" {
		return nil, errors.New("render session id is required")
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO renders (session_id, project, output, status, stage, sources, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID,
		nullableString(r.Project),
		r.Output,
		StatusRunning,
		nullableString(r.Stage),
		r.Sources,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert render: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.Get(ctx, id)
}

// SetStage updates the stage of a running render.
func (s *Store) SetStage(ctx context.Context, id int64, stage string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE renders SET stage = ? WHERE id = ? AND status = ?`,
		nullableString(stage), id, StatusRunning)
	if err != nil {
		return fmt.Errorf("update stage: %w", err)
	}
	return nil
}

// Finish records the outcome of a running render.
func (s *Store) Finish(ctx context.Context, id int64, out Outcome) (*Render, error) {
	if !out.Status.Terminal() {
		return nil, fmt.Errorf("finish render %d: status %q is not terminal", id, out.Status)
	}
	warnings, err := encodeWarnings(out.Warnings)
	if err != nil {
		return nil, err
	}
	var errMsg string
	if out.Err != nil {
		errMsg = out.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE renders
         SET status = ?, stage = COALESCE(?, stage), resolution = ?, duration_seconds = ?, pages = ?,
             warnings_json = ?, error_message = ?, output_bytes = ?, archive_path = ?, finished_at = ?
         WHERE id = ? AND status = ?`,
		out.Status,
		nullableString(out.Stage),
		nullableString(out.Resolution),
		out.DurationSeconds,
		out.Pages,
		warnings,
		nullableString(errMsg),
		out.OutputBytes,
		nullableString(out.ArchivePath),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		StatusRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("finish render: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("finish render %d: %w", id, ErrNotRunning)
	}
	return s.Get(ctx, id)
}

// Get fetches a render by identifier. It returns nil when no row matches.
func (s *Store) Get(ctx context.Context, id int64) (*Render, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+renderColumns+` FROM renders WHERE id = ?`, id)
	r, err := scanRender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get render: %w", err)
	}
	return r, nil
}

// GetBySession fetches a render by its session id.
func (s *Store) GetBySession(ctx context.Context, sessionID string) (*Render, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+renderColumns+` FROM renders WHERE session_id = ?`, sessionID)
	r, err := scanRender(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get render by session: %w", err)
	}
	return r, nil
}

// List returns renders newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Render, error) {
	query := `SELECT ` + renderColumns + ` FROM renders`
	args := make([]any, 0, len(opts.Statuses)+1)
	if len(opts.Statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(opts.Statuses)) + `)`
		for _, status := range opts.Statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var renders []*Render
	for rows.Next() {
		r, err := scanRender(rows)
		if err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		renders = append(renders, r)
	}
	return renders, rows.Err()
}

// Stats returns a count of renders grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM renders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// MarkInterrupted fails renders left running by a process that exited
// without finishing them.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE renders SET status = ?, error_message = ?, finished_at = ? WHERE status = ?`,
		StatusFailed,
		"interrupted before completion",
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted renders: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes finished renders that started before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM renders WHERE status != ? AND started_at < ?`,
		StatusRunning,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune renders: %w", err)
	}
	return res.RowsAffected()
}
