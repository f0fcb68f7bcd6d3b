package spool

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/velobase/jobsheet-tracker/constants"
)

// Entry is one spooled job-sheet photo waiting for recognition.
type Entry struct {
	ID         uuid.UUID
	Path       string
	Status     constants.ScanStatus
	Error      *string
	EnqueuedAt time.Time
	UpdatedAt  time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS scan_spool (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT,
	enqueued_at TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scan_spool_status ON scan_spool(status, enqueued_at);
`

// spoolTimeLayout is fixed-width: SQLite compares these TEXT timestamps
// lexicographically, and RFC3339Nano drops trailing fractional zeros, which
// makes a whole-second timestamp sort after a fractional one in the same
// second.
const spoolTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatSpoolTime(t time.Time) string {
	return t.UTC().Format(spoolTimeLayout)
}

// Spool is a local SQLite-backed queue of pending scans, so the shop machine
// keeps capturing sheets while the main store is unreachable.
type Spool struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the spool database at path.
func Open(path string, logger *slog.Logger) (*Spool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open spool: %w", err)
	}
	// a local queue has exactly one writer
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init spool schema: %w", err)
	}
	logger.Info("spool.open", "path", path)
	return &Spool{db: db, logger: logger}, nil
}

func (s *Spool) Close() error {
	return s.db.Close()
}

// Enqueue records a photo path as QUEUED and returns its spool id.
func (s *Spool) Enqueue(ctx context.Context, path string) (uuid.UUID, error) {
	id := uuid.New()
	now := formatSpoolTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scan_spool (id, path, status, enqueued_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id.String(), path, string(constants.ScanStatusQueued), now, now,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue %q: %w", path, err)
	}
	s.logger.Info("spool.enqueue", "id", id, "path", path)
	return id, nil
}

// NextPending claims the oldest QUEUED entry, flipping it to RUNNING.
// Returns (nil, nil) when the spool is empty.
func (s *Spool) NextPending(ctx context.Context) (*Entry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT id, path, status, error, enqueued_at, updated_at
		 FROM scan_spool WHERE status = ? ORDER BY enqueued_at LIMIT 1`,
		string(constants.ScanStatusQueued),
	)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := formatSpoolTime(time.Now())
	if _, err := tx.ExecContext(ctx,
		`UPDATE scan_spool SET status = ?, updated_at = ? WHERE id = ?`,
		string(constants.ScanStatusRunning), now, e.ID.String(),
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	e.Status = constants.ScanStatusRunning
	return e, nil
}

// MarkDone removes a finished entry from the spool.
func (s *Spool) MarkDone(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scan_spool WHERE id = ?`, id.String())
	return err
}

// MarkFailed records a terminal failure so the entry can be inspected later.
func (s *Spool) MarkFailed(ctx context.Context, id uuid.UUID, msg string) error {
	now := formatSpoolTime(time.Now())
	_, err := s.db.ExecContext(ctx,
		`UPDATE scan_spool SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(constants.ScanStatusFailed), msg, now, id.String(),
	)
	return err
}

// ListPending returns QUEUED and RUNNING entries, oldest first.
func (s *Spool) ListPending(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, status, error, enqueued_at, updated_at
		 FROM scan_spool WHERE status IN (?, ?) ORDER BY enqueued_at`,
		string(constants.ScanStatusQueued), string(constants.ScanStatusRunning),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// RequeueStale flips RUNNING entries older than cutoff back to QUEUED, for
// recovery after a crash mid-scan. Returns the number of requeued entries.
func (s *Spool) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := formatSpoolTime(time.Now().Add(-olderThan))
	now := formatSpoolTime(time.Now())
	res, err := s.db.ExecContext(ctx,
		`UPDATE scan_spool SET status = ?, updated_at = ? WHERE status = ? AND updated_at < ?`,
		string(constants.ScanStatusQueued), now, string(constants.ScanStatusRunning), cutoff,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*Entry, error) {
	var (
		idStr, path, status, enq, upd string
		errMsg                        sql.NullString
	)
	if err := r.Scan(&idStr, &path, &status, &errMsg, &enq, &upd); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt spool id %q: %w", idStr, err)
	}
	enqueuedAt, err := time.Parse(time.RFC3339Nano, enq)
	if err != nil {
		return nil, fmt.Errorf("corrupt enqueued_at %q: %w", enq, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, upd)
	if err != nil {
		return nil, fmt.Errorf("corrupt updated_at %q: %w", upd, err)
	}
	e := &Entry{
		ID:         id,
		Path:       path,
		Status:     constants.ScanStatus(status),
		EnqueuedAt: enqueuedAt,
		UpdatedAt:  updatedAt,
	}
	if errMsg.Valid {
		e.Error = &errMsg.String
	}
	return e, nil
}
