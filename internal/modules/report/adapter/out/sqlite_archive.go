package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"faceclass/internal/modules/report/domain"
	reportout "faceclass/internal/modules/report/port/out"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type SQLiteArchive struct {
	db *sql.DB
}

func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	archive := &SQLiteArchive{db: db}
	if err := archive.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return archive, nil
}

var _ reportout.Archive = (*SQLiteArchive)(nil)

func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}

func (s *SQLiteArchive) ensureSchema(ctx context.Context) error {
	const reports = `
CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  format TEXT NOT NULL,
  path TEXT NOT NULL,
  rule TEXT,
  class_label TEXT,
  generated_at TEXT NOT NULL
);
`
	const sessions = `
CREATE TABLE IF NOT EXISTS sessions (
  session_id TEXT PRIMARY KEY,
  class_label TEXT,
  present INTEGER NOT NULL,
  enrolled INTEGER NOT NULL,
  ended_at TEXT NOT NULL
);
`
	const attendance = `
CREATE TABLE IF NOT EXISTS session_attendance (
  session_id TEXT NOT NULL,
  student_name TEXT NOT NULL,
  status TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  PRIMARY KEY (session_id, student_name)
);
`
	if _, err := s.db.ExecContext(ctx, reports); err != nil {
		return fmt.Errorf("create reports table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sessions); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, attendance); err != nil {
		return fmt.Errorf("create session_attendance table: %w", err)
	}
	return nil
}

func (s *SQLiteArchive) Record(ctx context.Context, handle domain.Handle) error {
	const stmt = `
INSERT INTO reports (id, kind, format, path, rule, class_label, generated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  kind=excluded.kind,
  format=excluded.format,
  path=excluded.path,
  rule=excluded.rule,
  class_label=excluded.class_label,
  generated_at=excluded.generated_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		handle.ID,
		string(handle.Kind),
		string(handle.Format),
		handle.Path,
		handle.Rule,
		handle.ClassLabel,
		handle.GeneratedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	return nil
}

func (s *SQLiteArchive) Recent(ctx context.Context, limit int) ([]domain.Handle, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, format, path, COALESCE(rule, ''), COALESCE(class_label, ''), generated_at
FROM reports
ORDER BY generated_at DESC, id
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Handle
	for rows.Next() {
		var (
			h           domain.Handle
			kind        string
			format      string
			generatedAt string
		)
		if err := rows.Scan(&h.ID, &kind, &format, &h.Path, &h.Rule, &h.ClassLabel, &generatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		h.Kind = domain.Kind(kind)
		h.Format = domain.Format(format)
		if h.GeneratedAt, err = time.Parse(timeLayout, generatedAt); err != nil {
			return nil, fmt.Errorf("parse generated_at: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// RecordSession stores the session's final count and the final status of
// every student. Recording the same session twice replaces the earlier rows.
func (s *SQLiteArchive) RecordSession(ctx context.Context, snapshot domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session archive: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const session = `
INSERT INTO sessions (session_id, class_label, present, enrolled, ended_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  class_label=excluded.class_label,
  present=excluded.present,
  enrolled=excluded.enrolled,
  ended_at=excluded.ended_at;
`
	const stmt = `
INSERT INTO session_attendance (session_id, student_name, status, ended_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(session_id, student_name) DO UPDATE SET
  status=excluded.status,
  ended_at=excluded.ended_at;
`
	endedAt := snapshot.At.UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx, session, snapshot.SessionID, snapshot.ClassLabel, snapshot.Present, snapshot.Total, endedAt); err != nil {
		return fmt.Errorf("archive session %s: %w", snapshot.SessionID, err)
	}
	for _, row := range snapshot.Rows {
		if _, err := tx.ExecContext(ctx, stmt, snapshot.SessionID, row.DisplayName, row.Status, endedAt); err != nil {
			return fmt.Errorf("archive %s: %w", row.DisplayName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session archive: %w", err)
	}
	return nil
}

func (s *SQLiteArchive) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT student_name,
       SUM(CASE WHEN status = 'present' THEN 1 ELSE 0 END),
       COUNT(*)
FROM session_attendance
GROUP BY student_name
ORDER BY student_name`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.DisplayName, &e.SessionsAttended, &e.SessionsTotal); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteArchive) Sessions(ctx context.Context, from, to time.Time) ([]domain.SessionSample, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, present, enrolled, ended_at
FROM sessions
WHERE ended_at >= ? AND ended_at < ?
ORDER BY ended_at, session_id`, from.UTC().Format(timeLayout), to.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []domain.SessionSample
	for rows.Next() {
		var (
			sample  domain.SessionSample
			endedAt string
		)
		if err := rows.Scan(&sample.SessionID, &sample.Present, &sample.Enrolled, &endedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sample.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, fmt.Errorf("parse ended_at: %w", err)
		}
		out = append(out, sample)
	}
	return out, rows.Err()
}
