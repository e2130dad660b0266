package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"distracted/internal/modules/session/domain"
	apperrors "distracted/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type SQLiteReportIndex struct {
	db *sql.DB
}

func NewSQLiteReportIndex(dbPath string) (*SQLiteReportIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	index := &SQLiteReportIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteReportIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteReportIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS reports (
  session_id TEXT PRIMARY KEY,
  chapter_id TEXT NOT NULL,
  chapter_title TEXT NOT NULL,
  seed INTEGER NOT NULL,
  state TEXT NOT NULL,
  started_at TEXT NOT NULL,
  ended_at TEXT NOT NULL,
  elapsed_seconds INTEGER NOT NULL,
  tasks_completed INTEGER NOT NULL,
  tasks_skipped INTEGER NOT NULL,
  distractions_triggered INTEGER NOT NULL,
  distractions_resolved INTEGER NOT NULL,
  distractions_suppressed INTEGER NOT NULL,
  final_score INTEGER NOT NULL,
  final_focus INTEGER NOT NULL,
  note_path TEXT
);
CREATE INDEX IF NOT EXISTS idx_reports_started ON reports(started_at);
CREATE TABLE IF NOT EXISTS task_records (
  session_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  task_id TEXT NOT NULL,
  title TEXT NOT NULL,
  target_label TEXT NOT NULL,
  outcome TEXT NOT NULL,
  at TEXT NOT NULL,
  took_ms INTEGER NOT NULL,
  PRIMARY KEY (session_id, seq)
);
CREATE TABLE IF NOT EXISTS distraction_events (
  session_id TEXT NOT NULL,
  seq INTEGER NOT NULL,
  event_id TEXT NOT NULL,
  entry_id TEXT NOT NULL,
  category TEXT NOT NULL,
  title TEXT NOT NULL,
  target_label TEXT,
  effect TEXT NOT NULL,
  source TEXT NOT NULL,
  triggered_at TEXT NOT NULL,
  resolved_at TEXT,
  resolution TEXT,
  PRIMARY KEY (session_id, seq)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create report tables: %w", err)
	}
	return nil
}

// Upsert replaces the indexed report and its task and distraction rows.
func (s *SQLiteReportIndex) Upsert(ctx context.Context, report domain.Report, notePath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const stmt = `
INSERT INTO reports (session_id, chapter_id, chapter_title, seed, state, started_at, ended_at, elapsed_seconds,
  tasks_completed, tasks_skipped, distractions_triggered, distractions_resolved, distractions_suppressed,
  final_score, final_focus, note_path)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  chapter_id=excluded.chapter_id,
  chapter_title=excluded.chapter_title,
  seed=excluded.seed,
  state=excluded.state,
  started_at=excluded.started_at,
  ended_at=excluded.ended_at,
  elapsed_seconds=excluded.elapsed_seconds,
  tasks_completed=excluded.tasks_completed,
  tasks_skipped=excluded.tasks_skipped,
  distractions_triggered=excluded.distractions_triggered,
  distractions_resolved=excluded.distractions_resolved,
  distractions_suppressed=excluded.distractions_suppressed,
  final_score=excluded.final_score,
  final_focus=excluded.final_focus,
  note_path=excluded.note_path;
`
	if _, err := tx.ExecContext(ctx, stmt,
		report.SessionID,
		report.ChapterID,
		report.ChapterTitle,
		report.Seed,
		string(report.State),
		formatTime(report.StartedAt),
		formatTime(report.EndedAt),
		report.ElapsedSeconds,
		report.TasksCompleted,
		report.TasksSkipped,
		report.DistractionsTriggered,
		report.DistractionsResolved,
		report.DistractionsSuppressed,
		report.FinalScore,
		report.FinalFocus,
		notePath,
	); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_records WHERE session_id = ?`, report.SessionID); err != nil {
		return fmt.Errorf("clear task records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM distraction_events WHERE session_id = ?`, report.SessionID); err != nil {
		return fmt.Errorf("clear distraction events: %w", err)
	}
	for i, rec := range report.Tasks {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO task_records (session_id, seq, task_id, title, target_label, outcome, at, took_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			report.SessionID, i, rec.TaskID, rec.Title, rec.TargetLabel, string(rec.Outcome), formatTime(rec.At), rec.Took.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert task record: %w", err)
		}
	}
	for i, ev := range report.Distractions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO distraction_events (session_id, seq, event_id, entry_id, category, title, target_label, effect, source, triggered_at, resolved_at, resolution)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
			report.SessionID, i, ev.ID, ev.EntryID, string(ev.Category), ev.Title, ev.TargetLabel, string(ev.Effect), ev.Source,
			formatTime(ev.TriggeredAt), formatTime(ev.ResolvedAt), string(ev.Resolution),
		); err != nil {
			return fmt.Errorf("insert distraction event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

func (s *SQLiteReportIndex) List(ctx context.Context, limit int) ([]domain.ReportSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, chapter_id, chapter_title, state, started_at, elapsed_seconds,
  tasks_completed, tasks_skipped, final_score, final_focus, COALESCE(note_path, '')
FROM reports
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []domain.ReportSummary{}
	for rows.Next() {
		var (
			summary domain.ReportSummary
			state   string
			started string
		)
		if err := rows.Scan(&summary.SessionID, &summary.ChapterID, &summary.ChapterTitle, &state, &started,
			&summary.ElapsedSeconds, &summary.TasksCompleted, &summary.TasksSkipped,
			&summary.FinalScore, &summary.FinalFocus, &summary.NotePath); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		summary.State = domain.State(state)
		summary.StartedAt = parseTime(started)
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func (s *SQLiteReportIndex) Get(ctx context.Context, sessionID string) (domain.Report, string, error) {
	var (
		report   domain.Report
		state    string
		started  string
		ended    string
		notePath string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT session_id, chapter_id, chapter_title, seed, state, started_at, ended_at, elapsed_seconds,
  tasks_completed, tasks_skipped, distractions_triggered, distractions_resolved, distractions_suppressed,
  final_score, final_focus, COALESCE(note_path, '')
FROM reports WHERE session_id = ?;`, sessionID).Scan(
		&report.SessionID, &report.ChapterID, &report.ChapterTitle, &report.Seed, &state, &started, &ended,
		&report.ElapsedSeconds, &report.TasksCompleted, &report.TasksSkipped,
		&report.DistractionsTriggered, &report.DistractionsResolved, &report.DistractionsSuppressed,
		&report.FinalScore, &report.FinalFocus, &notePath,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Report{}, "", fmt.Errorf("%w: report %s", apperrors.ErrNotFound, sessionID)
	}
	if err != nil {
		return domain.Report{}, "", fmt.Errorf("get report: %w", err)
	}
	report.SchemaVersion = domain.SchemaVersion
	report.State = domain.State(state)
	report.StartedAt = parseTime(started)
	report.EndedAt = parseTime(ended)

	if report.Tasks, err = s.taskRecords(ctx, sessionID); err != nil {
		return domain.Report{}, "", err
	}
	if report.Distractions, err = s.distractionEvents(ctx, sessionID); err != nil {
		return domain.Report{}, "", err
	}
	return report, notePath, nil
}

func (s *SQLiteReportIndex) taskRecords(ctx context.Context, sessionID string) ([]domain.TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT task_id, title, target_label, outcome, at, took_ms
FROM task_records WHERE session_id = ? ORDER BY seq;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query task records: %w", err)
	}
	defer rows.Close()
	out := []domain.TaskRecord{}
	for rows.Next() {
		var (
			rec     domain.TaskRecord
			outcome string
			at      string
			tookMS  int64
		)
		if err := rows.Scan(&rec.TaskID, &rec.Title, &rec.TargetLabel, &outcome, &at, &tookMS); err != nil {
			return nil, fmt.Errorf("scan task record: %w", err)
		}
		rec.Outcome = domain.TaskOutcome(outcome)
		rec.At = parseTime(at)
		rec.Took = time.Duration(tookMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteReportIndex) distractionEvents(ctx context.Context, sessionID string) ([]domain.DistractionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT event_id, entry_id, category, title, COALESCE(target_label, ''), effect, source, triggered_at,
  COALESCE(resolved_at, ''), COALESCE(resolution, '')
FROM distraction_events WHERE session_id = ? ORDER BY seq;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query distraction events: %w", err)
	}
	defer rows.Close()
	out := []domain.DistractionEvent{}
	for rows.Next() {
		var (
			ev                                          domain.DistractionEvent
			category, effect, triggered, resolved, resl string
		)
		if err := rows.Scan(&ev.ID, &ev.EntryID, &category, &ev.Title, &ev.TargetLabel, &effect, &ev.Source,
			&triggered, &resolved, &resl); err != nil {
			return nil, fmt.Errorf("scan distraction event: %w", err)
		}
		ev.Category = domain.Category(category)
		ev.Effect = domain.SpecialEffect(effect)
		ev.TriggeredAt = parseTime(triggered)
		ev.ResolvedAt = parseTime(resolved)
		ev.Resolution = domain.Resolution(resl)
		out = append(out, ev)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
