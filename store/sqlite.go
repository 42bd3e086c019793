// Package store persists call summaries and scheduled consults in SQLite.
// Summaries are append-only: one row per session, uniqueness enforced by the
// database so concurrent finalizations cannot double-write.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"

	"frontdesk/session"
	"frontdesk/summary"
)

var (
	// ErrDuplicateSummary means a second append for the same session id: a
	// contract violation surfaced to the operator, not the caller.
	ErrDuplicateSummary = errors.New("summary already exists for session")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS summaries (
		session_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		contact    TEXT NOT NULL,
		topics     TEXT NOT NULL,
		answers    TEXT NOT NULL,
		outcome    TEXT NOT NULL,
		notes      TEXT,
		lead_score INTEGER NOT NULL DEFAULT 0,
		lead_priority TEXT NOT NULL DEFAULT 'low',
		lead_qualified INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_created ON summaries(created_at DESC);

	CREATE TABLE IF NOT EXISTS consults (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL,
		scheduled_at TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		notes      TEXT,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_consults_scheduled ON consults(scheduled_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendSummary persists one finalized record. A second append for the same
// session id fails with ErrDuplicateSummary; the uniqueness check is the
// primary key, so concurrent appends for the same session cannot both win.
func (s *Store) AppendSummary(rec summary.Record) error {
	contact, err := sonic.Marshal(rec.Contact)
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}
	topics, err := sonic.Marshal(rec.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	answers, err := sonic.Marshal(rec.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO summaries
		(session_id, created_at, contact, topics, answers, outcome, notes, lead_score, lead_priority, lead_qualified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Timestamp.UTC().Format(time.RFC3339Nano),
		string(contact), string(topics), string(answers),
		string(rec.Outcome), rec.Notes,
		rec.Lead.Score, rec.Lead.Priority, boolToInt(rec.Lead.Qualified))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateSummary, rec.SessionID)
		}
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// GetSummary retrieves one record by session id.
func (s *Store) GetSummary(sessionID string) (*summary.Record, error) {
	row := s.db.QueryRow(`SELECT session_id, created_at, contact, topics, answers, outcome, notes, lead_score, lead_priority, lead_qualified
		FROM summaries WHERE session_id = ?`, sessionID)
	rec, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return rec, err
}

// ListSummaries returns all records, newest first.
func (s *Store) ListSummaries() ([]summary.Record, error) {
	rows, err := s.db.Query(`SELECT session_id, created_at, contact, topics, answers, outcome, notes, lead_score, lead_priority, lead_qualified
		FROM summaries ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []summary.Record
	for rows.Next() {
		rec, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (*summary.Record, error) {
	var (
		rec                      summary.Record
		createdAt                string
		contact, topics, answers string
		notes                    sql.NullString
		outcome                  string
		qualified                int
	)
	err := sc.Scan(&rec.SessionID, &createdAt, &contact, &topics, &answers,
		&outcome, &notes, &rec.Lead.Score, &rec.Lead.Priority, &qualified)
	if err != nil {
		return nil, err
	}

	rec.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if err := sonic.Unmarshal([]byte(contact), &rec.Contact); err != nil {
		return nil, fmt.Errorf("unmarshal contact: %w", err)
	}
	if err := sonic.Unmarshal([]byte(topics), &rec.Topics); err != nil {
		return nil, fmt.Errorf("unmarshal topics: %w", err)
	}
	if err := sonic.Unmarshal([]byte(answers), &rec.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	rec.Outcome = session.Outcome(outcome)
	rec.Notes = notes.String
	rec.Lead.MaxScore = 100
	rec.Lead.Qualified = qualified != 0
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
