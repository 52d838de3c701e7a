package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/flowternity/facility-assistant/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fragments (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	category    TEXT NOT NULL,
	payload     TEXT NOT NULL,
	captured_at DATETIME NOT NULL,
	active      INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	user_text     TEXT NOT NULL,
	response_text TEXT NOT NULL,
	is_error      INTEGER NOT NULL DEFAULT 0,
	occurred_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS source_status (
	source          TEXT PRIMARY KEY,
	last_attempt_at DATETIME NOT NULL,
	outcome         TEXT NOT NULL,
	error_detail    TEXT,
	fragment_count  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_fragments_active ON fragments(active, captured_at);
CREATE INDEX IF NOT EXISTS idx_fragments_source ON fragments(source, category);
CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, occurred_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendFragment(ctx context.Context, f model.Fragment) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CapturedAt.IsZero() {
		f.CapturedAt = time.Now().UTC()
	}

	payload, err := model.MarshalPayload(f.Payload)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fragments (id, source, category, payload, captured_at, active) VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, string(f.Source), string(f.Category), string(payload), f.CapturedAt, f.Active,
	)
	return eris.Wrap(err, "sqlite: insert fragment")
}

func (s *SQLiteStore) ListActiveFragments(ctx context.Context) ([]model.Fragment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, category, payload, captured_at, active
		 FROM fragments WHERE active = 1 ORDER BY captured_at ASC, id ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fragments")
	}
	defer rows.Close() //nolint:errcheck

	var frags []model.Fragment
	for rows.Next() {
		var (
			f        model.Fragment
			source   string
			category string
			payload  string
		)
		if err := rows.Scan(&f.ID, &source, &category, &payload, &f.CapturedAt, &f.Active); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan fragment")
		}
		f.Source = model.Source(source)
		f.Category = model.Category(category)
		f.Payload, err = model.UnmarshalPayload(f.Category, []byte(payload))
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	return frags, eris.Wrap(rows.Err(), "sqlite: iterate fragments")
}

func (s *SQLiteStore) AppendTurn(ctx context.Context, turn model.ConversationTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.OccurredAt.IsZero() {
		turn.OccurredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, session_id, user_text, response_text, is_error, occurred_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.ID, turn.SessionID, turn.UserText, turn.ResponseText, turn.IsError, turn.OccurredAt,
	)
	return eris.Wrap(err, "sqlite: insert turn")
}

func (s *SQLiteStore) ListTurnsBySession(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_text, response_text, is_error, occurred_at
		 FROM conversations WHERE session_id = ? ORDER BY occurred_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list turns")
	}
	defer rows.Close() //nolint:errcheck
	return scanTurns(rows)
}

func (s *SQLiteStore) ListAllTurns(ctx context.Context) ([]model.ConversationTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, user_text, response_text, is_error, occurred_at
		 FROM conversations ORDER BY occurred_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list all turns")
	}
	defer rows.Close() //nolint:errcheck
	return scanTurns(rows)
}

func scanTurns(rows *sql.Rows) ([]model.ConversationTurn, error) {
	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.ResponseText, &t.IsError, &t.OccurredAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan turn")
		}
		turns = append(turns, t)
	}
	return turns, eris.Wrap(rows.Err(), "sqlite: iterate turns")
}

func (s *SQLiteStore) UpsertStatus(ctx context.Context, status model.SourceStatus) error {
	if status.LastAttemptAt.IsZero() {
		status.LastAttemptAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO source_status (source, last_attempt_at, outcome, error_detail, fragment_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET
			last_attempt_at = excluded.last_attempt_at,
			outcome = excluded.outcome,
			error_detail = excluded.error_detail,
			fragment_count = excluded.fragment_count`,
		string(status.Source), status.LastAttemptAt, string(status.Outcome), status.ErrorDetail, status.FragmentCount,
	)
	return eris.Wrap(err, "sqlite: upsert status")
}

func (s *SQLiteStore) SnapshotStatuses(ctx context.Context) (map[model.Source]model.SourceStatus, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, last_attempt_at, outcome, COALESCE(error_detail, ''), fragment_count FROM source_status`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: snapshot statuses")
	}
	defer rows.Close() //nolint:errcheck

	statuses := make(map[model.Source]model.SourceStatus)
	for rows.Next() {
		var (
			st      model.SourceStatus
			source  string
			outcome string
		)
		if err := rows.Scan(&source, &st.LastAttemptAt, &outcome, &st.ErrorDetail, &st.FragmentCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan status")
		}
		st.Source = model.Source(source)
		st.Outcome = model.StatusOutcome(outcome)
		statuses[st.Source] = st
	}
	return statuses, eris.Wrap(rows.Err(), "sqlite: iterate statuses")
}
