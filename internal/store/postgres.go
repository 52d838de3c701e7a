package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/flowternity/facility-assistant/internal/model"
)

// Pool is the subset of *pgxpool.Pool the store uses. pgxmock satisfies
// it, so the driver is unit-testable without a database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS fragments (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	category    TEXT NOT NULL,
	payload     JSONB NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS conversations (
	id            TEXT PRIMARY KEY,
	session_id    TEXT NOT NULL,
	user_text     TEXT NOT NULL,
	response_text TEXT NOT NULL,
	is_error      BOOLEAN NOT NULL DEFAULT FALSE,
	occurred_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS source_status (
	source          TEXT PRIMARY KEY,
	last_attempt_at TIMESTAMPTZ NOT NULL,
	outcome         TEXT NOT NULL,
	error_detail    TEXT,
	fragment_count  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_fragments_active ON fragments(active, captured_at);
CREATE INDEX IF NOT EXISTS idx_fragments_source ON fragments(source, category);
CREATE INDEX IF NOT EXISTS idx_conversations_session ON conversations(session_id, occurred_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AppendFragment(ctx context.Context, f model.Fragment) error {
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

	_, err = s.pool.Exec(ctx,
		`INSERT INTO fragments (id, source, category, payload, captured_at, active) VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, string(f.Source), string(f.Category), payload, f.CapturedAt, f.Active,
	)
	return eris.Wrap(err, "postgres: insert fragment")
}

func (s *PostgresStore) ListActiveFragments(ctx context.Context) ([]model.Fragment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source, category, payload, captured_at, active
		 FROM fragments WHERE active ORDER BY captured_at ASC, id ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list fragments")
	}
	defer rows.Close()

	var frags []model.Fragment
	for rows.Next() {
		var (
			f        model.Fragment
			source   string
			category string
			payload  []byte
		)
		if err := rows.Scan(&f.ID, &source, &category, &payload, &f.CapturedAt, &f.Active); err != nil {
			return nil, eris.Wrap(err, "postgres: scan fragment")
		}
		f.Source = model.Source(source)
		f.Category = model.Category(category)
		f.Payload, err = model.UnmarshalPayload(f.Category, payload)
		if err != nil {
			return nil, err
		}
		frags = append(frags, f)
	}
	return frags, eris.Wrap(rows.Err(), "postgres: iterate fragments")
}

func (s *PostgresStore) AppendTurn(ctx context.Context, turn model.ConversationTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.OccurredAt.IsZero() {
		turn.OccurredAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversations (id, session_id, user_text, response_text, is_error, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.SessionID, turn.UserText, turn.ResponseText, turn.IsError, turn.OccurredAt,
	)
	return eris.Wrap(err, "postgres: insert turn")
}

func (s *PostgresStore) ListTurnsBySession(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, user_text, response_text, is_error, occurred_at
		 FROM conversations WHERE session_id = $1 ORDER BY occurred_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list turns")
	}
	defer rows.Close()

	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.ResponseText, &t.IsError, &t.OccurredAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan turn")
		}
		turns = append(turns, t)
	}
	return turns, eris.Wrap(rows.Err(), "postgres: iterate turns")
}

func (s *PostgresStore) ListAllTurns(ctx context.Context) ([]model.ConversationTurn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, user_text, response_text, is_error, occurred_at
		 FROM conversations ORDER BY occurred_at DESC, id DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list all turns")
	}
	defer rows.Close()

	var turns []model.ConversationTurn
	for rows.Next() {
		var t model.ConversationTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.ResponseText, &t.IsError, &t.OccurredAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan turn")
		}
		turns = append(turns, t)
	}
	return turns, eris.Wrap(rows.Err(), "postgres: iterate turns")
}

func (s *PostgresStore) UpsertStatus(ctx context.Context, status model.SourceStatus) error {
	if status.LastAttemptAt.IsZero() {
		status.LastAttemptAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO source_status (source, last_attempt_at, outcome, error_detail, fragment_count)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (source) DO UPDATE SET
			last_attempt_at = EXCLUDED.last_attempt_at,
			outcome = EXCLUDED.outcome,
			error_detail = EXCLUDED.error_detail,
			fragment_count = EXCLUDED.fragment_count`,
		string(status.Source), status.LastAttemptAt, string(status.Outcome), status.ErrorDetail, status.FragmentCount,
	)
	return eris.Wrap(err, "postgres: upsert status")
}

func (s *PostgresStore) SnapshotStatuses(ctx context.Context) (map[model.Source]model.SourceStatus, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source, last_attempt_at, outcome, COALESCE(error_detail, ''), fragment_count FROM source_status`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: snapshot statuses")
	}
	defer rows.Close()

	statuses := make(map[model.Source]model.SourceStatus)
	for rows.Next() {
		var (
			st      model.SourceStatus
			source  string
			outcome string
		)
		if err := rows.Scan(&source, &st.LastAttemptAt, &outcome, &st.ErrorDetail, &st.FragmentCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan status")
		}
		st.Source = model.Source(source)
		st.Outcome = model.StatusOutcome(outcome)
		statuses[st.Source] = st
	}
	return statuses, eris.Wrap(rows.Err(), "postgres: iterate statuses")
}
