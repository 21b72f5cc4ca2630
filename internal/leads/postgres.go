package leads

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the leads table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS leads (
    id          BIGSERIAL PRIMARY KEY,
    session_id  TEXT NOT NULL,
    name        TEXT NOT NULL,
    email       TEXT NOT NULL,
    phone       TEXT NOT NULL DEFAULT '',
    facts       JSONB NOT NULL DEFAULT '{}',
    captured_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_leads_session ON leads(session_id);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by a PostgreSQL database. Collected
// session facts are serialised as JSONB.
type PostgresStore struct {
	db DB
}

// Compile-time interface check.
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new [PostgresStore] that uses the given database
// connection or pool. The caller is responsible for calling
// [PostgresStore.Migrate] to ensure the schema exists before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL against the database, creating the leads
// table and indexes if they do not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("leads: migrate: %w", err)
	}
	return nil
}

// Save inserts one lead.
func (s *PostgresStore) Save(ctx context.Context, lead *Lead) error {
	factsJSON, err := json.Marshal(emptyMap(lead.Facts))
	if err != nil {
		return fmt.Errorf("leads: marshal facts: %w", err)
	}

	const query = `
		INSERT INTO leads (session_id, name, email, phone, facts)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING captured_at`

	err = s.db.QueryRow(ctx, query,
		lead.SessionID, lead.Name, lead.Email, lead.Phone, factsJSON,
	).Scan(&lead.CapturedAt)
	if err != nil {
		return fmt.Errorf("leads: save: %w", err)
	}
	return nil
}

// BySession returns all leads captured from one conversation, oldest first.
func (s *PostgresStore) BySession(ctx context.Context, sessionID string) ([]Lead, error) {
	const query = `
		SELECT session_id, name, email, phone, facts, captured_at
		FROM leads
		WHERE session_id = $1
		ORDER BY captured_at`

	rows, err := s.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("leads: by session: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var l Lead
		var factsJSON []byte
		if err := rows.Scan(&l.SessionID, &l.Name, &l.Email, &l.Phone, &factsJSON, &l.CapturedAt); err != nil {
			return nil, fmt.Errorf("leads: by session scan: %w", err)
		}
		if err := json.Unmarshal(factsJSON, &l.Facts); err != nil {
			return nil, fmt.Errorf("leads: unmarshal facts: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: by session: %w", err)
	}
	return out, nil
}

// emptyMap returns m if non-nil, otherwise an empty non-nil map. This ensures
// JSON marshalling produces "{}" instead of "null".
func emptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
