package leads

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestLead_Validate(t *testing.T) {
	t.Parallel()

	valid := Lead{
		SessionID: "abc-123",
		Name:      "Sara",
		Email:     "sara@example.com",
		Phone:     "+971501234567",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Lead)
		wantSub string
	}{
		{"missing session", func(l *Lead) { l.SessionID = "" }, "session_id is required"},
		{"missing name", func(l *Lead) { l.Name = "  " }, "name is required"},
		{"missing email", func(l *Lead) { l.Email = "" }, "email is required"},
		{"bad email", func(l *Lead) { l.Email = "not-an-address" }, "not a valid address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := valid
			tt.mutate(&l)
			err := l.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() error = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}

func TestFileStore_SaveAndReadBack(t *testing.T) {
	t.Parallel()
	store := NewFileStore(filepath.Join(t.TempDir(), "leads.jsonl"))
	ctx := context.Background()

	first := &Lead{
		SessionID:  "s-1",
		Name:       "Omar",
		Email:      "omar@example.com",
		Phone:      "+971502223344",
		Facts:      map[string]any{"property_price": 2000000.0, "income": 45000.0},
		CapturedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
	second := &Lead{
		SessionID:  "s-2",
		Name:       "Priya",
		Email:      "priya@example.com",
		CapturedAt: time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC),
	}

	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(All()) = %d, want 2", len(got))
	}
	if got[0].Name != "Omar" || got[1].Name != "Priya" {
		t.Errorf("order lost: %q, %q", got[0].Name, got[1].Name)
	}
	if got[0].Facts["property_price"] != 2000000.0 {
		t.Errorf("facts lost: %v", got[0].Facts)
	}
}

func TestFileStore_AllOnMissingFile(t *testing.T) {
	t.Parallel()
	store := NewFileStore(filepath.Join(t.TempDir(), "never-written.jsonl"))
	got, err := store.All()
	if err != nil {
		t.Fatalf("All() error: %v", err)
	}
	if got != nil {
		t.Errorf("All() = %v, want nil for missing file", got)
	}
}

// ---------------------------------------------------------------------------
// Postgres store with a mock DB
// ---------------------------------------------------------------------------

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error { return r.scanFunc(dest...) }

type mockDB struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFunc != nil {
		return m.queryRowFunc(ctx, sql, args...)
	}
	return &mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func TestPostgresStore_Save(t *testing.T) {
	t.Parallel()

	var gotSQL string
	var gotArgs []any
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	db := &mockDB{
		queryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
			gotSQL = sql
			gotArgs = args
			return &mockRow{scanFunc: func(dest ...any) error {
				*(dest[0].(*time.Time)) = now
				return nil
			}}
		},
	}

	store := NewPostgresStore(db)
	lead := &Lead{
		SessionID: "s-9",
		Name:      "Lena",
		Email:     "lena@example.com",
		Phone:     "+971509998877",
	}
	if err := store.Save(context.Background(), lead); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if !strings.Contains(gotSQL, "INSERT INTO leads") {
		t.Errorf("unexpected SQL: %s", gotSQL)
	}
	if len(gotArgs) != 5 {
		t.Fatalf("args = %d, want 5", len(gotArgs))
	}
	if gotArgs[0] != "s-9" || gotArgs[2] != "lena@example.com" {
		t.Errorf("unexpected args: %v", gotArgs)
	}
	// Nil facts must serialise as an empty JSON object for the JSONB column.
	if string(gotArgs[4].([]byte)) != "{}" {
		t.Errorf("facts arg = %s, want {}", gotArgs[4])
	}
	if !lead.CapturedAt.Equal(now) {
		t.Errorf("CapturedAt = %v, want %v", lead.CapturedAt, now)
	}
}

func TestPostgresStore_Migrate(t *testing.T) {
	t.Parallel()

	var gotSQL string
	db := &mockDB{
		execFunc: func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
			gotSQL = sql
			return pgconn.CommandTag{}, nil
		},
	}
	if err := NewPostgresStore(db).Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	if !strings.Contains(gotSQL, "CREATE TABLE IF NOT EXISTS leads") {
		t.Errorf("unexpected DDL: %s", gotSQL)
	}
}

func TestFileStore_StampsCapturedAt(t *testing.T) {
	t.Parallel()
	store := NewFileStore(filepath.Join(t.TempDir(), "leads.jsonl"))

	before := time.Now().UTC()
	lead := &Lead{
		SessionID: "abc-123",
		Name:      "Sara",
		Email:     "sara@example.com",
		Phone:     "+971501234567",
	}
	if err := store.Save(context.Background(), lead); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	if lead.CapturedAt.IsZero() {
		t.Fatal("CapturedAt still zero after Save")
	}
	if lead.CapturedAt.Before(before) {
		t.Errorf("CapturedAt = %v, want >= %v", lead.CapturedAt, before)
	}

	saved, err := store.All()
	if err != nil {
		t.Fatalf("All() unexpected error: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("saved %d leads, want 1", len(saved))
	}
	if saved[0].CapturedAt.IsZero() {
		t.Error("persisted captured_at is zero")
	}
}
