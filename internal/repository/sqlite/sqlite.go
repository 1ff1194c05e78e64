package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"topodiagram/internal/domain"
	"topodiagram/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.SessionStore using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.SessionStore = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath and migrates it.
// ":memory:" gives a private in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

// Close closes the database
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrations are applied in order; PRAGMA user_version records how many
// have run
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		address TEXT,
		quantities JSON NOT NULL,
		positions JSON,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`,
	`
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at TEXT NOT NULL
	);
	`,
}

func (r *Repository) migrate() error {
	var version int
	if err := r.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := version; i < len(migrations); i++ {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// SchemaVersion returns the number of applied migrations
func (r *Repository) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}

// SaveSession inserts or replaces a session
func (r *Repository) SaveSession(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	quantities, err := marshalToNull(s.Config.Quantities)
	if err != nil {
		return fmt.Errorf("failed to marshal quantities: %w", err)
	}
	if !quantities.Valid {
		quantities = sql.NullString{String: "{}", Valid: true}
	}
	positions, err := marshalToNull(s.Positions)
	if err != nil {
		return fmt.Errorf("failed to marshal positions: %w", err)
	}

	now := r.now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, kind, customer_name, address, quantities, positions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			customer_name = excluded.customer_name,
			address = excluded.address,
			quantities = excluded.quantities,
			positions = excluded.positions,
			updated_at = excluded.updated_at
	`, s.ID, s.Name, string(s.Config.Kind), s.Config.CustomerName, stringToNull(s.Config.Address),
		quantities, positions, formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// an update keeps the original creation time
	row := r.db.QueryRowContext(ctx, `SELECT created_at FROM sessions WHERE id = ?`, s.ID)
	var created string
	if err := row.Scan(&created); err == nil {
		if t, err := parseTime(created); err == nil {
			s.CreatedAt = t
		}
	}
	return nil
}

// GetSession loads a session by ID
func (r *Repository) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, customer_name, address, quantities, positions, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`, id)

	var sr sessionRow
	err := row.Scan(&sr.ID, &sr.Name, &sr.Kind, &sr.CustomerName, &sr.Address,
		&sr.Quantities, &sr.Positions, &sr.CreatedAt, &sr.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return sessionRowToDomain(sr)
}

// ListSessions returns every session, most recently updated first
func (r *Repository) ListSessions(ctx context.Context) ([]domain.SessionSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, customer_name, updated_at
		FROM sessions
		ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SessionSummary, 0)
	for rows.Next() {
		var (
			s       domain.SessionSummary
			kind    string
			updated string
		)
		if err := rows.Scan(&s.ID, &s.Name, &kind, &s.CustomerName, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Kind = domain.TopologyKind(kind)
		if s.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at of %s: %w", s.ID, err)
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return out, nil
}

// DeleteSession removes a session
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", repository.ErrSessionNotFound, id)
	}
	return nil
}

// SetMetadata stores a JSON value under key
func (r *Repository) SetMetadata(ctx context.Context, key string, value interface{}) error {
	data, err := marshalToNull(value)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if !data.Valid {
		data = sql.NullString{String: "null", Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data, formatTime(r.now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}

// GetMetadata loads the JSON value under key into target. It reports
// whether the key exists.
func (r *Repository) GetMetadata(ctx context.Context, key string, target interface{}) (bool, error) {
	var value sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query metadata: %w", err)
	}
	if err := unmarshalJSONField(value, target); err != nil {
		return true, fmt.Errorf("failed to unmarshal metadata %s: %w", key, err)
	}
	return true, nil
}
