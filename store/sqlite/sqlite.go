// Package sqlite implements core.MetadataStore on SQLite via mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/agentdesk/core"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS agents (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		agent_type TEXT NOT NULL,
		provider TEXT,
		model_name TEXT,
		config TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agents_name ON agents(name);
	CREATE INDEX IF NOT EXISTS idx_agents_type ON agents(agent_type);
`

// Store is a core.MetadataStore backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at dsn and ensures the
// schema exists. A "sqlite:///" prefix is accepted and stripped; the parent
// directory of a file path is created.
func Open(dsn string) (*Store, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite:///")
	if dsn == "" {
		return nil, errors.New("sqlite: empty dsn")
	}
	if !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases consistent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Save implements core.MetadataStore.
func (s *Store) Save(ctx context.Context, rec core.AgentRecord) error {
	cfg, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agents (id, name, description, agent_type, provider, model_name, config, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			agent_type = excluded.agent_type,
			provider = excluded.provider,
			model_name = excluded.model_name,
			config = excluded.config,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Name, rec.Description, rec.Kind, rec.Provider, rec.Model, string(cfg),
		rec.Active, rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save agent %s: %w", rec.ID, err)
	}
	return nil
}

// Get implements core.MetadataStore.
func (s *Store) Get(ctx context.Context, id string) (core.AgentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, agent_type, provider, model_name, config, is_active, created_at, updated_at
		FROM agents WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AgentRecord{}, core.ErrRecordNotFound
	}
	return rec, err
}

// Delete implements core.MetadataStore.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete agent %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

// List implements core.MetadataStore.
func (s *Store) List(ctx context.Context) ([]core.AgentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, agent_type, provider, model_name, config, is_active, created_at, updated_at
		FROM agents ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var out []core.AgentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (core.AgentRecord, error) {
	var (
		rec                 core.AgentRecord
		desc, provider, mdl sql.NullString
		cfg                 sql.NullString
		created, updated    int64
	)
	if err := sc.Scan(&rec.ID, &rec.Name, &desc, &rec.Kind, &provider, &mdl, &cfg, &rec.Active, &created, &updated); err != nil {
		return core.AgentRecord{}, err
	}
	rec.Description = desc.String
	rec.Provider = provider.String
	rec.Model = mdl.String
	if cfg.Valid && cfg.String != "" && cfg.String != "null" {
		if err := json.Unmarshal([]byte(cfg.String), &rec.Config); err != nil {
			return core.AgentRecord{}, fmt.Errorf("failed to decode config of agent %s: %w", rec.ID, err)
		}
	}
	rec.CreatedAt = time.Unix(0, created)
	rec.UpdatedAt = time.Unix(0, updated)
	return rec, nil
}

var _ core.MetadataStore = (*Store)(nil)
