// Package store persists accepted themes in SQLite via modernc.org/sqlite.
// The pipeline itself only keeps transient session state; this is the
// durable collaborator behind theme.Store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/themeforge/pkg/theme"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// ErrNotFound is returned when a theme ID does not exist.
var ErrNotFound = fmt.Errorf("theme not found")

// Compile-time interface guard.
var _ theme.Store = (*ThemeStore)(nil)

// Migration is a single schema change applied inside a transaction.
// Migrations must be provided in ascending Version order.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the schema history for the themes database.
var migrations = []Migration{
	{
		Version:     1,
		Description: "create themes table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS themes (
					id          TEXT     PRIMARY KEY,
					kind        TEXT     NOT NULL,
					name        TEXT     NOT NULL,
					prompt      TEXT     NOT NULL,
					confidence  REAL     NOT NULL,
					payload     TEXT     NOT NULL,
					created_at  DATETIME NOT NULL
				)
			`)
			return err
		},
	},
	{
		Version:     2,
		Description: "index themes by creation time",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_themes_created_at ON themes(created_at)`)
			return err
		},
	},
}

// ThemeStore implements theme.Store backed by SQLite.
type ThemeStore struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex // Serialize migrations
	once   sync.Once  // Ensure _migrations table created once
}

// New opens (or creates) a SQLite database at the given path, applies
// recommended pragmas for WAL mode and performance, and runs pending
// migrations.
func New(path string, logger *zap.Logger) (*ThemeStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// Apply recommended pragmas (modernc.org/sqlite requires SQL statements, not DSN params).
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA cache_size=-20000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	s := &ThemeStore{db: db, logger: logger}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB returns the underlying *sql.DB for direct queries.
func (s *ThemeStore) DB() *sql.DB {
	return s.db
}

// Tx executes fn within a database transaction. The transaction is
// committed if fn returns nil, rolled back otherwise.
func (s *ThemeStore) Tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

// Save inserts or replaces an accepted theme. The full record is stored as
// a JSON payload; the indexed columns exist for listing and cleanup queries.
func (s *ThemeStore) Save(ctx context.Context, t *theme.AcceptedTheme) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("save theme: missing id")
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode theme %q: %w", t.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO themes (id, kind, name, prompt, confidence, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.Name, t.OriginalPrompt, t.Confidence, string(payload),
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save theme %q: %w", t.ID, err)
	}

	s.logger.Debug("theme saved", zap.String("theme_id", t.ID))
	return nil
}

// LoadAll returns every stored theme, oldest first.
func (s *ThemeStore) LoadAll(ctx context.Context) ([]*theme.AcceptedTheme, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM themes ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	defer rows.Close()

	var out []*theme.AcceptedTheme
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan theme row: %w", err)
		}
		var t theme.AcceptedTheme
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			return nil, fmt.Errorf("decode theme payload: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Delete removes a theme by ID. Deleting an unknown ID returns ErrNotFound.
func (s *ThemeStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM themes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete theme %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete theme %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete theme %q: %w", id, ErrNotFound)
	}

	s.logger.Debug("theme deleted", zap.String("theme_id", id))
	return nil
}

// Close closes the underlying database connection.
func (s *ThemeStore) Close() error {
	return s.db.Close()
}

// migrate runs pending migrations. Already-applied migrations (tracked in
// the _migrations table) are skipped.
func (s *ThemeStore) migrate(ctx context.Context) error {
	if err := s.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range migrations {
		applied, err := s.isMigrationApplied(ctx, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}
		s.logger.Info("migration applied",
			zap.Int("version", m.Version),
			zap.String("description", m.Description),
		)
	}

	return nil
}

// ensureMigrationsTable creates the migration tracking table if it doesn't
// already exist. Safe to call multiple times (uses sync.Once).
func (s *ThemeStore) ensureMigrationsTable(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		_, err = s.db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS _migrations (
				version     INTEGER  PRIMARY KEY,
				description TEXT     NOT NULL,
				applied_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`)
	})
	return err
}

func (s *ThemeStore) isMigrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM _migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check migration %d: %w", version, err)
	}
	return count > 0, nil
}

func (s *ThemeStore) applyMigration(ctx context.Context, m Migration) error {
	return s.Tx(ctx, func(tx *sql.Tx) error {
		if err := m.Up(tx); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO _migrations (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		)
		return err
	})
}
