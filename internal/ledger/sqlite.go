package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is the file-backed Store used in production. Values are stored as
// JSON text in a single (namespace, key) table. The per-namespace mutex is
// held across Update's read-modify-write cycle; the database itself only
// provides durability.
type SQLite struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[Namespace]*sync.Mutex
}

// NewSQLite opens (or creates) the ledger database at dbPath.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run ledger migrations: %w", err)
	}

	return &SQLite{
		db:    db,
		locks: make(map[Namespace]*sync.Mutex),
	}, nil
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS ledger (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (namespace, key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_namespace ON ledger(namespace)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

func (s *SQLite) lock(ns Namespace) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[ns]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ns] = l
	}
	return l
}

func (s *SQLite) read(ctx context.Context, ns Namespace, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM ledger WHERE namespace = ? AND key = ?
	`, string(ns), key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (s *SQLite) write(ctx context.Context, ns Namespace, key string, raw []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ledger (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, string(ns), key, string(raw), time.Now().UTC())
	return err
}

func (s *SQLite) Get(ctx context.Context, ns Namespace, key string, out any) (bool, error) {
	l := s.lock(ns)
	l.Lock()
	defer l.Unlock()

	raw, ok, err := s.read(ctx, ns, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (s *SQLite) Set(ctx context.Context, ns Namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}

	l := s.lock(ns)
	l.Lock()
	defer l.Unlock()
	return s.write(ctx, ns, key, raw)
}

func (s *SQLite) Update(ctx context.Context, ns Namespace, key string, fn func(raw []byte) ([]byte, error)) error {
	l := s.lock(ns)
	l.Lock()
	defer l.Unlock()

	prev, _, err := s.read(ctx, ns, key)
	if err != nil {
		return err
	}
	next, err := fn(prev)
	if err != nil {
		return err
	}
	if next == nil {
		_, err := s.db.ExecContext(ctx, `DELETE FROM ledger WHERE namespace = ? AND key = ?`, string(ns), key)
		return err
	}
	return s.write(ctx, ns, key, next)
}

func (s *SQLite) Delete(ctx context.Context, ns Namespace, key string) error {
	l := s.lock(ns)
	l.Lock()
	defer l.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM ledger WHERE namespace = ? AND key = ?`, string(ns), key)
	return err
}

func (s *SQLite) ListKeys(ctx context.Context, ns Namespace) ([]string, error) {
	l := s.lock(ns)
	l.Lock()
	defer l.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key FROM ledger WHERE namespace = ?`, string(ns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
