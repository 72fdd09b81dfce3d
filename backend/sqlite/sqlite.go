package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
	"shoplist/backend"
)

// Record keys for the key-value table
const (
	prefsKey    = "prefs"
	registryKey = "registry"
)

// Backend implements backend.Store using SQLite
type Backend struct {
	db *sql.DB
}

// New creates a new SQLite backend and initializes the database schema
func New(path string) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	b := &Backend{db: db}
	if err := b.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return b, nil
}

// initSchema creates the database tables if they don't exist
func (b *Backend) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS items (
			id TEXT NOT NULL,
			list_name TEXT NOT NULL,
			pos INTEGER NOT NULL,
			name TEXT NOT NULL,
			qty INTEGER NOT NULL DEFAULT 1,
			unit TEXT NOT NULL DEFAULT 'un',
			category TEXT DEFAULT '',
			recurring INTEGER NOT NULL DEFAULT 0,
			favorite INTEGER NOT NULL DEFAULT 0,
			done INTEGER NOT NULL DEFAULT 0,
			created TEXT NOT NULL,
			modified TEXT NOT NULL,
			meta TEXT DEFAULT '',
			PRIMARY KEY (list_name, id)
		);

		CREATE TABLE IF NOT EXISTS records (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_list_name ON items(list_name);
	`

	_, err := b.db.Exec(schema)
	return err
}

// LoadItems returns a list's items in stored order. An unknown list
// yields an empty slice.
func (b *Backend) LoadItems(ctx context.Context, list string) ([]backend.Item, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT id, name, qty, unit, category, recurring, favorite, done, created, modified, meta
		 FROM items WHERE list_name = ? ORDER BY pos`,
		list,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []backend.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}

	return items, rows.Err()
}

// SaveItems replaces a list's stored items in one transaction,
// preserving slice order (last-write-wins, no versioning).
func (b *Backend) SaveItems(ctx context.Context, list string, items []backend.Item) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE list_name = ?", list); err != nil {
		return err
	}

	for pos, it := range items {
		metaStr := ""
		if len(it.Meta) > 0 {
			data, err := json.Marshal(it.Meta)
			if err != nil {
				return err
			}
			metaStr = string(data)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (id, list_name, pos, name, qty, unit, category, recurring, favorite, done, created, modified, meta)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, list, pos, it.Name, it.Qty, it.Unit, it.Category,
			boolToInt(it.Recurring), boolToInt(it.Favorite), boolToInt(it.Done),
			it.CreatedAt.Format(time.RFC3339Nano), it.UpdatedAt.Format(time.RFC3339Nano), metaStr,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteItems removes all stored items of a list
func (b *Backend) DeleteItems(ctx context.Context, list string) error {
	_, err := b.db.ExecContext(ctx, "DELETE FROM items WHERE list_name = ?", list)
	return err
}

// LoadPrefs reads the preferences record. Returns nil when the record
// is absent or malformed.
func (b *Backend) LoadPrefs(ctx context.Context) (*backend.Prefs, error) {
	value, ok, err := b.loadRecord(ctx, prefsKey)
	if err != nil || !ok {
		return nil, err
	}

	var prefs backend.Prefs
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return nil, nil
	}
	return &prefs, nil
}

// SavePrefs overwrites the preferences record
func (b *Backend) SavePrefs(ctx context.Context, prefs *backend.Prefs) error {
	return b.saveRecord(ctx, prefsKey, prefs)
}

// LoadRegistry reads the list registry record. Returns nil when the
// record is absent or malformed.
func (b *Backend) LoadRegistry(ctx context.Context) (*backend.Registry, error) {
	value, ok, err := b.loadRecord(ctx, registryKey)
	if err != nil || !ok {
		return nil, err
	}

	var reg backend.Registry
	if err := json.Unmarshal([]byte(value), &reg); err != nil {
		return nil, nil
	}
	return &reg, nil
}

// SaveRegistry overwrites the list registry record
func (b *Backend) SaveRegistry(ctx context.Context, reg *backend.Registry) error {
	return b.saveRecord(ctx, registryKey, reg)
}

// Close closes the database connection
func (b *Backend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// loadRecord reads a raw record value by key
func (b *Backend) loadRecord(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx, "SELECT value FROM records WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// saveRecord upserts a JSON-encoded record value by key
func (b *Backend) saveRecord(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx,
		"INSERT INTO records (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, string(data),
	)
	return err
}

// scanner is an interface satisfied by both *sql.Rows and *sql.Row
type scanner interface {
	Scan(dest ...any) error
}

// scanItem scans an item from any scanner
func scanItem(s scanner) (*backend.Item, error) {
	var it backend.Item
	var recurring, favorite, done int
	var createdStr, modifiedStr string
	var metaStr sql.NullString

	err := s.Scan(
		&it.ID, &it.Name, &it.Qty, &it.Unit, &it.Category,
		&recurring, &favorite, &done, &createdStr, &modifiedStr, &metaStr,
	)
	if err != nil {
		return nil, err
	}

	it.Recurring = recurring != 0
	it.Favorite = favorite != 0
	it.Done = done != 0
	it.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	it.UpdatedAt, _ = time.Parse(time.RFC3339Nano, modifiedStr)
	if metaStr.Valid && metaStr.String != "" {
		// Meta is best-effort adapter data; a bad blob is dropped
		_ = json.Unmarshal([]byte(metaStr.String), &it.Meta)
	}
	return &it, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Verify interface compliance at compile time
var _ backend.Store = (*Backend)(nil)
