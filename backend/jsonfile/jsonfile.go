// Package jsonfile implements a Store backend that keeps each record
// as a JSON file under a data directory: one array file per list,
// plus separate registry and prefs records.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shoplist/backend"
)

// Config holds jsonfile backend configuration
type Config struct {
	Dir string // Data directory
}

// Backend implements backend.Store on top of plain JSON files
type Backend struct {
	dir string
}

// New creates a new jsonfile backend rooted at cfg.Dir
func New(cfg Config) (*Backend, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "shoplist-data"
	}

	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = filepath.Join(wd, dir)
	}

	return &Backend{dir: dir}, nil
}

// Close closes the backend
func (b *Backend) Close() error {
	return nil
}

// LoadItems reads a list's item array. An absent or malformed file
// yields an empty slice, never an error.
func (b *Backend) LoadItems(ctx context.Context, list string) ([]backend.Item, error) {
	data, err := os.ReadFile(b.listPath(list))
	if err != nil {
		return []backend.Item{}, nil
	}

	var items []backend.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return []backend.Item{}, nil
	}
	if items == nil {
		items = []backend.Item{}
	}
	return items, nil
}

// SaveItems overwrites a list's item array unconditionally
func (b *Backend) SaveItems(ctx context.Context, list string, items []backend.Item) error {
	if items == nil {
		items = []backend.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	return b.write(b.listPath(list), data)
}

// DeleteItems removes a list's stored record. Deleting an absent
// record is a no-op.
func (b *Backend) DeleteItems(ctx context.Context, list string) error {
	err := os.Remove(b.listPath(list))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete list record: %w", err)
	}
	return nil
}

// LoadPrefs reads the preferences record. Returns nil when the record
// is absent or malformed.
func (b *Backend) LoadPrefs(ctx context.Context) (*backend.Prefs, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, "prefs.json"))
	if err != nil {
		return nil, nil
	}

	var prefs backend.Prefs
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, nil
	}
	return &prefs, nil
}

// SavePrefs overwrites the preferences record
func (b *Backend) SavePrefs(ctx context.Context, prefs *backend.Prefs) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode prefs: %w", err)
	}
	return b.write(filepath.Join(b.dir, "prefs.json"), data)
}

// LoadRegistry reads the list registry record. Returns nil when the
// record is absent or malformed.
func (b *Backend) LoadRegistry(ctx context.Context) (*backend.Registry, error) {
	data, err := os.ReadFile(filepath.Join(b.dir, "registry.json"))
	if err != nil {
		return nil, nil
	}

	var reg backend.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, nil
	}
	return &reg, nil
}

// SaveRegistry overwrites the list registry record
func (b *Backend) SaveRegistry(ctx context.Context, reg *backend.Registry) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	return b.write(filepath.Join(b.dir, "registry.json"), data)
}

// listPath returns the file path holding a list's item array
func (b *Backend) listPath(list string) string {
	return filepath.Join(b.dir, "lists", slug(list)+".json")
}

// write ensures the parent directory exists and writes the file
func (b *Backend) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// slug converts a list name into a stable filename token. Lowercase
// letters, digits and '-' pass through; every other byte is escaped
// as '_' plus its hex value ('_' itself included), so distinct
// registry names never share a file. Registry names are
// case-insensitively unique, so lowercasing cannot collide.
func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "default"
	}
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-':
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, "_%02x", c)
		}
	}
	return sb.String()
}

// Verify interface compliance at compile time
var _ backend.Store = (*Backend)(nil)
