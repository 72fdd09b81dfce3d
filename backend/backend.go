package backend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Quantity bounds for a shopping-list item.
const (
	QtyMin = 1
	QtyMax = 9999
)

// DefaultUnit is the canonical unit token used when none is given.
const DefaultUnit = "un"

// Item represents a single shopping-list entry
type Item struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Qty       int               `json:"qty"`
	Unit      string            `json:"unit"`
	Category  string            `json:"category,omitempty"`
	Recurring bool              `json:"recurring"`
	Favorite  bool              `json:"favorite"`
	Done      bool              `json:"done"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// Status filter values
const (
	StatusAll       = "all"
	StatusPending   = "pending"
	StatusDone      = "done"
	StatusFavorites = "favorites"
)

// Sort mode values
const (
	SortCreatedDesc = "created_desc"
	SortCreatedAsc  = "created_asc"
	SortNameAsc     = "name_asc"
	SortNameDesc    = "name_desc"
	SortCategoryAsc = "category_asc"
)

// FilterSpec describes the current view: text query, category,
// status filter, and sort mode. It is persisted as part of Prefs.
type FilterSpec struct {
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"category"`
	Status   string `json:"status" yaml:"status"`
	Sort     string `json:"sort" yaml:"sort"`
}

// DefaultFilter returns the filter used when no prefs are stored.
func DefaultFilter() FilterSpec {
	return FilterSpec{Status: StatusAll, Sort: SortCreatedDesc}
}

// Prefs is the persisted user preferences record
type Prefs struct {
	Filter FilterSpec `json:"filter"`
}

// Registry tracks which named lists exist and which one is active.
// It is an explicit persisted record; list membership is never
// re-derived by scanning storage keys.
type Registry struct {
	Lists  []string `json:"lists"`
	Active string   `json:"active"`
}

// Has reports whether a list name is tracked (case-insensitive)
func (r *Registry) Has(name string) bool {
	return r.Find(name) != ""
}

// Find returns the tracked spelling of name, or "" if untracked.
func (r *Registry) Find(name string) string {
	for _, l := range r.Lists {
		if strings.EqualFold(l, name) {
			return l
		}
	}
	return ""
}

// Store is the persistence adapter for shopping lists.
//
// Load operations fail soft: an absent or malformed stored record
// yields an empty result and a nil error. Save operations overwrite
// unconditionally (last-write-wins) and report write failures.
type Store interface {
	// Item collections, one JSON-array-shaped record per list
	LoadItems(ctx context.Context, list string) ([]Item, error)
	SaveItems(ctx context.Context, list string, items []Item) error
	DeleteItems(ctx context.Context, list string) error

	// Preferences record
	LoadPrefs(ctx context.Context) (*Prefs, error)
	SavePrefs(ctx context.Context, prefs *Prefs) error

	// List registry record
	LoadRegistry(ctx context.Context) (*Registry, error)
	SaveRegistry(ctx context.Context, reg *Registry) error

	Close() error
}

// ClampQty clamps a quantity into [QtyMin, QtyMax].
func ClampQty(n int) int {
	if n < QtyMin {
		return QtyMin
	}
	if n > QtyMax {
		return QtyMax
	}
	return n
}

// GenerateID generates a unique identifier using UUID v4.
// Item IDs are assigned once at creation and never change.
func GenerateID() string {
	return uuid.New().String()
}
