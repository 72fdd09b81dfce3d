package sqlite

import (
	"context"
	"testing"
	"time"

	"shoplist/backend"
)

// mustNewBackend creates an in-memory backend and registers cleanup
func mustNewBackend(t *testing.T) (*Backend, context.Context) {
	t.Helper()
	b, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, context.Background()
}

// mustSaveItems saves a list's items and fails the test on error
func mustSaveItems(t *testing.T, b *Backend, ctx context.Context, list string, items []backend.Item) {
	t.Helper()
	if err := b.SaveItems(ctx, list, items); err != nil {
		t.Fatalf("SaveItems error: %v", err)
	}
}

// mustLoadItems loads a list's items and fails the test on error
func mustLoadItems(t *testing.T, b *Backend, ctx context.Context, list string) []backend.Item {
	t.Helper()
	items, err := b.LoadItems(ctx, list)
	if err != nil {
		t.Fatalf("LoadItems error: %v", err)
	}
	return items
}

func sampleItem(name string) backend.Item {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	return backend.Item{
		ID:        backend.GenerateID(),
		Name:      name,
		Qty:       3,
		Unit:      "L",
		Category:  "dairy",
		Favorite:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestNewBackend verifies New opens a database and builds the schema.
func TestNewBackend(t *testing.T) {
	b, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) error: %v", err)
	}
	defer func() { _ = b.Close() }()

	if b == nil {
		t.Fatal("New(:memory:) returned nil backend")
	}
}

// TestBackendImplementsInterface verifies Backend implements Store.
func TestBackendImplementsInterface(t *testing.T) {
	var _ backend.Store = (*Backend)(nil)
}

func TestSaveAndLoadItems(t *testing.T) {
	b, ctx := mustNewBackend(t)

	want := sampleItem("Milk")
	mustSaveItems(t, b, ctx, "shopping", []backend.Item{want})

	items := mustLoadItems(t, b, ctx, "shopping")
	if len(items) != 1 {
		t.Fatalf("LoadItems returned %d items, want 1", len(items))
	}
	got := items[0]
	if got.ID != want.ID || got.Name != "Milk" || got.Qty != 3 || got.Unit != "L" {
		t.Errorf("loaded item = %+v, want %+v", got, want)
	}
	if got.Category != "dairy" || !got.Favorite || got.Recurring || got.Done {
		t.Errorf("loaded flags = %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Errorf("timestamps = %v/%v, want %v", got.CreatedAt, got.UpdatedAt, want.CreatedAt)
	}
}

// TestLoadItemsPreservesOrder verifies items come back in slice
// order, not insertion-id order.
func TestLoadItemsPreservesOrder(t *testing.T) {
	b, ctx := mustNewBackend(t)

	items := []backend.Item{sampleItem("Eggs"), sampleItem("Bread"), sampleItem("Milk")}
	mustSaveItems(t, b, ctx, "shopping", items)

	loaded := mustLoadItems(t, b, ctx, "shopping")
	if len(loaded) != 3 {
		t.Fatalf("LoadItems returned %d items, want 3", len(loaded))
	}
	for i, want := range []string{"Eggs", "Bread", "Milk"} {
		if loaded[i].Name != want {
			t.Errorf("loaded[%d].Name = %q, want %q", i, loaded[i].Name, want)
		}
	}
}

// TestSaveItemsReplaces verifies each save fully replaces the list
func TestSaveItemsReplaces(t *testing.T) {
	b, ctx := mustNewBackend(t)

	mustSaveItems(t, b, ctx, "shopping", []backend.Item{sampleItem("Milk"), sampleItem("Eggs")})
	mustSaveItems(t, b, ctx, "shopping", []backend.Item{sampleItem("Bread")})

	loaded := mustLoadItems(t, b, ctx, "shopping")
	if len(loaded) != 1 || loaded[0].Name != "Bread" {
		t.Errorf("loaded = %v, want [Bread]", loaded)
	}
}

func TestLoadItemsUnknownList(t *testing.T) {
	b, ctx := mustNewBackend(t)

	items := mustLoadItems(t, b, ctx, "nope")
	if items == nil || len(items) != 0 {
		t.Errorf("LoadItems(unknown) = %v, want empty slice", items)
	}
}

func TestDeleteItems(t *testing.T) {
	b, ctx := mustNewBackend(t)

	mustSaveItems(t, b, ctx, "shopping", []backend.Item{sampleItem("Milk")})
	mustSaveItems(t, b, ctx, "pharmacy", []backend.Item{sampleItem("Aspirin")})

	if err := b.DeleteItems(ctx, "shopping"); err != nil {
		t.Fatalf("DeleteItems error: %v", err)
	}

	if items := mustLoadItems(t, b, ctx, "shopping"); len(items) != 0 {
		t.Errorf("shopping items after delete = %v", items)
	}
	// Other lists are untouched
	if items := mustLoadItems(t, b, ctx, "pharmacy"); len(items) != 1 {
		t.Errorf("pharmacy items = %v, want 1 item", items)
	}
}

func TestItemMetaRoundTrip(t *testing.T) {
	b, ctx := mustNewBackend(t)

	it := sampleItem("Milk")
	it.Meta = map[string]string{"brand": "acme", "aisle": "7"}
	mustSaveItems(t, b, ctx, "shopping", []backend.Item{it})

	loaded := mustLoadItems(t, b, ctx, "shopping")
	if len(loaded) != 1 {
		t.Fatalf("LoadItems returned %d items, want 1", len(loaded))
	}
	if loaded[0].Meta["brand"] != "acme" || loaded[0].Meta["aisle"] != "7" {
		t.Errorf("loaded meta = %v", loaded[0].Meta)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	b, ctx := mustNewBackend(t)

	prefs, err := b.LoadPrefs(ctx)
	if err != nil {
		t.Fatalf("LoadPrefs error: %v", err)
	}
	if prefs != nil {
		t.Errorf("LoadPrefs(absent) = %+v, want nil", prefs)
	}

	want := backend.Prefs{Filter: backend.FilterSpec{
		Category: "dairy",
		Status:   backend.StatusDone,
		Sort:     backend.SortCategoryAsc,
	}}
	if err := b.SavePrefs(ctx, &want); err != nil {
		t.Fatalf("SavePrefs error: %v", err)
	}

	prefs, err = b.LoadPrefs(ctx)
	if err != nil {
		t.Fatalf("LoadPrefs error: %v", err)
	}
	if prefs == nil || *prefs != want {
		t.Errorf("LoadPrefs = %+v, want %+v", prefs, want)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	b, ctx := mustNewBackend(t)

	reg, err := b.LoadRegistry(ctx)
	if err != nil {
		t.Fatalf("LoadRegistry error: %v", err)
	}
	if reg != nil {
		t.Errorf("LoadRegistry(absent) = %+v, want nil", reg)
	}

	want := backend.Registry{Lists: []string{"shopping", "pharmacy"}, Active: "shopping"}
	if err := b.SaveRegistry(ctx, &want); err != nil {
		t.Fatalf("SaveRegistry error: %v", err)
	}

	// Overwrite and read back the latest record
	want.Active = "pharmacy"
	if err := b.SaveRegistry(ctx, &want); err != nil {
		t.Fatalf("SaveRegistry error: %v", err)
	}

	reg, err = b.LoadRegistry(ctx)
	if err != nil {
		t.Fatalf("LoadRegistry error: %v", err)
	}
	if reg == nil || reg.Active != "pharmacy" || len(reg.Lists) != 2 {
		t.Errorf("LoadRegistry = %+v, want %+v", reg, want)
	}
}

// TestMalformedRecordsFailSoft verifies corrupt stored records load
// as nil without error.
func TestMalformedRecordsFailSoft(t *testing.T) {
	b, ctx := mustNewBackend(t)

	for _, key := range []string{"prefs", "registry"} {
		if _, err := b.db.ExecContext(ctx,
			"INSERT INTO records (key, value) VALUES (?, ?)", key, "{oops"); err != nil {
			t.Fatalf("seed malformed record: %v", err)
		}
	}

	prefs, err := b.LoadPrefs(ctx)
	if err != nil || prefs != nil {
		t.Errorf("LoadPrefs(malformed) = %+v, %v, want nil, nil", prefs, err)
	}
	reg, err := b.LoadRegistry(ctx)
	if err != nil || reg != nil {
		t.Errorf("LoadRegistry(malformed) = %+v, %v, want nil, nil", reg, err)
	}
}
