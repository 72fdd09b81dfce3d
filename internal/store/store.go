// Package store implements the item store and list registry: the
// in-memory collection of the active list plus its mutation
// operations, persisted on every change.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shoplist/backend"
)

// DefaultList is the list registered on first run
const DefaultList = "shopping"

// Draft holds user input for a new item, before validation
type Draft struct {
	Name      string
	Qty       int
	Unit      string
	Category  string
	Recurring bool
	Favorite  bool
	Meta      map[string]string
}

// Patch holds a partial item update; nil fields are left untouched
type Patch struct {
	Name      *string
	Qty       *int
	Unit      *string
	Category  *string
	Recurring *bool
	Favorite  *bool
	Done      *bool
}

// Session owns the active list's items, the list registry, and the
// user preferences. Every mutating operation persists before the
// in-memory state is swapped, so a failed write leaves the session
// unchanged and retryable.
type Session struct {
	store       backend.Store
	reg         backend.Registry
	items       []backend.Item
	prefs       backend.Prefs
	defaultUnit string
	now         func() time.Time
}

// Option is a functional option for Open
type Option func(*Session)

// WithDefaultUnit sets the unit assigned to drafts without one
func WithDefaultUnit(unit string) Option {
	return func(s *Session) {
		if unit != "" {
			s.defaultUnit = unit
		}
	}
}

// WithClock sets the timestamp source (used by tests)
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Open hydrates a session from storage. A missing registry record is
// initialized with the default list; missing prefs fall back to the
// default filter.
func Open(ctx context.Context, st backend.Store, opts ...Option) (*Session, error) {
	s := &Session{
		store:       st,
		defaultUnit: backend.DefaultUnit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	reg, err := st.LoadRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	if reg == nil || len(reg.Lists) == 0 {
		reg = &backend.Registry{Lists: []string{DefaultList}, Active: DefaultList}
		if err := st.SaveRegistry(ctx, reg); err != nil {
			return nil, &PersistenceError{Op: "registry", Err: err}
		}
	}
	if reg.Find(reg.Active) == "" {
		reg.Active = reg.Lists[0]
	}
	s.reg = *reg

	prefs, err := st.LoadPrefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load prefs: %w", err)
	}
	if prefs == nil {
		prefs = &backend.Prefs{Filter: backend.DefaultFilter()}
	}
	s.prefs = *prefs

	items, err := st.LoadItems(ctx, s.reg.Active)
	if err != nil {
		return nil, fmt.Errorf("failed to load list %q: %w", s.reg.Active, err)
	}
	s.items = items

	return s, nil
}

// Items returns a copy of the active list's items
func (s *Session) Items() []backend.Item {
	items := make([]backend.Item, len(s.items))
	copy(items, s.items)
	return items
}

// ActiveList returns the active list name
func (s *Session) ActiveList() string {
	return s.reg.Active
}

// Lists returns the tracked list names
func (s *Session) Lists() []string {
	lists := make([]string, len(s.reg.Lists))
	copy(lists, s.reg.Lists)
	return lists
}

// Filter returns the persisted filter specification
func (s *Session) Filter() backend.FilterSpec {
	return s.prefs.Filter
}

// SetFilter persists a new filter specification
func (s *Session) SetFilter(ctx context.Context, spec backend.FilterSpec) error {
	prefs := backend.Prefs{Filter: spec}
	if err := s.store.SavePrefs(ctx, &prefs); err != nil {
		return &PersistenceError{Op: "prefs", Err: err}
	}
	s.prefs = prefs
	return nil
}

// Add validates a draft, assigns id and timestamps, clamps the
// quantity, inserts at the head of the active list and persists.
func (s *Session) Add(ctx context.Context, draft Draft) (*backend.Item, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	unit := strings.TrimSpace(draft.Unit)
	if unit == "" {
		unit = s.defaultUnit
	}

	now := s.now()
	item := backend.Item{
		ID:        backend.GenerateID(),
		Name:      name,
		Qty:       backend.ClampQty(draft.Qty),
		Unit:      unit,
		Category:  strings.TrimSpace(draft.Category),
		Recurring: draft.Recurring,
		Favorite:  draft.Favorite,
		CreatedAt: now,
		UpdatedAt: now,
		Meta:      draft.Meta,
	}

	items := make([]backend.Item, 0, len(s.items)+1)
	items = append(items, item)
	items = append(items, s.items...)

	if err := s.persist(ctx, items); err != nil {
		return nil, err
	}
	return &item, nil
}

// Update merges a patch into the item matching id and bumps its
// updated timestamp. An unknown id is a silent no-op.
func (s *Session) Update(ctx context.Context, id string, patch Patch) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	items := s.copyItems()
	it := &items[idx]

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return ErrEmptyName
		}
		it.Name = name
	}
	if patch.Qty != nil {
		it.Qty = backend.ClampQty(*patch.Qty)
	}
	if patch.Unit != nil && strings.TrimSpace(*patch.Unit) != "" {
		it.Unit = strings.TrimSpace(*patch.Unit)
	}
	if patch.Category != nil {
		it.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Recurring != nil {
		it.Recurring = *patch.Recurring
	}
	if patch.Favorite != nil {
		it.Favorite = *patch.Favorite
	}
	if patch.Done != nil {
		it.Done = *patch.Done
	}
	it.UpdatedAt = s.now()

	return s.persist(ctx, items)
}

// Remove deletes the item matching id. An unknown id is a silent no-op.
func (s *Session) Remove(ctx context.Context, id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	items := make([]backend.Item, 0, len(s.items)-1)
	items = append(items, s.items[:idx]...)
	items = append(items, s.items[idx+1:]...)

	return s.persist(ctx, items)
}

// ToggleDone flips the done flag of the item matching id
func (s *Session) ToggleDone(ctx context.Context, id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	done := !s.items[idx].Done
	return s.Update(ctx, id, Patch{Done: &done})
}

// ChangeQty adjusts an item's quantity by delta, re-clamping into
// the valid range
func (s *Session) ChangeQty(ctx context.Context, id string, delta int) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}
	qty := backend.ClampQty(s.items[idx].Qty + delta)
	return s.Update(ctx, id, Patch{Qty: &qty})
}

// MarkAll sets the done flag on every item in one pass and persists once
func (s *Session) MarkAll(ctx context.Context, done bool) error {
	items := s.copyItems()
	now := s.now()
	for i := range items {
		items[i].Done = done
		items[i].UpdatedAt = now
	}
	return s.persist(ctx, items)
}

// ClearDone removes every item with done set and returns the count
// removed. Pending items keep their original order.
func (s *Session) ClearDone(ctx context.Context) (int, error) {
	items := make([]backend.Item, 0, len(s.items))
	for _, it := range s.items {
		if !it.Done {
			items = append(items, it)
		}
	}

	removed := len(s.items) - len(items)
	if removed == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, items); err != nil {
		return 0, err
	}
	return removed, nil
}

// CreateList registers a new empty list and makes it active
func (s *Session) CreateList(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyListName
	}
	if s.reg.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateList, name)
	}

	reg := s.copyRegistry()
	reg.Lists = append(reg.Lists, name)
	reg.Active = name

	if err := s.store.SaveRegistry(ctx, &reg); err != nil {
		return &PersistenceError{Op: "registry", Err: err}
	}
	s.reg = reg
	s.items = []backend.Item{}
	return nil
}

// SwitchList makes a tracked list active and rehydrates its items
func (s *Session) SwitchList(ctx context.Context, name string) error {
	tracked := s.reg.Find(name)
	if tracked == "" {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}

	reg := s.copyRegistry()
	reg.Active = tracked

	if err := s.store.SaveRegistry(ctx, &reg); err != nil {
		return &PersistenceError{Op: "registry", Err: err}
	}

	items, err := s.store.LoadItems(ctx, tracked)
	if err != nil {
		return fmt.Errorf("failed to load list %q: %w", tracked, err)
	}
	s.reg = reg
	s.items = items
	return nil
}

// DeleteList removes a tracked list and its stored items. Deleting
// the active list switches to the first remaining one; deleting the
// last list re-registers the default list.
func (s *Session) DeleteList(ctx context.Context, name string) error {
	tracked := s.reg.Find(name)
	if tracked == "" {
		return fmt.Errorf("%w: %s", ErrListNotFound, name)
	}

	reg := backend.Registry{}
	for _, l := range s.reg.Lists {
		if l != tracked {
			reg.Lists = append(reg.Lists, l)
		}
	}
	if len(reg.Lists) == 0 {
		reg.Lists = []string{DefaultList}
	}
	reg.Active = s.reg.Active
	if tracked == s.reg.Active {
		reg.Active = reg.Lists[0]
	}

	if err := s.store.SaveRegistry(ctx, &reg); err != nil {
		return &PersistenceError{Op: "registry", Err: err}
	}
	if err := s.store.DeleteItems(ctx, tracked); err != nil {
		return &PersistenceError{Op: "list " + tracked, Err: err}
	}

	switched := reg.Active != s.reg.Active
	s.reg = reg
	if switched {
		items, err := s.store.LoadItems(ctx, reg.Active)
		if err != nil {
			return fmt.Errorf("failed to load list %q: %w", reg.Active, err)
		}
		s.items = items
	}
	return nil
}

// persist writes the item collection and swaps it in on success only
func (s *Session) persist(ctx context.Context, items []backend.Item) error {
	if err := s.store.SaveItems(ctx, s.reg.Active, items); err != nil {
		return &PersistenceError{Op: "list " + s.reg.Active, Err: err}
	}
	s.items = items
	return nil
}

func (s *Session) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) copyItems() []backend.Item {
	items := make([]backend.Item, len(s.items))
	copy(items, s.items)
	return items
}

func (s *Session) copyRegistry() backend.Registry {
	reg := backend.Registry{Active: s.reg.Active}
	reg.Lists = make([]string, len(s.reg.Lists))
	copy(reg.Lists, s.reg.Lists)
	return reg
}
