package tui_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"shoplist/backend"
	"shoplist/internal/store"
	"shoplist/internal/tui"
)

// sendKeyAndWait sends a key message and waits briefly for processing.
// Uses a minimal sleep since teatest messages are processed asynchronously.
func sendKeyAndWait(tm *teatest.TestModel, key tea.KeyMsg) {
	tm.Send(key)
	time.Sleep(20 * time.Millisecond)
}

// sendRunesAndWait sends a rune key message and waits briefly for processing.
func sendRunesAndWait(tm *teatest.TestModel, runes []rune) {
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyRunes, Runes: runes})
}

// mockSession implements tui.Session for testing
type mockSession struct {
	mu     sync.Mutex
	lists  []string
	active string
	items  map[string][]backend.Item
	filter backend.FilterSpec
}

func newMockSession() *mockSession {
	base := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	mk := func(id, name string, qty int, offset int) backend.Item {
		return backend.Item{
			ID: id, Name: name, Qty: qty, Unit: "un",
			CreatedAt: base.Add(time.Duration(offset) * time.Minute),
		}
	}
	return &mockSession{
		lists:  []string{"shopping", "pharmacy"},
		active: "shopping",
		items: map[string][]backend.Item{
			"shopping": {
				mk("i1", "Milk", 3, 2),
				mk("i2", "Bread", 1, 1),
			},
			"pharmacy": {
				mk("i3", "Aspirin", 1, 0),
			},
		},
		filter: backend.DefaultFilter(),
	}
}

func (m *mockSession) Lists() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lists...)
}

func (m *mockSession) ActiveList() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *mockSession) SwitchList(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = name
	return nil
}

func (m *mockSession) Items() []backend.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]backend.Item, len(m.items[m.active]))
	copy(items, m.items[m.active])
	return items
}

func (m *mockSession) Filter() backend.FilterSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

func (m *mockSession) Add(_ context.Context, draft store.Draft) (*backend.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := backend.Item{
		ID: "new-item", Name: draft.Name, Qty: draft.Qty, Unit: "un",
		CreatedAt: time.Now(),
	}
	m.items[m.active] = append([]backend.Item{item}, m.items[m.active]...)
	return &item, nil
}

func (m *mockSession) Update(_ context.Context, id string, patch store.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[m.active]
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if patch.Name != nil {
			items[i].Name = *patch.Name
		}
		if patch.Qty != nil {
			items[i].Qty = backend.ClampQty(*patch.Qty)
		}
		if patch.Favorite != nil {
			items[i].Favorite = *patch.Favorite
		}
		if patch.Done != nil {
			items[i].Done = *patch.Done
		}
		break
	}
	return nil
}

func (m *mockSession) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[m.active]
	for i := range items {
		if items[i].ID == id {
			m.items[m.active] = append(items[:i], items[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockSession) ToggleDone(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[m.active]
	for i := range items {
		if items[i].ID == id {
			items[i].Done = !items[i].Done
			break
		}
	}
	return nil
}

func (m *mockSession) ChangeQty(_ context.Context, id string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[m.active]
	for i := range items {
		if items[i].ID == id {
			items[i].Qty = backend.ClampQty(items[i].Qty + delta)
			break
		}
	}
	return nil
}

var _ tui.Session = (*mockSession)(nil)

// readAll reads all output from a reader and returns as bytes
func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return out
}

// newTestModel starts a teatest model over a fresh mock session
func newTestModel(t *testing.T) (*teatest.TestModel, *mockSession) {
	t.Helper()
	sess := newMockSession()
	tm := teatest.NewTestModel(t, tui.New(sess), teatest.WithInitialTermSize(100, 30))
	return tm, sess
}

// quitAndWait quits the program and waits for it to finish
func quitAndWait(t *testing.T, tm *teatest.TestModel) {
	t.Helper()
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
}

// TestNarrowWindowRenders verifies rendering survives a terminal
// narrower than the pane chrome.
func TestNarrowWindowRenders(t *testing.T) {
	m := tui.New(newMockSession())

	model, _ := m.Update(tea.WindowSizeMsg{Width: 6, Height: 3})
	if model.View() == "" {
		t.Error("empty view for a narrow window")
	}

	model, _ = m.Update(tea.WindowSizeMsg{Width: 1, Height: 1})
	if model.View() == "" {
		t.Error("empty view for a single-cell window")
	}
}

func TestInitialRender(t *testing.T) {
	tm, _ := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk")) &&
			bytes.Contains(bts, []byte("Bread")) &&
			bytes.Contains(bts, []byte("shopping"))
	}, teatest.WithDuration(2*time.Second))

	quitAndWait(t, tm)
}

func TestToggleDone(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	// Cursor starts on the first visible item (newest first: Milk)
	sendRunesAndWait(tm, []rune{'c'})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("1/2 done"))
	}, teatest.WithDuration(2*time.Second))

	items := sess.Items()
	if !items[0].Done {
		t.Error("first item not done after toggle")
	}

	quitAndWait(t, tm)
}

func TestAddItem(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'a'})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Add Item"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune("Eggs"))
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Eggs"))
	}, teatest.WithDuration(2*time.Second))

	items := sess.Items()
	if len(items) != 3 || items[0].Name != "Eggs" {
		t.Errorf("items after add = %v", items)
	}

	quitAndWait(t, tm)
}

func TestDeleteItemWithConfirm(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'d'})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Delete selected item?"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'y'})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("0/1 done"))
	}, teatest.WithDuration(2*time.Second))

	if len(sess.Items()) != 1 {
		t.Errorf("items after delete = %v", sess.Items())
	}

	quitAndWait(t, tm)
}

// TestDeleteCancelled verifies answering no keeps the item
func TestDeleteCancelled(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'d'})
	sendRunesAndWait(tm, []rune{'n'})

	if len(sess.Items()) != 2 {
		t.Errorf("items after cancelled delete = %v", sess.Items())
	}

	quitAndWait(t, tm)
}

func TestAdjustQty(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'+'})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk 4 un"))
	}, teatest.WithDuration(2*time.Second))

	if got := sess.Items()[0].Qty; got != 4 {
		t.Errorf("qty after + = %d, want 4", got)
	}

	quitAndWait(t, tm)
}

func TestStatusCycle(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	// Mark the first item done, then cycle to the pending view
	sendRunesAndWait(tm, []rune{'c'})
	sendRunesAndWait(tm, []rune{'v'})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Items (pending)"))
	}, teatest.WithDuration(2*time.Second))

	if !sess.Items()[0].Done {
		t.Error("first item not done")
	}

	quitAndWait(t, tm)
}

func TestSearch(t *testing.T) {
	tm, _ := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'/'})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Search Items"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune("bread"))
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEnter})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Search: bread"))
	}, teatest.WithDuration(2*time.Second))

	quitAndWait(t, tm)
}

func TestSwitchListWithKeys(t *testing.T) {
	tm, sess := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	// Focus the list pane and move down to the second list
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyTab})
	sendRunesAndWait(tm, []rune{'j'})

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Aspirin"))
	}, teatest.WithDuration(2*time.Second))

	if sess.ActiveList() != "pharmacy" {
		t.Errorf("active list = %q, want pharmacy", sess.ActiveList())
	}

	quitAndWait(t, tm)
}

func TestHelpDialog(t *testing.T) {
	tm, _ := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	sendRunesAndWait(tm, []rune{'?'})
	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Key Bindings"))
	}, teatest.WithDuration(2*time.Second))

	// Any close key returns to the normal view
	sendKeyAndWait(tm, tea.KeyMsg{Type: tea.KeyEsc})

	quitAndWait(t, tm)
}

func TestQuitFinalOutput(t *testing.T) {
	tm, _ := newTestModel(t)

	teatest.WaitFor(t, tm.Output(), func(bts []byte) bool {
		return bytes.Contains(bts, []byte("Milk"))
	}, teatest.WithDuration(2*time.Second))

	quitAndWait(t, tm)

	out := string(readAll(t, tm.FinalOutput(t)))
	if strings.Contains(out, "panic") {
		t.Errorf("final output contains a panic:\n%s", out)
	}
}
