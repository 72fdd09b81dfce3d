// Package tui provides a terminal user interface for shopping list
// management.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"shoplist/backend"
	"shoplist/internal/store"
	"shoplist/internal/view"
)

// Session is the subset of store.Session the TUI drives
type Session interface {
	Lists() []string
	ActiveList() string
	SwitchList(ctx context.Context, name string) error
	Items() []backend.Item
	Filter() backend.FilterSpec
	Add(ctx context.Context, draft store.Draft) (*backend.Item, error)
	Update(ctx context.Context, id string, patch store.Patch) error
	Remove(ctx context.Context, id string) error
	ToggleDone(ctx context.Context, id string) error
	ChangeQty(ctx context.Context, id string, delta int) error
}

// Focus indicates which pane has focus
type Focus int

const (
	FocusLists Focus = iota
	FocusItems
)

// Mode indicates the current input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAdd
	ModeEdit
	ModeSearch
	ModeHelp
	ModeConfirmDelete
)

// statusCycle is the order 'v' steps through
var statusCycle = []string{
	backend.StatusAll,
	backend.StatusPending,
	backend.StatusDone,
	backend.StatusFavorites,
}

// Model represents the TUI state
type Model struct {
	session Session
	ctx     context.Context

	// Data
	lists   []string
	items   []backend.Item
	visible []backend.Item // filtered and sorted projection of items

	// Selection
	listCursor int
	itemCursor int
	focus      Focus

	// Mode and input
	mode      Mode
	textInput textinput.Model
	search    string
	status    string
	sort      string

	// UI dimensions
	width  int
	height int

	// Styles
	listPaneStyle  lipgloss.Style
	itemPaneStyle  lipgloss.Style
	selectedStyle  lipgloss.Style
	doneStyle      lipgloss.Style
	favoriteStyle  lipgloss.Style
	helpStyle      lipgloss.Style
	dialogStyle    lipgloss.Style
	statusBarStyle lipgloss.Style
}

// Message types
type itemsChangedMsg struct {
	items []backend.Item
}

type listSwitchedMsg struct {
	items []backend.Item
}

type errMsg struct {
	err error
}

// New creates a new TUI model
func New(s Session) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter text..."
	ti.CharLimit = 256

	spec := s.Filter()

	return &Model{
		session:   s,
		ctx:       context.Background(),
		textInput: ti,
		focus:     FocusItems,
		mode:      ModeNormal,
		lists:     s.Lists(),
		items:     s.Items(),
		search:    spec.Text,
		status:    spec.Status,
		sort:      spec.Sort,
		listPaneStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		itemPaneStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		doneStyle: lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("240")),
		favoriteStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		dialogStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		statusBarStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
	}
}

// Init initializes the TUI
func (m *Model) Init() tea.Cmd {
	m.applyView()
	// cursor starts on the active list
	for i, name := range m.lists {
		if name == m.session.ActiveList() {
			m.listCursor = i
			break
		}
	}
	return nil
}

func (m *Model) spec() backend.FilterSpec {
	return backend.FilterSpec{
		Text:   m.search,
		Status: m.status,
		Sort:   m.sort,
	}
}

func (m *Model) applyView() {
	m.visible = view.Apply(m.items, m.spec())
	if m.itemCursor >= len(m.visible) {
		m.itemCursor = 0
	}
}

func (m *Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return itemsChangedMsg{items: m.session.Items()}
	}
}

func (m *Model) addItem(name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.session.Add(m.ctx, store.Draft{Name: name, Qty: 1}); err != nil {
			return errMsg{err}
		}
		return itemsChangedMsg{items: m.session.Items()}
	}
}

func (m *Model) renameItem(id, name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.session.Update(m.ctx, id, store.Patch{Name: &name}); err != nil {
			return errMsg{err}
		}
		return itemsChangedMsg{items: m.session.Items()}
	}
}

func (m *Model) switchList(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.session.SwitchList(m.ctx, name); err != nil {
			return errMsg{err}
		}
		return listSwitchedMsg{items: m.session.Items()}
	}
}

// selected returns the item under the cursor, or nil
func (m *Model) selected() *backend.Item {
	if len(m.visible) == 0 || m.itemCursor >= len(m.visible) {
		return nil
	}
	return &m.visible[m.itemCursor]
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case itemsChangedMsg:
		m.items = msg.items
		m.applyView()
		return m, nil

	case listSwitchedMsg:
		m.items = msg.items
		m.itemCursor = 0
		m.applyView()
		return m, nil

	case errMsg:
		// Mutations fail soft in the TUI; state stays as it was
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeAdd:
			return m.handleAddMode(msg)
		case ModeEdit:
			return m.handleEditMode(msg)
		case ModeSearch:
			return m.handleSearchMode(msg)
		case ModeHelp:
			return m.handleHelpMode(msg)
		case ModeConfirmDelete:
			return m.handleConfirmDeleteMode(msg)
		}

		// Normal mode key handling
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "tab":
			if m.focus == FocusLists {
				m.focus = FocusItems
			} else {
				m.focus = FocusLists
			}
			return m, nil

		case "up", "k":
			if m.focus == FocusLists {
				if m.listCursor > 0 {
					m.listCursor--
					return m, m.switchList(m.lists[m.listCursor])
				}
			} else {
				if m.itemCursor > 0 {
					m.itemCursor--
				}
			}
			return m, nil

		case "down", "j":
			if m.focus == FocusLists {
				if m.listCursor < len(m.lists)-1 {
					m.listCursor++
					return m, m.switchList(m.lists[m.listCursor])
				}
			} else {
				if m.itemCursor < len(m.visible)-1 {
					m.itemCursor++
				}
			}
			return m, nil

		case "a":
			m.mode = ModeAdd
			m.textInput.Reset()
			m.textInput.Placeholder = "New item name..."
			m.textInput.Focus()
			return m, textinput.Blink

		case "e":
			if it := m.selected(); it != nil {
				m.mode = ModeEdit
				m.textInput.Reset()
				m.textInput.SetValue(it.Name)
				m.textInput.Focus()
				return m, textinput.Blink
			}
			return m, nil

		case "c", " ":
			if it := m.selected(); it != nil {
				id := it.ID
				return m, func() tea.Msg {
					if err := m.session.ToggleDone(m.ctx, id); err != nil {
						return errMsg{err}
					}
					return itemsChangedMsg{items: m.session.Items()}
				}
			}
			return m, nil

		case "f":
			if it := m.selected(); it != nil {
				id := it.ID
				fav := !it.Favorite
				return m, func() tea.Msg {
					if err := m.session.Update(m.ctx, id, store.Patch{Favorite: &fav}); err != nil {
						return errMsg{err}
					}
					return itemsChangedMsg{items: m.session.Items()}
				}
			}
			return m, nil

		case "+", "=":
			return m, m.adjustQty(1)

		case "-", "_":
			return m, m.adjustQty(-1)

		case "d":
			if m.selected() != nil {
				m.mode = ModeConfirmDelete
			}
			return m, nil

		case "v":
			m.status = nextStatus(m.status)
			m.applyView()
			return m, nil

		case "/":
			m.mode = ModeSearch
			m.textInput.Reset()
			m.textInput.SetValue(m.search)
			m.textInput.Placeholder = "Search..."
			m.textInput.Focus()
			return m, textinput.Blink

		case "?":
			m.mode = ModeHelp
			return m, nil
		}
	}

	if m.mode == ModeAdd || m.mode == ModeEdit || m.mode == ModeSearch {
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) adjustQty(delta int) tea.Cmd {
	it := m.selected()
	if it == nil {
		return nil
	}
	id := it.ID
	return func() tea.Msg {
		if err := m.session.ChangeQty(m.ctx, id, delta); err != nil {
			return errMsg{err}
		}
		return itemsChangedMsg{items: m.session.Items()}
	}
}

func nextStatus(current string) string {
	for i, s := range statusCycle {
		if s == current {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return backend.StatusAll
}

func (m *Model) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		value := m.textInput.Value()
		m.mode = ModeNormal
		if value != "" {
			return m, m.addItem(value)
		}
		return m, nil

	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		value := m.textInput.Value()
		it := m.selected()
		m.mode = ModeNormal
		if value != "" && it != nil {
			return m, m.renameItem(it.ID, value)
		}
		return m, nil

	case tea.KeyEsc:
		m.mode = ModeNormal
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.Type {
	case tea.KeyEnter:
		m.search = m.textInput.Value()
		m.applyView()
		m.mode = ModeNormal
		return m, nil

	case tea.KeyEsc:
		m.search = ""
		m.applyView()
		m.mode = ModeNormal
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = ModeNormal
		return m, nil
	}

	if msg.String() == "q" {
		m.mode = ModeNormal
		return m, nil
	}

	return m, nil
}

func (m *Model) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		it := m.selected()
		m.mode = ModeNormal
		if it == nil {
			return m, nil
		}
		id := it.ID
		return m, func() tea.Msg {
			if err := m.session.Remove(m.ctx, id); err != nil {
				return errMsg{err}
			}
			return itemsChangedMsg{items: m.session.Items()}
		}

	case "n", "N", "esc":
		m.mode = ModeNormal
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		m.mode = ModeNormal
		return m, nil
	}

	return m, nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		m.width = 80
		m.height = 24
	}

	var b strings.Builder

	listWidth := m.width / 4
	itemWidth := m.width - listWidth - 4
	if listWidth < 4 {
		listWidth = 4
	}
	if itemWidth < 4 {
		itemWidth = 4
	}

	listContent := m.renderListPane(listWidth - 4)
	listPane := m.listPaneStyle.Width(listWidth).Height(m.height - 4).Render(listContent)

	itemContent := m.renderItemPane(itemWidth - 4)
	itemPane := m.itemPaneStyle.Width(itemWidth).Height(m.height - 4).Render(itemContent)

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, listPane, itemPane)

	statusBar := m.renderStatusBar()

	b.WriteString(mainView)
	b.WriteString("\n")
	b.WriteString(statusBar)

	// Overlay dialogs
	switch m.mode {
	case ModeAdd:
		return m.renderInputDialog("Add Item")
	case ModeEdit:
		return m.renderInputDialog("Edit Item")
	case ModeSearch:
		return m.renderSearchDialog()
	case ModeHelp:
		return m.renderHelpDialog()
	case ModeConfirmDelete:
		return m.renderConfirmDeleteDialog()
	}

	return b.String()
}

func (m *Model) renderListPane(width int) string {
	var b strings.Builder
	b.WriteString("Lists\n")
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")

	for i, name := range m.lists {
		cursor := " "
		if i == m.listCursor && m.focus == FocusLists {
			cursor = ">"
			name = m.selectedStyle.Render(name)
		}
		b.WriteString(cursor + " " + name + "\n")
	}

	return b.String()
}

func (m *Model) renderItemPane(width int) string {
	var b strings.Builder
	b.WriteString("Items (" + m.status + ")\n")
	b.WriteString(strings.Repeat("─", width))
	b.WriteString("\n")

	if len(m.visible) == 0 {
		b.WriteString("No items\n")
		return b.String()
	}

	for i := range m.visible {
		m.renderItem(&b, &m.visible[i], i)
	}

	return b.String()
}

func (m *Model) renderItem(b *strings.Builder, it *backend.Item, idx int) {
	cursor := " "
	if idx == m.itemCursor && m.focus == FocusItems {
		cursor = ">"
	}

	check := "[ ]"
	if it.Done {
		check = "[✓]"
	}

	label := fmt.Sprintf("%s %d %s", it.Name, it.Qty, it.Unit)
	if it.Favorite {
		label = m.favoriteStyle.Render("★") + " " + label
	}
	if it.Done {
		label = m.doneStyle.Render(label)
	} else if idx == m.itemCursor && m.focus == FocusItems {
		label = m.selectedStyle.Render(label)
	}

	b.WriteString(cursor + " " + check + " " + label + "\n")
}

func (m *Model) renderStatusBar() string {
	left := m.session.ActiveList()
	stats := view.Summarize(m.items)
	left += fmt.Sprintf("  %d/%d done", stats.Done, stats.Total)

	right := "q:quit  ?:help"
	if m.search != "" {
		right = "Search: " + m.search + "  " + right
	}

	padding := m.width - len(left) - len(right) - 2
	if padding < 1 {
		padding = 1
	}

	return m.statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m *Model) renderInputDialog(title string) string {
	dialog := m.dialogStyle.Render(
		title + "\n\n" +
			m.textInput.View() + "\n\n" +
			m.helpStyle.Render("Enter: confirm  Esc: cancel"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) renderSearchDialog() string {
	dialog := m.dialogStyle.Render(
		"Search Items\n\n" +
			m.textInput.View() + "\n\n" +
			m.helpStyle.Render("Enter: search  Esc: clear"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) renderHelpDialog() string {
	help := `Help - Key Bindings

Navigation:
  j/↓    Move down
  k/↑    Move up
  Tab    Switch focus between lists/items

Actions:
  a      Add new item
  e      Edit selected item name
  c/spc  Toggle done
  f      Toggle favorite
  +/-    Adjust quantity
  d      Delete item (with confirm)
  v      Cycle status view (all/pending/done/favorites)
  /      Search items

General:
  ?      Show this help
  q      Quit

Press any key to close`

	dialog := m.dialogStyle.Render(help)
	return m.centerDialog(dialog)
}

func (m *Model) renderConfirmDeleteDialog() string {
	dialog := m.dialogStyle.Render(
		"Delete selected item?\n\n" +
			m.helpStyle.Render("y: yes  n: no"),
	)
	return m.centerDialog(dialog)
}

func (m *Model) centerDialog(dialog string) string {
	lines := strings.Split(dialog, "\n")
	dialogHeight := len(lines)
	dialogWidth := 0
	for _, line := range lines {
		if len(line) > dialogWidth {
			dialogWidth = len(line)
		}
	}

	topPad := (m.height - dialogHeight) / 2
	leftPad := (m.width - dialogWidth) / 2

	if topPad < 0 {
		topPad = 0
	}
	if leftPad < 0 {
		leftPad = 0
	}

	var b strings.Builder
	for i := 0; i < topPad; i++ {
		b.WriteString("\n")
	}
	for _, line := range lines {
		b.WriteString(strings.Repeat(" ", leftPad))
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
