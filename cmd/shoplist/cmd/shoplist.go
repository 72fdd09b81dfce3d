package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"shoplist/backend"
	"shoplist/backend/jsonfile"
	"shoplist/backend/sqlite"
	"shoplist/internal/config"
	"shoplist/internal/credentials"
	"shoplist/internal/export"
	"shoplist/internal/share"
	"shoplist/internal/store"
	"shoplist/internal/suggest"
	"shoplist/internal/tui"
	"shoplist/internal/utils"
	"shoplist/internal/view"
	"shoplist/internal/voice"
)

// Version is set at build time
var Version = "dev"

// Result codes for CLI output (used in no-prompt mode)
const (
	ResultActionCompleted = "ACTION_COMPLETED"
	ResultInfoOnly        = "INFO_ONLY"
	ResultError           = "ERROR"
)

// Config holds application configuration
type Config struct {
	NoPrompt     bool
	Verbose      bool
	OutputFormat string
	ConfigPath   string    // Path to config file (for testing)
	DBPath       string    // Force the sqlite backend at this path (for testing)
	DataDir      string    // Force the jsonfile backend at this dir (for testing)
	Stdin        io.Reader // Input reader override (for testing)
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewShopList(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if cfg != nil && cfg.Stdin != nil {
		rootCmd.SetIn(cfg.Stdin)
	}

	if err := rootCmd.Execute(); err != nil {
		jsonOutput := containsJSONFlag(args)
		if jsonOutput {
			outputErrorJSON(err, stdout)
		} else {
			_, _ = fmt.Fprintln(stderr, "Error:", err)
			// Emit ERROR result code in no-prompt mode
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultError)
			}
		}
		return 1
	}
	return 0
}

// containsJSONFlag checks if args contain --json flag
func containsJSONFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--json" {
			return true
		}
	}
	return false
}

// NewShopList creates the root command with injectable IO
func NewShopList(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "shoplist [list] [action] [item] [value]",
		Short:   "A shopping list CLI",
		Long:    "shoplist is a command-line shopping list manager with multiple lists, filtering and sharing.",
		Version: Version,
		Args:    cobra.MaximumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			// If no args, show the active list
			listName := ""
			action := "get"
			var itemTerm, value string

			rest := args
			// First arg may be an action instead of a list name; in
			// that case the active list is used.
			if len(rest) > 0 {
				if resolveAction(rest[0]) != "" {
					action = resolveAction(rest[0])
					rest = rest[1:]
				} else {
					listName = rest[0]
					rest = rest[1:]
					if len(rest) > 0 {
						action = resolveAction(rest[0])
						if action == "" {
							return fmt.Errorf("unknown action: %s", rest[0])
						}
						rest = rest[1:]
					}
				}
			}
			if len(rest) > 0 {
				itemTerm = rest[0]
				rest = rest[1:]
			}
			if len(rest) > 0 {
				value = rest[0]
			}

			sess, st, err := openSession(cmd.Context(), cfg, listName)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			jsonOutput, _ := cmd.Flags().GetBool("json")
			return executeAction(cmd.Context(), cmd, sess, action, itemTerm, value, cfg, stdout, jsonOutput)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	cmd.PersistentFlags().BoolP("no-prompt", "y", false, "Disable interactive prompts")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose/debug output")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("config", "", "Path to config file")

	// Add action-specific flags
	cmd.Flags().StringP("qty", "q", "", "Quantity for add/update (1-9999)")
	cmd.Flags().StringP("unit", "u", "", "Unit for add/update (e.g. kg, L, un)")
	cmd.Flags().StringP("category", "c", "", "Category for add/update, or filter for get (use \"\" to clear)")
	cmd.Flags().Bool("recurring", false, "Mark item as recurring (add/update)")
	cmd.Flags().Bool("favorite", false, "Mark item as favorite (add/update)")
	cmd.Flags().String("barcode", "", "Barcode for add (manually entered)")
	cmd.Flags().String("name", "", "New item name (for update)")
	cmd.Flags().String("search", "", "Search filter for get")
	cmd.Flags().StringP("status", "s", "", "Status view for get (all, pending, done, favorites)")
	cmd.Flags().String("sort", "", "Sort mode for get (created_desc, created_asc, name_asc, name_desc, category_asc)")
	cmd.Flags().Bool("save-filter", false, "Persist the get filter as the default view")
	cmd.Flags().Bool("pending", false, "With mark-all, mark every item pending instead of done")

	cmd.AddCommand(newListCmd(stdout, cfg))
	cmd.AddCommand(newExportCmd(stdout, cfg))
	cmd.AddCommand(newShareCmd(stdout, cfg))
	cmd.AddCommand(newSayCmd(stdout, cfg))
	cmd.AddCommand(newSuggestCmd(stdout, cfg))
	cmd.AddCommand(newTUICmd(cfg))
	cmd.AddCommand(newCredentialsCmd(stdout, stderr, cfg))

	return cmd
}

// applyGlobalFlags folds persistent flag values into cfg
func applyGlobalFlags(cmd *cobra.Command, cfg *Config) {
	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		cfg.NoPrompt = true
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
		utils.SetVerboseMode(true)
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg.ConfigPath = path
	}
}

// openStore builds the configured storage backend
func openStore(cfg *Config) (backend.Store, *config.Config, error) {
	// Test overrides pin the backend directly
	if cfg.DBPath != "" {
		st, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, nil, utils.ErrBackendUnavailable("sqlite", err)
		}
		return st, config.DefaultConfig(), nil
	}
	if cfg.DataDir != "" {
		st, err := jsonfile.New(jsonfile.Config{Dir: cfg.DataDir})
		if err != nil {
			return nil, nil, utils.ErrBackendUnavailable("jsonfile", err)
		}
		return st, config.DefaultConfig(), nil
	}

	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if err := appCfg.Validate(); err != nil {
		return nil, nil, err
	}

	// Fold CLI flags over the file config, then honor the merged
	// no_prompt setting.
	appCfg.ApplyFlags(cfg.NoPrompt, cfg.OutputFormat)
	cfg.NoPrompt = appCfg.NoPrompt

	switch appCfg.DefaultBackend {
	case "jsonfile":
		dir := appCfg.GetJSONFileDir()
		if dir == "" {
			dir = filepath.Join(config.GetDataDir(), "lists")
		}
		utils.Debugf("opening jsonfile backend at %s", dir)
		st, err := jsonfile.New(jsonfile.Config{Dir: dir})
		if err != nil {
			return nil, nil, utils.ErrBackendUnavailable("jsonfile", err)
		}
		return st, appCfg, nil
	default:
		path := appCfg.GetDatabasePath()
		if path == "" {
			path = filepath.Join(config.GetDataDir(), "shoplist.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("could not create data directory: %w", err)
		}
		utils.Debugf("opening sqlite backend at %s", path)
		st, err := sqlite.New(path)
		if err != nil {
			return nil, nil, utils.ErrBackendUnavailable("sqlite", err)
		}
		return st, appCfg, nil
	}
}

// openSession opens the store and hydrates a session, switching to
// listName when one was given.
func openSession(ctx context.Context, cfg *Config, listName string) (*store.Session, backend.Store, error) {
	st, appCfg, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	sess, err := store.Open(ctx, st, store.WithDefaultUnit(appCfg.DefaultUnit))
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	if listName != "" && !strings.EqualFold(listName, sess.ActiveList()) {
		if err := sess.SwitchList(ctx, listName); err != nil {
			_ = st.Close()
			return nil, nil, utils.ErrListNotFound(listName)
		}
	}

	return sess, st, nil
}

// resolveAction maps action names and abbreviations to canonical action names
func resolveAction(s string) string {
	switch strings.ToLower(s) {
	case "get", "g":
		return "get"
	case "add", "a":
		return "add"
	case "update", "u":
		return "update"
	case "done", "d":
		return "done"
	case "qty":
		return "qty"
	case "remove", "rm":
		return "remove"
	case "clear-done", "clear":
		return "clear-done"
	case "mark-all":
		return "mark-all"
	default:
		return ""
	}
}

// executeAction performs the requested action on the session
func executeAction(ctx context.Context, cmd *cobra.Command, sess *store.Session, action, itemTerm, value string, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	switch action {
	case "get":
		spec, save, err := filterFromFlags(cmd, sess.Filter())
		if err != nil {
			return err
		}
		if save {
			if err := sess.SetFilter(ctx, spec); err != nil {
				return err
			}
		}
		return doGet(sess, spec, cfg, stdout, jsonOutput)
	case "add":
		draft, err := draftFromFlags(cmd, itemTerm)
		if err != nil {
			return err
		}
		return doAdd(ctx, sess, draft, cfg, stdout, jsonOutput)
	case "update":
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}
		return doUpdate(ctx, sess, itemTerm, patch, cfg, stdout, jsonOutput)
	case "done":
		return doDone(ctx, sess, itemTerm, cfg, stdout, jsonOutput)
	case "qty":
		return doQty(ctx, sess, itemTerm, value, cfg, stdout, jsonOutput)
	case "remove":
		return doRemove(ctx, sess, itemTerm, cfg, stdout, jsonOutput)
	case "clear-done":
		return doClearDone(ctx, sess, cfg, stdout, jsonOutput)
	case "mark-all":
		pending, _ := cmd.Flags().GetBool("pending")
		return doMarkAll(ctx, sess, !pending, cfg, stdout, jsonOutput)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
}

// filterFromFlags merges filter flags over the persisted spec
func filterFromFlags(cmd *cobra.Command, spec backend.FilterSpec) (backend.FilterSpec, bool, error) {
	if cmd.Flags().Changed("search") {
		spec.Text, _ = cmd.Flags().GetString("search")
	}
	if cmd.Flags().Changed("category") {
		spec.Category, _ = cmd.Flags().GetString("category")
	}
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		switch status {
		case backend.StatusAll, backend.StatusPending, backend.StatusDone, backend.StatusFavorites:
			spec.Status = status
		default:
			return spec, false, fmt.Errorf("unknown status: %s (use all, pending, done or favorites)", status)
		}
	}
	if cmd.Flags().Changed("sort") {
		sortMode, _ := cmd.Flags().GetString("sort")
		switch sortMode {
		case backend.SortCreatedDesc, backend.SortCreatedAsc, backend.SortNameAsc, backend.SortNameDesc, backend.SortCategoryAsc:
			spec.Sort = sortMode
		default:
			return spec, false, fmt.Errorf("unknown sort mode: %s", sortMode)
		}
	}
	save, _ := cmd.Flags().GetBool("save-filter")
	return spec, save, nil
}

// draftFromFlags builds an item draft for the add action
func draftFromFlags(cmd *cobra.Command, name string) (store.Draft, error) {
	draft := store.Draft{Name: name, Qty: 1}

	if qtyStr, _ := cmd.Flags().GetString("qty"); qtyStr != "" {
		qty, err := utils.ParseQty(qtyStr)
		if err != nil {
			return draft, err
		}
		draft.Qty = qty
	}
	draft.Unit, _ = cmd.Flags().GetString("unit")
	draft.Category, _ = cmd.Flags().GetString("category")
	draft.Recurring, _ = cmd.Flags().GetBool("recurring")
	draft.Favorite, _ = cmd.Flags().GetBool("favorite")
	if barcode, _ := cmd.Flags().GetString("barcode"); barcode != "" {
		draft.Meta = map[string]string{"barcode": barcode}
	}

	return draft, nil
}

// patchFromFlags builds an update patch from changed flags only
func patchFromFlags(cmd *cobra.Command) (store.Patch, error) {
	var patch store.Patch

	if cmd.Flags().Changed("name") {
		name, _ := cmd.Flags().GetString("name")
		patch.Name = &name
	}
	if cmd.Flags().Changed("qty") {
		qtyStr, _ := cmd.Flags().GetString("qty")
		qty, err := utils.ParseQty(qtyStr)
		if err != nil {
			return patch, err
		}
		patch.Qty = &qty
	}
	if cmd.Flags().Changed("unit") {
		unit, _ := cmd.Flags().GetString("unit")
		patch.Unit = &unit
	}
	if cmd.Flags().Changed("category") {
		category, _ := cmd.Flags().GetString("category")
		patch.Category = &category
	}
	if cmd.Flags().Changed("recurring") {
		recurring, _ := cmd.Flags().GetBool("recurring")
		patch.Recurring = &recurring
	}
	if cmd.Flags().Changed("favorite") {
		favorite, _ := cmd.Flags().GetBool("favorite")
		patch.Favorite = &favorite
	}

	return patch, nil
}

// doGet displays the active list through the filter spec
func doGet(sess *store.Session, spec backend.FilterSpec, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	items := view.Apply(sess.Items(), spec)

	if jsonOutput {
		return outputItemListJSON(items, sess.ActiveList(), stdout)
	}

	if len(items) == 0 {
		_, _ = fmt.Fprintf(stdout, "No items in list '%s'\n", sess.ActiveList())
	} else {
		_, _ = fmt.Fprintf(stdout, "Items in '%s':\n", sess.ActiveList())
		printItems(items, stdout)
		stats := view.Summarize(sess.Items())
		_, _ = fmt.Fprintf(stdout, "\n%d items, %d pending, %d done\n", stats.Total, stats.Pending, stats.Done)
	}

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultInfoOnly)
	}
	return nil
}

// printItems renders items as aligned rows
func printItems(items []backend.Item, stdout io.Writer) {
	for _, it := range items {
		check := "[ ]"
		if it.Done {
			check = "[x]"
		}
		flags := ""
		if it.Favorite {
			flags += " ★"
		}
		if it.Recurring {
			flags += " ↻"
		}
		category := ""
		if it.Category != "" {
			category = " #" + it.Category
		}
		_, _ = fmt.Fprintf(stdout, "%s %-30s %4d %-4s%s%s\n", check, it.Name, it.Qty, it.Unit, category, flags)
	}
}

// doAdd creates a new item at the head of the active list
func doAdd(ctx context.Context, sess *store.Session, draft store.Draft, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	if strings.TrimSpace(draft.Name) == "" {
		return store.ErrEmptyName
	}

	item, err := sess.Add(ctx, draft)
	if err != nil {
		return err
	}

	if jsonOutput {
		return outputActionJSON("add", item, stdout)
	}

	_, _ = fmt.Fprintf(stdout, "Added item: %s (%d %s)\n", item.Name, item.Qty, item.Unit)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// doUpdate patches an existing item
func doUpdate(ctx context.Context, sess *store.Session, itemTerm string, patch store.Patch, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	item, err := findItem(sess, itemTerm, cfg, stdout)
	if err != nil {
		return err
	}

	if err := sess.Update(ctx, item.ID, patch); err != nil {
		return err
	}

	updated := itemByID(sess, item.ID)
	if updated == nil {
		updated = item
	}

	if jsonOutput {
		return outputActionJSON("update", updated, stdout)
	}

	_, _ = fmt.Fprintf(stdout, "Updated item: %s\n", updated.Name)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// doDone toggles an item's done flag
func doDone(ctx context.Context, sess *store.Session, itemTerm string, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	item, err := findItem(sess, itemTerm, cfg, stdout)
	if err != nil {
		return err
	}

	if err := sess.ToggleDone(ctx, item.ID); err != nil {
		return err
	}

	updated := itemByID(sess, item.ID)
	if updated == nil {
		updated = item
	}

	if jsonOutput {
		return outputActionJSON("done", updated, stdout)
	}

	state := "pending"
	if updated.Done {
		state = "done"
	}
	_, _ = fmt.Fprintf(stdout, "Marked %s: %s\n", state, updated.Name)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// doQty sets or adjusts an item's quantity. A value with an explicit
// sign ("+2", "-1") is relative; a plain number is absolute.
func doQty(ctx context.Context, sess *store.Session, itemTerm, value string, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	if value == "" {
		return fmt.Errorf("quantity value is required, e.g. 'shoplist qty milk 3' or 'shoplist qty milk +1'")
	}

	item, err := findItem(sess, itemTerm, cfg, stdout)
	if err != nil {
		return err
	}

	n, relative, err := utils.ParseQtyDelta(value)
	if err != nil {
		return err
	}

	if relative {
		err = sess.ChangeQty(ctx, item.ID, n)
	} else {
		qty := n
		err = sess.Update(ctx, item.ID, store.Patch{Qty: &qty})
	}
	if err != nil {
		return err
	}

	updated := itemByID(sess, item.ID)
	if updated == nil {
		updated = item
	}

	if jsonOutput {
		return outputActionJSON("qty", updated, stdout)
	}

	_, _ = fmt.Fprintf(stdout, "Quantity of %s is now %d %s\n", updated.Name, updated.Qty, updated.Unit)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// doRemove deletes an item
func doRemove(ctx context.Context, sess *store.Session, itemTerm string, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	item, err := findItem(sess, itemTerm, cfg, stdout)
	if err != nil {
		return err
	}

	removed := *item
	if err := sess.Remove(ctx, item.ID); err != nil {
		return err
	}

	if jsonOutput {
		return outputActionJSON("remove", &removed, stdout)
	}

	_, _ = fmt.Fprintf(stdout, "Removed item: %s\n", removed.Name)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// doClearDone removes all done items
func doClearDone(ctx context.Context, sess *store.Session, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	removed, err := sess.ClearDone(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		response := struct {
			Action  string `json:"action"`
			Removed int    `json:"removed"`
			Result  string `json:"result"`
		}{"clear-done", removed, ResultActionCompleted}
		return writeJSON(response, stdout)
	}

	_, _ = fmt.Fprintf(stdout, "Removed %d done item(s)\n", removed)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// doMarkAll sets every item's done flag at once
func doMarkAll(ctx context.Context, sess *store.Session, done bool, cfg *Config, stdout io.Writer, jsonOutput bool) error {
	if err := sess.MarkAll(ctx, done); err != nil {
		return err
	}

	if jsonOutput {
		response := struct {
			Action string `json:"action"`
			Done   bool   `json:"done"`
			Count  int    `json:"count"`
			Result string `json:"result"`
		}{"mark-all", done, len(sess.Items()), ResultActionCompleted}
		return writeJSON(response, stdout)
	}

	state := "done"
	if !done {
		state = "pending"
	}
	_, _ = fmt.Fprintf(stdout, "Marked all items %s\n", state)

	if cfg != nil && cfg.NoPrompt {
		_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
	}
	return nil
}

// findItem searches for an item by id or name, exact then partial
// matching. Multiple partial matches prompt in interactive mode and
// error in no-prompt mode.
func findItem(sess *store.Session, searchTerm string, cfg *Config, stdout io.Writer) (*backend.Item, error) {
	if searchTerm == "" {
		return nil, fmt.Errorf("item name is required")
	}

	items := sess.Items()

	for i := range items {
		if items[i].ID == searchTerm {
			return &items[i], nil
		}
	}

	// Exact match (case-insensitive)
	for i := range items {
		if strings.EqualFold(items[i].Name, searchTerm) {
			return &items[i], nil
		}
	}

	// Partial match on the normalized name, so "maca" finds "Maçã"
	needle := view.Normalize(searchTerm)
	var matches []backend.Item
	for _, it := range items {
		if strings.Contains(view.Normalize(it.Name), needle) {
			matches = append(matches, it)
		}
	}

	if len(matches) == 0 {
		return nil, utils.ErrItemNotFound(searchTerm)
	}

	if len(matches) == 1 {
		return &matches[0], nil
	}

	if cfg != nil && cfg.NoPrompt {
		var matchNames []string
		for _, m := range matches {
			matchNames = append(matchNames, fmt.Sprintf("  - %s", m.Name))
		}
		return nil, fmt.Errorf("multiple items match '%s':\n%s", searchTerm, strings.Join(matchNames, "\n"))
	}

	idx, err := utils.PromptSelection(matches, "Select item", func(i int, it backend.Item) {
		_, _ = fmt.Fprintf(stdout, "%d. %s (%d %s)\n", i+1, it.Name, it.Qty, it.Unit)
	})
	if err != nil {
		return nil, err
	}
	return &matches[idx], nil
}

func itemByID(sess *store.Session, id string) *backend.Item {
	items := sess.Items()
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// JSON output structures
type itemJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	Unit      string `json:"unit"`
	Category  string `json:"category,omitempty"`
	Recurring bool   `json:"recurring"`
	Favorite  bool   `json:"favorite"`
	Done      bool   `json:"done"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`

	Meta map[string]string `json:"meta,omitempty"`
}

type itemListResponse struct {
	Items  []itemJSON `json:"items"`
	List   string     `json:"list"`
	Count  int        `json:"count"`
	Result string     `json:"result"`
}

type actionResponse struct {
	Action string   `json:"action"`
	Item   itemJSON `json:"item"`
	Result string   `json:"result"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Result string `json:"result"`
}

// itemToJSON converts a backend.Item to itemJSON
func itemToJSON(it *backend.Item) itemJSON {
	return itemJSON{
		ID:        it.ID,
		Name:      it.Name,
		Qty:       it.Qty,
		Unit:      it.Unit,
		Category:  it.Category,
		Recurring: it.Recurring,
		Favorite:  it.Favorite,
		Done:      it.Done,
		CreatedAt: it.CreatedAt.Format(time.RFC3339),
		UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
		Meta:      it.Meta,
	}
}

// outputItemListJSON outputs items in JSON format
func outputItemListJSON(items []backend.Item, list string, stdout io.Writer) error {
	jsonItems := make([]itemJSON, 0, len(items))
	for i := range items {
		jsonItems = append(jsonItems, itemToJSON(&items[i]))
	}

	response := itemListResponse{
		Items:  jsonItems,
		List:   list,
		Count:  len(jsonItems),
		Result: ResultInfoOnly,
	}
	return writeJSON(response, stdout)
}

// outputActionJSON outputs action result in JSON format
func outputActionJSON(action string, item *backend.Item, stdout io.Writer) error {
	response := actionResponse{
		Action: action,
		Item:   itemToJSON(item),
		Result: ResultActionCompleted,
	}
	return writeJSON(response, stdout)
}

// outputErrorJSON outputs error in JSON format
func outputErrorJSON(err error, stdout io.Writer) {
	response := errorResponse{
		Error:  err.Error(),
		Code:   1,
		Result: ResultError,
	}
	jsonBytes, _ := json.Marshal(response)
	_, _ = fmt.Fprintln(stdout, string(jsonBytes))
}

func writeJSON(v interface{}, stdout io.Writer) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, string(jsonBytes))
	return nil
}

// newTUICmd creates the 'tui' subcommand
func newTUICmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			p := tea.NewProgram(tui.New(sess), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newSayCmd creates the 'say' subcommand: parse transcribed speech
// into a draft and add it to the active list.
func newSayCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "say [text...]",
		Short: "Add an item from transcribed speech",
		Long:  "Parse transcribed speech like \"2 kg de arroz\" into an item and add it to the active list.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			vocab := voice.DefaultVocabulary()
			if cfg.ConfigPath != "" {
				if appCfg, cfgErr := config.LoadFromPath(cfg.ConfigPath); cfgErr != nil {
					utils.Warnf("could not read config, using built-in vocabulary: %v", cfgErr)
				} else if appCfg != nil {
					vocab = vocab.Merge(appCfg.Voice.Units, appCfg.Voice.Connectors, appCfg.Voice.Placeholder)
				}
			}

			parsed := voice.Parse(strings.Join(args, " "), vocab)
			item, err := sess.Add(cmd.Context(), store.Draft{
				Name: parsed.Name,
				Qty:  parsed.Qty,
				Unit: parsed.Unit,
			})
			if err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				return outputActionJSON("say", item, stdout)
			}

			_, _ = fmt.Fprintf(stdout, "Added item: %s (%d %s)\n", item.Name, item.Qty, item.Unit)
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newSuggestCmd creates the 'suggest' subcommand
func newSuggestCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [query]",
		Short: "Suggest item names from history",
		Long:  "Show frequently used item names across all lists, optionally filtered by a query prefix.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			query := ""
			if len(args) > 0 {
				query = args[0]
			}

			limit := suggest.DefaultLimit
			if appCfg, err := config.LoadFromPath(cfg.ConfigPath); err == nil && appCfg != nil {
				limit = appCfg.GetSuggestLimit()
			}

			// Pool across every tracked list, not just the active one
			pool := sess.Items()
			for _, name := range sess.Lists() {
				if strings.EqualFold(name, sess.ActiveList()) {
					continue
				}
				items, err := st.LoadItems(cmd.Context(), name)
				if err != nil {
					continue
				}
				pool = append(pool, items...)
			}

			names := suggest.For(pool, query, limit)

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				response := struct {
					Suggestions []string `json:"suggestions"`
					Query       string   `json:"query,omitempty"`
					Result      string   `json:"result"`
				}{names, query, ResultInfoOnly}
				return writeJSON(response, stdout)
			}

			if len(names) == 0 {
				_, _ = fmt.Fprintln(stdout, "No suggestions")
			} else {
				for _, name := range names {
					_, _ = fmt.Fprintf(stdout, "  - %s\n", name)
				}
			}
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultInfoOnly)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newExportCmd creates the 'export' subcommand
func newExportCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the active list as text",
		Long:  "Render the active list as shareable plain text, to stdout or a file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			title, _ := cmd.Flags().GetString("title")
			if title == "" {
				title = sess.ActiveList()
			}

			format, _ := cmd.Flags().GetString("format")
			var text string
			switch format {
			case "text", "":
				text = export.BuildText(title, sess.Items())
			case "markdown", "md":
				text = export.BuildMarkdown(title, sess.Items())
			default:
				return fmt.Errorf("unknown export format: %s (use text or markdown)", format)
			}

			if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
				if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
					return fmt.Errorf("failed to write export file: %w", err)
				}
				_, _ = fmt.Fprintf(stdout, "Exported list to %s\n", outPath)
				if cfg != nil && cfg.NoPrompt {
					_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
				}
				return nil
			}

			_, _ = fmt.Fprintln(stdout, text)
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultInfoOnly)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String("title", "", "Title for the exported text (defaults to the list name)")
	cmd.Flags().String("format", "text", "Export format (text or markdown)")
	cmd.Flags().String("out", "", "Write the export to a file instead of stdout")
	return cmd
}

// newShareCmd creates the 'share' subcommand
func newShareCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share the active list",
		Long:  "Deliver the exported list via the configured share endpoint, falling back to the clipboard.",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGlobalFlags(cmd, cfg)

			sess, st, err := openSession(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			title, _ := cmd.Flags().GetString("title")
			if title == "" {
				title = sess.ActiveList()
			}
			// Share what the user sees: the saved filter and sort
			// applied, not the raw list.
			text := export.BuildText(title, view.Apply(sess.Items(), sess.Filter()))

			endpoint := ""
			account := ""
			if appCfg, err := config.LoadFromPath(cfg.ConfigPath); err == nil && appCfg != nil {
				endpoint = appCfg.GetShareEndpoint()
				account = appCfg.GetShareAccount()
			}

			sharer := share.NewSharer(
				share.WithEndpoint(endpoint),
				share.WithAccount(account),
				share.WithCredentials(credentials.NewManager()),
			)

			method, err := sharer.Share(cmd.Context(), title, text)
			if err != nil {
				return err
			}

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				response := struct {
					Method string `json:"method"`
					List   string `json:"list"`
					Result string `json:"result"`
				}{string(method), sess.ActiveList(), ResultActionCompleted}
				return writeJSON(response, stdout)
			}

			switch method {
			case share.MethodEndpoint:
				_, _ = fmt.Fprintln(stdout, "Shared list via endpoint")
			case share.MethodClipboard:
				_, _ = fmt.Fprintln(stdout, "Copied list to clipboard")
			}
			if cfg != nil && cfg.NoPrompt {
				_, _ = fmt.Fprintln(stdout, ResultActionCompleted)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String("title", "", "Title for the shared text (defaults to the list name)")
	return cmd
}
