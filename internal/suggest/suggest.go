// Package suggest ranks item names from history by frequency and
// matches them against a typed prefix query.
package suggest

import (
	"sort"
	"strings"

	"shoplist/backend"
	"shoplist/internal/view"
)

// DefaultLimit caps how many suggestions are returned
const DefaultLimit = 6

// Pool returns the distinct item names seen in history, most
// frequent first. Equal frequencies keep first-seen order.
func Pool(items []backend.Item) []string {
	freq := make(map[string]int)
	var order []string
	for i := range items {
		name := strings.TrimSpace(items[i].Name)
		if name == "" {
			continue
		}
		if freq[name] == 0 {
			order = append(order, name)
		}
		freq[name]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	return order
}

// For returns up to limit pool names containing the normalized query.
// An empty query yields nothing. A limit below 1 uses DefaultLimit.
func For(items []backend.Item, query string, limit int) []string {
	q := view.Normalize(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	var matches []string
	for _, name := range Pool(items) {
		if strings.Contains(view.Normalize(name), q) {
			matches = append(matches, name)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}
