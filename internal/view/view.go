// Package view implements the pure filter/sort engine that turns an
// item collection into the filtered, ordered view described by a
// FilterSpec.
package view

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"shoplist/backend"
)

// stripMarks decomposes to NFD, drops combining marks and recomposes,
// so "Maçã" and "maca" normalize to the same key.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns a diacritic-stripped, case-folded comparison key
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Matches reports whether a single item passes the spec's filters
func Matches(it *backend.Item, spec backend.FilterSpec) bool {
	if t := Normalize(strings.TrimSpace(spec.Text)); t != "" {
		if !strings.Contains(Normalize(it.Name), t) {
			return false
		}
	}
	if spec.Category != "" && it.Category != spec.Category {
		return false
	}

	switch spec.Status {
	case backend.StatusPending:
		return !it.Done
	case backend.StatusDone:
		return it.Done
	case backend.StatusFavorites:
		return it.Favorite
	default:
		// "all" and unknown status values filter nothing
		return true
	}
}

// Apply returns the filtered, ordered view of items for a spec.
// The input slice is never modified; ties keep their original
// relative order (stable sort).
func Apply(items []backend.Item, spec backend.FilterSpec) []backend.Item {
	result := make([]backend.Item, 0, len(items))
	for i := range items {
		if Matches(&items[i], spec) {
			result = append(result, items[i])
		}
	}

	switch spec.Sort {
	case backend.SortCreatedAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		})
	case backend.SortNameAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return Normalize(result[i].Name) < Normalize(result[j].Name)
		})
	case backend.SortNameDesc:
		sort.SliceStable(result, func(i, j int) bool {
			return Normalize(result[j].Name) < Normalize(result[i].Name)
		})
	case backend.SortCategoryAsc:
		sort.SliceStable(result, func(i, j int) bool {
			ci, cj := Normalize(result[i].Category), Normalize(result[j].Category)
			if ci != cj {
				return ci < cj
			}
			return Normalize(result[i].Name) < Normalize(result[j].Name)
		})
	default:
		// created_desc is the default sort mode
		sort.SliceStable(result, func(i, j int) bool {
			return result[j].CreatedAt.Before(result[i].CreatedAt)
		})
	}

	return result
}

// Stats summarizes an item collection for display
type Stats struct {
	Total      int
	Pending    int
	Done       int
	Categories int
}

// Summarize computes display stats over the full (unfiltered) collection
func Summarize(items []backend.Item) Stats {
	s := Stats{Total: len(items)}
	cats := make(map[string]struct{})
	for i := range items {
		if items[i].Done {
			s.Done++
		} else {
			s.Pending++
		}
		if items[i].Category != "" {
			cats[items[i].Category] = struct{}{}
		}
	}
	s.Categories = len(cats)
	return s
}
