package export

import (
	"strings"

	"shoplist/backend"
)

// BuildMarkdown renders items as a markdown checklist, grouped under
// category headings. Uncategorized items come first, then categories
// in first-seen order:
//
//	# Shopping List
//
//	- [ ] Milk (3 L)
//
//	## dairy
//
//	- [x] Cheese (1 un)
func BuildMarkdown(title string, items []backend.Item) string {
	if title == "" {
		title = DefaultTitle
	}

	uncategorized, byCategory := organizeByCategory(items)

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n")

	if len(uncategorized) > 0 {
		sb.WriteString("\n")
		for i := range uncategorized {
			writeMarkdownItem(&sb, &uncategorized[i])
		}
	}

	for _, group := range byCategory {
		sb.WriteString("\n## ")
		sb.WriteString(group.category)
		sb.WriteString("\n\n")
		for i := range group.items {
			writeMarkdownItem(&sb, &group.items[i])
		}
	}

	return sb.String()
}

type categoryGroup struct {
	category string
	items    []backend.Item
}

// organizeByCategory separates uncategorized items from categorized
// ones, preserving item order and category first-seen order.
func organizeByCategory(items []backend.Item) ([]backend.Item, []categoryGroup) {
	var uncategorized []backend.Item
	index := make(map[string]int)
	var groups []categoryGroup

	for _, it := range items {
		if it.Category == "" {
			uncategorized = append(uncategorized, it)
			continue
		}
		i, ok := index[it.Category]
		if !ok {
			i = len(groups)
			index[it.Category] = i
			groups = append(groups, categoryGroup{category: it.Category})
		}
		groups[i].items = append(groups[i].items, it)
	}

	return uncategorized, groups
}

func writeMarkdownItem(sb *strings.Builder, it *backend.Item) {
	sb.WriteString("- [")
	sb.WriteString(markdownStatusChar(it.Done))
	sb.WriteString("] ")
	sb.WriteString(it.Name)
	sb.WriteString(" (")
	sb.WriteString(formatQty(it.Qty, it.Unit))
	sb.WriteString(")")
	if it.Favorite {
		sb.WriteString(" ★")
	}
	if it.Recurring {
		sb.WriteString(" ↻")
	}
	sb.WriteString("\n")
}

func markdownStatusChar(done bool) string {
	if done {
		return "x"
	}
	return " "
}
