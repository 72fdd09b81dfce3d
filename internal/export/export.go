// Package export renders an item collection into the plain-text
// line format used for file export and sharing.
package export

import (
	"strconv"
	"strings"

	"shoplist/backend"
)

// DefaultTitle is the export header used when none is configured
const DefaultTitle = "Shopping List"

// BuildText renders items as a human-readable list: a title header,
// an underline, then one line per item of the form
//
//	[x] Milk — 3 L (favorite #dairy)
//
// with the flag parens omitted entirely when no flags apply.
func BuildText(title string, items []backend.Item) string {
	if title == "" {
		title = DefaultTitle
	}

	lines := make([]string, 0, len(items)+3)
	lines = append(lines, title)
	lines = append(lines, strings.Repeat("=", len([]rune(title))))
	lines = append(lines, "")

	for i := range items {
		lines = append(lines, formatLine(&items[i]))
	}
	return strings.Join(lines, "\n")
}

func formatLine(it *backend.Item) string {
	mark := "[ ]"
	if it.Done {
		mark = "[x]"
	}

	var sb strings.Builder
	sb.WriteString(mark)
	sb.WriteString(" ")
	sb.WriteString(it.Name)
	sb.WriteString(" — ")
	sb.WriteString(formatQty(it.Qty, it.Unit))

	if flags := formatFlags(it); flags != "" {
		sb.WriteString(" (")
		sb.WriteString(flags)
		sb.WriteString(")")
	}
	return sb.String()
}

// formatFlags space-joins the applicable item flags
func formatFlags(it *backend.Item) string {
	var flags []string
	if it.Recurring {
		flags = append(flags, "recurring")
	}
	if it.Favorite {
		flags = append(flags, "favorite")
	}
	if it.Category != "" {
		flags = append(flags, "#"+it.Category)
	}
	return strings.Join(flags, " ")
}

func formatQty(qty int, unit string) string {
	return strconv.Itoa(qty) + " " + unit
}
