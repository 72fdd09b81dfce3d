// Package voice converts transcribed speech into an item draft using
// a best-effort heuristic: a leading or trailing integer becomes the
// quantity, a known unit token becomes the unit, and what remains is
// the item name. There is no grammar; the vocabulary is plain
// configuration so locales and synonyms are replaceable.
package voice

import (
	"strconv"
	"strings"
)

// Vocabulary is the synonym table driving the parser
type Vocabulary struct {
	// Units maps spoken unit words to canonical unit tokens
	Units map[string]string
	// Connectors are filler words stripped from the remainder ("de")
	Connectors []string
	// Placeholder names the item when stripping leaves nothing
	Placeholder string
}

// DefaultVocabulary returns the built-in pt-BR vocabulary
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Units: map[string]string{
			"quilo": "kg", "quilos": "kg", "kilo": "kg", "kg": "kg",
			"grama": "g", "gramas": "g", "g": "g",
			"litro": "L", "litros": "L", "l": "L",
			"mililitro": "ml", "mililitros": "ml", "ml": "ml",
			"unidade": "un", "unidades": "un", "un": "un",
			"peça": "un", "peca": "un",
		},
		Connectors:  []string{"de"},
		Placeholder: "Item",
	}
}

// Merge overlays configured overrides on the vocabulary. Unit entries
// merge over the built-in table; non-empty connectors and placeholder
// replace theirs.
func (v Vocabulary) Merge(units map[string]string, connectors []string, placeholder string) Vocabulary {
	merged := Vocabulary{
		Units:       make(map[string]string, len(v.Units)+len(units)),
		Connectors:  v.Connectors,
		Placeholder: v.Placeholder,
	}
	for word, unit := range v.Units {
		merged.Units[word] = unit
	}
	for word, unit := range units {
		merged.Units[strings.ToLower(word)] = unit
	}
	if len(connectors) > 0 {
		merged.Connectors = connectors
	}
	if placeholder != "" {
		merged.Placeholder = placeholder
	}
	return merged
}

// Result is the parsed candidate item
type Result struct {
	Name string
	Qty  int
	Unit string
}

// Parse extracts quantity, unit and name from spoken text.
// Examples it handles: "2 kg de arroz", "arroz 2 unidades", "3 leite".
func Parse(text string, vocab Vocabulary) Result {
	t := strings.ToLower(strings.ReplaceAll(text, ",", " "))
	fields := strings.Fields(t)

	qty := 0

	// Leading integer, else trailing integer (possibly followed by a
	// unit word, which the unit scan below picks up)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			qty = n
			fields = fields[1:]
		} else if n, ok := trailingInt(fields, vocab); ok {
			qty = n
			fields = removeTrailingInt(fields, vocab)
		}
	}
	if qty < 1 {
		qty = 1
	}

	// First known unit token wins
	unit := ""
	for i, f := range fields {
		if canonical, ok := vocab.Units[f]; ok {
			unit = canonical
			fields = append(fields[:i:i], fields[i+1:]...)
			break
		}
	}
	if unit == "" {
		unit = "un"
	}

	// Drop connector words from what is left
	var nameFields []string
	for _, f := range fields {
		if isConnector(f, vocab) {
			continue
		}
		nameFields = append(nameFields, f)
	}

	name := strings.Join(nameFields, " ")
	if name == "" {
		name = vocab.Placeholder
	}

	return Result{Name: name, Qty: qty, Unit: unit}
}

// trailingInt finds an integer as the last token, or just before a
// trailing unit word
func trailingInt(fields []string, vocab Vocabulary) (int, bool) {
	last := len(fields) - 1
	if n, err := strconv.Atoi(fields[last]); err == nil {
		return n, true
	}
	if last >= 1 {
		if _, isUnit := vocab.Units[fields[last]]; isUnit {
			if n, err := strconv.Atoi(fields[last-1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func removeTrailingInt(fields []string, vocab Vocabulary) []string {
	last := len(fields) - 1
	if _, err := strconv.Atoi(fields[last]); err == nil {
		return fields[:last]
	}
	// number sits before the trailing unit word
	out := make([]string, 0, len(fields)-1)
	out = append(out, fields[:last-1]...)
	out = append(out, fields[last])
	return out
}

func isConnector(word string, vocab Vocabulary) bool {
	for _, c := range vocab.Connectors {
		if word == c {
			return true
		}
	}
	return false
}
