package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ParseQty parses a quantity argument. Non-numeric input is an error;
// out-of-range values are accepted here and clamped by the store.
func ParseQty(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, WrapWithSuggestion(
			errors.New("invalid quantity: "+s),
			"Quantity must be a whole number, e.g. 'shoplist qty milk 3'",
		)
	}
	return n, nil
}

// ParseQtyDelta parses a relative quantity change like "+1" or "-2".
// Returns the delta and true when the argument has an explicit sign.
func ParseQtyDelta(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, errors.New("invalid quantity: empty")
	}
	relative := s[0] == '+' || s[0] == '-'
	n, err := ParseQty(s)
	if err != nil {
		return 0, false, err
	}
	return n, relative, nil
}
