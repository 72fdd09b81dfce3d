package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestPromptYesNoWithReader(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"no\n", false},
		// Invalid input re-prompts until a valid answer arrives
		{"maybe\ny\n", true},
		// EOF defaults to no
		{"", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		got := PromptYesNoWithReader("Delete?", strings.NewReader(tt.input), &out)
		if got != tt.want {
			t.Errorf("PromptYesNoWithReader(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPromptSelectionWithReader(t *testing.T) {
	items := []string{"Milk", "Almond Milk", "Milk Chocolate"}
	var out strings.Builder

	idx, err := PromptSelectionWithReader(items, "Which one?", strings.NewReader("2\n"), &out,
		func(i int, item string) {
			_, _ = out.WriteString(item + "\n")
		})
	if err != nil {
		t.Fatalf("PromptSelectionWithReader error: %v", err)
	}
	if idx != 1 {
		t.Errorf("selection = %d, want 1", idx)
	}
	if !strings.Contains(out.String(), "Almond Milk") {
		t.Errorf("display output = %q", out.String())
	}
}

// TestPromptSelectionCancel verifies entering zero cancels
func TestPromptSelectionCancel(t *testing.T) {
	items := []string{"Milk", "Eggs"}

	_, err := PromptSelectionWithReader(items, "Which?", strings.NewReader("0\n"), &strings.Builder{},
		func(int, string) {})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("err = %v, want ErrSelectionCancelled", err)
	}
}

// TestPromptSelectionRetries verifies out-of-range and non-numeric
// input re-prompts.
func TestPromptSelectionRetries(t *testing.T) {
	items := []string{"Milk", "Eggs"}
	var out strings.Builder

	idx, err := PromptSelectionWithReader(items, "Which?", strings.NewReader("9\nabc\n1\n"), &out,
		func(int, string) {})
	if err != nil {
		t.Fatalf("PromptSelectionWithReader error: %v", err)
	}
	if idx != 0 {
		t.Errorf("selection = %d, want 0", idx)
	}
	if !strings.Contains(out.String(), "between 1 and 2") {
		t.Errorf("retry output = %q", out.String())
	}
}

// TestPromptSelectionEOF verifies closed input cancels
func TestPromptSelectionEOF(t *testing.T) {
	_, err := PromptSelectionWithReader([]string{"Milk"}, "Which?", strings.NewReader(""), &strings.Builder{},
		func(int, string) {})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("err = %v, want ErrSelectionCancelled", err)
	}
}
