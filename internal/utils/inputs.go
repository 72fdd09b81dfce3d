package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrSelectionCancelled is returned when the user cancels a selection.
var ErrSelectionCancelled = errors.New("selection cancelled")

// PromptYesNoWithReader prompts for a yes/no response, looping until
// the user answers either way. EOF counts as no.
func PromptYesNoWithReader(prompt string, reader io.Reader, writer io.Writer) bool {
	scanner := bufio.NewScanner(reader)

	for {
		_, _ = fmt.Fprintf(writer, "%s (y/n): ", prompt)
		if !scanner.Scan() {
			return false
		}

		input := strings.TrimSpace(strings.ToLower(scanner.Text()))

		switch input {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		// Invalid input, loop continues
	}
}

// PromptSelection displays numbered items and prompts the user to pick one.
// Used to disambiguate when an item search term matches several items.
// Returns the 0-based index, or ErrSelectionCancelled when the user enters 0.
func PromptSelection[T any](items []T, prompt string, display func(index int, item T)) (int, error) {
	return PromptSelectionWithReader(items, prompt, os.Stdin, os.Stdout, display)
}

// PromptSelectionWithReader is the testable version of PromptSelection.
func PromptSelectionWithReader[T any](items []T, prompt string, reader io.Reader, writer io.Writer, display func(index int, item T)) (int, error) {
	for i, item := range items {
		display(i, item)
	}

	scanner := bufio.NewScanner(reader)

	for {
		_, _ = fmt.Fprintf(writer, "%s (0 to cancel): ", prompt)
		if !scanner.Scan() {
			return -1, ErrSelectionCancelled
		}

		input := strings.TrimSpace(scanner.Text())
		num, err := strconv.Atoi(input)
		if err != nil {
			_, _ = fmt.Fprintln(writer, "Please enter a number")
			continue
		}

		if num == 0 {
			return -1, ErrSelectionCancelled
		}

		if num < 1 || num > len(items) {
			_, _ = fmt.Fprintf(writer, "Please enter a number between 1 and %d\n", len(items))
			continue
		}

		return num - 1, nil
	}
}
