package utils

import (
	"fmt"
)

// ErrorWithSuggestion wraps an error with a user-friendly suggestion.
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface.
func (e *ErrorWithSuggestion) Error() string {
	return fmt.Sprintf("%s\n\nSuggestion: %s", e.Err.Error(), e.Suggestion)
}

// GetSuggestion returns the suggestion text.
func (e *ErrorWithSuggestion) GetSuggestion() string {
	return e.Suggestion
}

// Unwrap returns the underlying error for error chain support.
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// WrapWithSuggestion wraps an existing error with a suggestion.
func WrapWithSuggestion(err error, suggestion string) error {
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// ErrItemNotFound returns an error for when an item is not found.
func ErrItemNotFound(searchTerm string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("item not found: %s", searchTerm),
		Suggestion: "Check the search term or use 'shoplist get' to see all items",
	}
}

// ErrListNotFound returns an error for when a list is not found.
func ErrListNotFound(listName string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("list not found: %s", listName),
		Suggestion: fmt.Sprintf("Create the list with 'shoplist list create %s'", listName),
	}
}

// ErrBackendUnavailable returns an error when the storage backend cannot be opened.
func ErrBackendUnavailable(backend string, cause error) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("backend %s unavailable: %w", backend, cause),
		Suggestion: "Check the backend configuration in your config file",
	}
}
