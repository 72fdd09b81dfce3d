package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations. Mutating an absent item id is
// deliberately NOT an error; those operations silently no-op.
var (
	// ErrEmptyName rejects an item whose name is empty after trimming
	ErrEmptyName = errors.New("item name is empty")

	// ErrEmptyListName rejects a list with an empty name
	ErrEmptyListName = errors.New("list name is empty")

	// ErrDuplicateList rejects creating a list name that already exists
	ErrDuplicateList = errors.New("list already exists")

	// ErrListNotFound reports an untracked list name
	ErrListNotFound = errors.New("list not found")
)

// PersistenceError reports a storage write failure. The in-memory
// collection is left unchanged, so the operation can be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
