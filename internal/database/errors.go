package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation is returned when input fails shape or range checks.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a delete or lookup target does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDanglingReference is returned when a referenced row does not exist.
	ErrDanglingReference = errors.New("referenced record does not exist")
	// ErrUnknownQuery is returned for labels outside the query catalog.
	ErrUnknownQuery = errors.New("unknown catalog query")
	// ErrStore wraps faults reported by the backing store.
	ErrStore = errors.New("store error")
	// ErrStoreUnavailable is returned when the backing medium cannot be opened or is closed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError lists the offending fields. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// storeError classifies a driver error as ErrStoreUnavailable or ErrStore.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStore) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}
