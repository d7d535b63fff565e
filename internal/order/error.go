package order

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrVersionConflict = errors.New("order version conflict")
)

// ValidationError carries a field-keyed map of violations. It is produced by
// the validator before any state mutation is attempted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// InvalidTransitionError reports a state machine violation, e.g. recording a
// payment against a cancelled order.
type InvalidTransitionError struct {
	From OrderStatus
	Op   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s order in status %q", e.Op, e.From)
}

// StorageError wraps a persistence backend fault. The repository never
// retries; retry policy belongs to the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
