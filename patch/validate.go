package patch

import (
	"errors"
	"fmt"
)

// ErrAlreadySet is returned when an operation targets a field that already
// holds a value.
var ErrAlreadySet = errors.New("field already set")

// ErrNoAllowedPaths is returned by Write when no path may be written.
var ErrNoAllowedPaths = errors.New("no writable paths")

// ValidatePatchOperations rejects operations whose path is not in
// allowedPaths. An empty set allows every path.
func ValidatePatchOperations(ops []Operation, allowedPaths map[string]bool) error {
	for i, op := range ops {
		if err := validatePathAllowed(op.Path, allowedPaths); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

func validatePathAllowed(path string, allowedPaths map[string]bool) error {
	if len(allowedPaths) == 0 || allowedPaths[path] {
		return nil
	}
	return fmt.Errorf("path %q is not in the allowed paths set", path)
}

// ValidateWriteOnce rejects operations that would overwrite a value already
// present in current.
func ValidateWriteOnce[T any](current T, ops []Operation) error {
	doc, err := newDocument(current)
	if err != nil {
		return err
	}
	for i, op := range ops {
		if op.Op != OperationRemove && doc.Has(op.Path) {
			return fmt.Errorf("operation %d: %s: %w", i, op.Path, ErrAlreadySet)
		}
	}
	return nil
}

// Write validates and applies a single-field write. Unlike
// ValidatePatchOperations an empty allowedPaths denies the write. On error
// current is returned unchanged.
func Write[T any](current T, allowedPaths map[string]bool, path string, value any) (T, error) {
	if len(allowedPaths) == 0 {
		return current, ErrNoAllowedPaths
	}
	ops := []Operation{Set(path, value)}
	if err := ValidatePatchOperations(ops, allowedPaths); err != nil {
		return current, err
	}
	if err := ValidateWriteOnce(current, ops); err != nil {
		return current, err
	}
	return ApplyRFC6902(current, ops)
}
