package corsair

import (
	"errors"
	"fmt"
)

// ============================================================================
// Error Classification
// ============================================================================
//
// Every operation fails with exactly one of the sentinel classes below,
// wrapped with context via %w. Callers classify with errors.Is and render
// their own user-facing messages. All validation errors are raised before
// any output row is produced; per-row null conditions are never errors.

var (
	// ErrCompute marks an operation that cannot proceed on otherwise valid
	// input (strict get out of bounds, to_array width mismatch, zero stride).
	ErrCompute = errors.New("compute error")

	// ErrOutOfBounds marks a strict gather whose index validation failed.
	ErrOutOfBounds = errors.New("out of bounds error")

	// ErrInvalidOperation marks a dtype incompatibility.
	ErrInvalidOperation = errors.New("invalid operation error")

	// ErrSchema marks an operation applied to an incompatible column kind.
	ErrSchema = errors.New("schema error")

	// ErrShape marks a per-row parameter whose length is neither 1 nor the
	// row count.
	ErrShape = errors.New("shape error")
)

func computeErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCompute, fmt.Sprintf(format, args...))
}

func oobErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrOutOfBounds, fmt.Sprintf(format, args...))
}

func invalidOperationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

func schemaErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

func shapeErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrShape, fmt.Sprintf(format, args...))
}
