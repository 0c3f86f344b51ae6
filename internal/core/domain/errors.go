package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput and ErrDimensionMismatch indicate caller bugs and are
	// never swallowed downstream.
	ErrEmptyInput        = errors.New("empty input")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	ErrEmbeddingProvider = errors.New("embedding provider failure")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrToolExecution     = errors.New("tool execution failure")
	ErrModelInvocation   = errors.New("model invocation failure")

	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
