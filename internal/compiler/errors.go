package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for an output format other than esm,
// cjs or both.
var ErrUnsupportedFormat = errors.New("unsupported format")

// CircularDependencyError reports reactive variables that depend on each
// other. Cycle starts and ends with the same variable.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Cycle) == 0 {
		return "Circular dependency detected"
	}
	return "Circular dependency detected: " + strings.Join(e.Cycle, " -> ")
}

// StageError wraps a failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
