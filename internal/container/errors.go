package container

import (
	"fmt"
	"strings"
)

// InitializationError means the service graph is unusable: required services
// were never set, or one of them failed to start.
type InitializationError struct {
	MissingDeps []string
	Component   string
	Err         error
}

func (e *InitializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialize %s: %v", e.Component, e.Err)
	}
	return "missing required dependencies: " + strings.Join(e.MissingDeps, ", ")
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}
