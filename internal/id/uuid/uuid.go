// Package uuid generates crawl run IDs.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates time-ordered UUIDv7 run IDs, so archives named by run ID
// sort by start time.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv7 string, falling back to a random v4 ID if the
// v7 clock sequence cannot be read.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err == nil {
		return id.String(), nil
	}
	fallback, ferr := uuid.NewRandom()
	if ferr != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return fallback.String(), nil
}
