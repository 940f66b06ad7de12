// Package idgen produces identifiers for document nodes and saved designs.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Func returns a new identifier on every call.
type Func func() string

// NewID returns a time-ordered UUIDv7 string. The random tail keeps ids
// distinct even when two calls land in the same millisecond.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Sequence returns a generator yielding prefix-1, prefix-2, ... Used where
// readable, deterministic ids matter more than global uniqueness (tests,
// fixtures).
func Sequence(prefix string) Func {
	var n atomic.Uint64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1))
	}
}
