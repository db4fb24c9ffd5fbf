// Package idgen produces stable identifiers for layers and drawables.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of time-sortable RFC 9562 v7 UUIDs.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends a fixed prefix to every id, e.g. "lyr_".
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a deterministic generator for tests: prefix1, prefix2, ...
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

// Default is the generator used when a component is not given one.
var Default Generator = UUIDv7()

// New produces an id using Default.
func New() string {
	return Default()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
