// Package repository contains data access abstractions for the document
// registry. Implementations live in subpackages (memory, postgres).
package repository

import "errors"

// ErrNotFound is returned when the requested entry does not exist.
var ErrNotFound = errors.New("registry entry not found")
