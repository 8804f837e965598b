// Package repository defines error types that are reused across
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as two rows sharing an id inside one list.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
