package sift

import "github.com/google/uuid"

// NewID generates a globally unique, time-sortable UUIDv7 (RFC 9562).
// Chunk IDs only need request-scoped uniqueness, but time-sortable IDs
// keep index insertion order readable when debugging.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
