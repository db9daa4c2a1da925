package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for invocations that do not arrive with an ID.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
