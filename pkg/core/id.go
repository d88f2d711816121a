package core

import "github.com/google/uuid"

// IDFunc produces unique string identifiers for notes and tags.
type IDFunc func() string

// NewID returns a fresh globally unique identifier.
func NewID() string {
	return uuid.NewString()
}
