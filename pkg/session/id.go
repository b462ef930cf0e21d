package session

import "github.com/oklog/ulid/v2"

// NewID returns a new, lexicographically sortable session ID.
func NewID() string {
	return ulid.Make().String()
}
