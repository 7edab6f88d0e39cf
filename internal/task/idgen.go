package task

import (
	"github.com/google/uuid"
)

// ID prefixes for generated task identifiers.
const (
	IDPrefix         = "task-"
	ImportedIDPrefix = "imported-task-"
)

// IDFunc returns a new task id. Implementations must never repeat within a
// session.
type IDFunc func() string

// NewID returns a time-ordered id with the given prefix. UUIDv7 embeds the
// millisecond timestamp and random bits, so ids sort by creation time and
// never collide within a session.
func NewID(prefix string) string {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return prefix + u.String()
}

// NewTaskID generates ids for tasks created by Add.
func NewTaskID() string {
	return NewID(IDPrefix)
}

// NewImportedID generates ids for tasks synthesized from legacy rows.
func NewImportedID() string {
	return NewID(ImportedIDPrefix)
}
