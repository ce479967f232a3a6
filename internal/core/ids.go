package core

import (
	"time"

	"github.com/google/uuid"
)

// IDFunc produces a process-wide unique identifier.
type IDFunc func() string

// Clock returns the current time.
type Clock func() time.Time

// NewID returns a random 128-bit identifier.
func NewID() string {
	return uuid.NewString()
}

// Millis converts t to the unix-millisecond createdAt representation.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
