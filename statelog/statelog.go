// Package statelog persists drone state changes.
package statelog

import (
	"errors"
	"time"
)

// ErrClosed is returned when appending to a sink that has been closed.
var ErrClosed = errors.New("statelog: sink closed")

// Entry is one persisted state change.
type Entry struct {
	Time      time.Time
	SessionID string
	AgentID   int
	// State is the short state code, e.g. "S3". Entries without a state
	// carry a free-form Message instead.
	State   string
	Message string
}

// Sink is a durable destination for entries. Append opens the sink lazily if
// needed. Implementations are safe for concurrent use.
type Sink interface {
	Open() error
	Append(e Entry) error
	Close() error
}
