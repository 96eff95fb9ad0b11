package idgen

import "github.com/google/uuid"

// New returns a new globally unique identifier as string. It is implemented
// as a thin wrapper so tests can stub it.

var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Short returns a compact identifier suitable for file names and log
// prefixes. It is the first segment of a full identifier.
func Short() string {
	id := NewFunc()
	if idx := len(id); idx > 8 {
		id = id[:8]
	}
	return id
}
