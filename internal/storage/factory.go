package storage

import (
	"errors"
	"fmt"
	"io"
)

const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

var (
	ErrUnknownTraceStore = errors.New("unknown trace store backend")
	ErrTraceStoreMissing = errors.New("trace store backend not compiled in")
)

// NewStore opens the trace store named by kind. An empty kind selects the
// in-memory store; dbPath is only read by the sqlite backend.
func NewStore(kind, dbPath string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownTraceStore, kind, KindMemory, KindSQLite)
	}
}

// CloseIfSupported releases backends that hold a connection.
func CloseIfSupported(store Store) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
