package store

import (
	"context"
	"fmt"

	"github.com/harrison/mchat/internal/screening"
)

// Supported backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Store is a result store that can also enumerate its keys and be released.
type Store interface {
	screening.ResultStore
	Keys(ctx context.Context) ([]int, error)
	Close() error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
)

// Open returns an empty store for the named backend. The empty name means memory.
func Open(backend string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite()
	default:
		return nil, fmt.Errorf("unknown store backend %q (supported: %s, %s)", backend, BackendMemory, BackendSQLite)
	}
}
