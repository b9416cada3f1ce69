package store

import "fmt"

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open builds the store for a configured backend name. The returned close
// function is never nil.
func Open(backend string, ids IDGenerator) (RecipeStore, func() error, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(ids), func() error { return nil }, nil
	case BackendSQLite:
		s, err := NewGormStore(ids)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}
