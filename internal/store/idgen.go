package store

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces recipe ids. Implementations must never return the
// same value twice within a process.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// UUIDGenerator issues random v4 UUIDs
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// CounterGenerator issues "1", "2", "3", ...
type CounterGenerator struct {
	next atomic.Uint64
}

func (g *CounterGenerator) NewID() string {
	return strconv.FormatUint(g.next.Add(1), 10)
}

const (
	IDStrategyUUID    = "uuid"
	IDStrategyCounter = "counter"
)

// NewIDGenerator returns the generator for a configured strategy name
func NewIDGenerator(strategy string) (IDGenerator, error) {
	switch strategy {
	case "", IDStrategyUUID:
		return UUIDGenerator{}, nil
	case IDStrategyCounter:
		return &CounterGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy: %s", strategy)
	}
}
