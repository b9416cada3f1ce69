package store

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterGenerator(t *testing.T) {
	g := &CounterGenerator{}
	assert.Equal(t, "1", g.NewID())
	assert.Equal(t, "2", g.NewID())
	assert.Equal(t, "3", g.NewID())
}

func TestCounterGeneratorConcurrent(t *testing.T) {
	g := &CounterGenerator{}
	var mu sync.Mutex
	seen := make(map[string]struct{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.NewID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}

func TestUUIDGenerator(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.NewID(), g.NewID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestNewIDGenerator(t *testing.T) {
	g, err := NewIDGenerator("")
	require.NoError(t, err)
	assert.IsType(t, UUIDGenerator{}, g)

	g, err = NewIDGenerator(IDStrategyCounter)
	require.NoError(t, err)
	assert.IsType(t, &CounterGenerator{}, g)

	_, err = NewIDGenerator("snowflake")
	assert.Error(t, err)
}
