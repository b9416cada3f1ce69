package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/pageza/recipes-api/internal/model"
)

// MemoryStore keeps recipes in an ordered slice guarded by a single mutex
type MemoryStore struct {
	mu      sync.RWMutex
	recipes []model.Recipe
	index   map[string]int
	ids     IDGenerator
}

// NewMemoryStore creates an empty store. A nil generator defaults to UUIDs.
func NewMemoryStore(ids IDGenerator) *MemoryStore {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &MemoryStore{
		recipes: []model.Recipe{},
		index:   make(map[string]int),
		ids:     ids,
	}
}

func (s *MemoryStore) List(_ context.Context) ([]model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Recipe, len(s.recipes))
	for i := range s.recipes {
		out[i] = s.recipes[i].Clone()
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	r := s.recipes[i].Clone()
	return &r, nil
}

func (s *MemoryStore) Create(_ context.Context, in model.RecipeInput) (*model.Recipe, error) {
	name, ingredients, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.NewID()
	if _, taken := s.index[id]; taken {
		return nil, fmt.Errorf("id generator returned duplicate id %s", id)
	}

	r := model.Recipe{ID: id, Name: name, Ingredients: ingredients}
	s.index[id] = len(s.recipes)
	s.recipes = append(s.recipes, r)

	out := r.Clone()
	return &out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, in model.RecipeInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	name, ingredients, err := validateUpdate(id, in)
	if err != nil {
		return err
	}

	s.recipes[i].Name = name
	s.recipes[i].Ingredients = ingredients
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.recipes); j++ {
		s.index[s.recipes[j].ID] = j
	}
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes), nil
}
