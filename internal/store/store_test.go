package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/pageza/recipes-api/internal/model"
)

type RecipeStoreSuite struct {
	suite.Suite
	newStore func(ids IDGenerator) (RecipeStore, func() error)
	store    RecipeStore
	close    func() error
	ctx      context.Context
}

func (s *RecipeStoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store, s.close = s.newStore(&CounterGenerator{})
}

func (s *RecipeStoreSuite) TearDownTest() {
	s.NoError(s.close())
}

func (s *RecipeStoreSuite) create(name string, ingredients ...string) *model.Recipe {
	r, err := s.store.Create(s.ctx, model.NewRecipeInput(name, ingredients))
	s.Require().NoError(err)
	return r
}

func (s *RecipeStoreSuite) ids() []string {
	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func (s *RecipeStoreSuite) TestListEmpty() {
	list, err := s.store.List(s.ctx)
	s.NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *RecipeStoreSuite) TestCreate() {
	r := s.create("apple pie", "apples", "crust")

	s.NotEmpty(r.ID)
	s.Equal("apple pie", r.Name)
	s.ElementsMatch([]string{"apples", "crust"}, []string(r.Ingredients))
}

func (s *RecipeStoreSuite) TestCreateEmptyIngredients() {
	r := s.create("water")
	s.NotNil(r.Ingredients)
	s.Empty(r.Ingredients)

	got, err := s.store.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.NotNil(got.Ingredients)
}

func (s *RecipeStoreSuite) TestCreateValidation() {
	name := "soup"
	blank := "   "
	ingredients := []string{"water"}

	tests := []struct {
		name  string
		input model.RecipeInput
		field string
	}{
		{"missing name", model.RecipeInput{Ingredients: &ingredients}, "name"},
		{"blank name", model.RecipeInput{Name: &blank, Ingredients: &ingredients}, "name"},
		{"missing ingredients", model.RecipeInput{Name: &name}, "ingredients"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			r, err := s.store.Create(s.ctx, tt.input)
			s.Nil(r)
			s.ErrorIs(err, ErrValidation)

			var verr *ValidationError
			s.Require().True(errors.As(err, &verr))
			s.Equal(tt.field, verr.Field)
		})
	}

	n, err := s.store.Len(s.ctx)
	s.NoError(err)
	s.Zero(n)
}

func (s *RecipeStoreSuite) TestCreateAssignsFreshIDs() {
	for i := 0; i < 10; i++ {
		before := s.ids()
		r := s.create(fmt.Sprintf("recipe %d", i), "x")
		s.NotContains(before, r.ID)
	}
}

func (s *RecipeStoreSuite) TestIDsNotReusedAfterDelete() {
	a := s.create("a")
	b := s.create("b")
	s.Require().NoError(s.store.Delete(s.ctx, b.ID))

	c := s.create("c")
	s.NotEqual(a.ID, c.ID)
	s.NotEqual(b.ID, c.ID)
}

func (s *RecipeStoreSuite) TestListInsertionOrder() {
	a := s.create("a")
	b := s.create("b")
	c := s.create("c")
	s.Equal([]string{a.ID, b.ID, c.ID}, s.ids())

	s.Require().NoError(s.store.Delete(s.ctx, b.ID))
	d := s.create("d")
	s.Equal([]string{a.ID, c.ID, d.ID}, s.ids())
}

func (s *RecipeStoreSuite) TestUpdate() {
	r := s.create("apple pie", "apples", "crust")

	err := s.store.Update(s.ctx, r.ID, model.NewRecipeInput("blueberry pie", []string{"blueberries", "crust"}))
	s.Require().NoError(err)

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(r.ID, list[0].ID)
	s.Equal("blueberry pie", list[0].Name)
	s.Equal(model.StringArray{"blueberries", "crust"}, list[0].Ingredients)
}

func (s *RecipeStoreSuite) TestUpdateMatchingBodyID() {
	r := s.create("apple pie", "apples")

	in := model.NewRecipeInput("pear pie", []string{"pears"})
	in.ID = r.ID
	s.NoError(s.store.Update(s.ctx, r.ID, in))
}

func (s *RecipeStoreSuite) TestUpdateMismatchedBodyID() {
	r := s.create("apple pie", "apples")

	in := model.NewRecipeInput("pear pie", []string{"pears"})
	in.ID = "something-else"
	err := s.store.Update(s.ctx, r.ID, in)
	s.ErrorIs(err, ErrValidation)

	got, err := s.store.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("apple pie", got.Name)
}

func (s *RecipeStoreSuite) TestUpdateInvalidPayload() {
	r := s.create("apple pie", "apples")

	name := ""
	err := s.store.Update(s.ctx, r.ID, model.RecipeInput{Name: &name})
	s.ErrorIs(err, ErrValidation)

	got, err := s.store.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("apple pie", got.Name)
	s.Equal(model.StringArray{"apples"}, got.Ingredients)
}

func (s *RecipeStoreSuite) TestUpdateNotFound() {
	r := s.create("apple pie", "apples")
	before, err := s.store.List(s.ctx)
	s.Require().NoError(err)

	err = s.store.Update(s.ctx, "missing", model.NewRecipeInput("x", nil))
	s.ErrorIs(err, ErrNotFound)

	var nf *NotFoundError
	s.Require().True(errors.As(err, &nf))
	s.Equal("missing", nf.ID)

	after, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal(before, after)
	s.Equal(r.ID, after[0].ID)
}

func (s *RecipeStoreSuite) TestUpdateNotFoundWinsOverValidation() {
	err := s.store.Update(s.ctx, "missing", model.RecipeInput{})
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecipeStoreSuite) TestDelete() {
	a := s.create("a")
	b := s.create("b")

	s.Require().NoError(s.store.Delete(s.ctx, a.ID))
	s.Equal([]string{b.ID}, s.ids())

	_, err := s.store.Get(s.ctx, a.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RecipeStoreSuite) TestDeleteNotFound() {
	s.create("a")

	s.ErrorIs(s.store.Delete(s.ctx, "missing"), ErrNotFound)
	n, err := s.store.Len(s.ctx)
	s.NoError(err)
	s.Equal(1, n)
}

func (s *RecipeStoreSuite) TestDeleteTwice() {
	a := s.create("a")
	s.Require().NoError(s.store.Delete(s.ctx, a.ID))
	s.ErrorIs(s.store.Delete(s.ctx, a.ID), ErrNotFound)
}

func (s *RecipeStoreSuite) TestLenTracksCreatesMinusDeletes() {
	var live []string
	for i := 0; i < 8; i++ {
		live = append(live, s.create(fmt.Sprintf("r%d", i)).ID)
		if i%3 == 2 {
			s.Require().NoError(s.store.Delete(s.ctx, live[0]))
			live = live[1:]
		}
	}

	n, err := s.store.Len(s.ctx)
	s.NoError(err)
	s.Equal(len(live), n)
	s.Equal(live, s.ids())
}

func (s *RecipeStoreSuite) TestReturnedRecordsAreCopies() {
	r := s.create("a", "x")
	r.Ingredients[0] = "mutated"
	r.Name = "mutated"

	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	list[0].Ingredients[0] = "mutated again"

	got, err := s.store.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("a", got.Name)
	s.Equal(model.StringArray{"x"}, got.Ingredients)
}

func (s *RecipeStoreSuite) TestInputSliceNotRetained() {
	ingredients := []string{"x"}
	name := "a"
	r, err := s.store.Create(s.ctx, model.RecipeInput{Name: &name, Ingredients: &ingredients})
	s.Require().NoError(err)

	ingredients[0] = "mutated"

	got, err := s.store.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(model.StringArray{"x"}, got.Ingredients)
}

func (s *RecipeStoreSuite) TestConcurrentCreates() {
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.store.Create(s.ctx, model.NewRecipeInput(fmt.Sprintf("r%d", i), []string{"x"}))
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	ids := s.ids()
	s.Len(ids, n)
	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	s.Len(seen, n)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &RecipeStoreSuite{
		newStore: func(ids IDGenerator) (RecipeStore, func() error) {
			return NewMemoryStore(ids), func() error { return nil }
		},
	})
}

func TestGormStore(t *testing.T) {
	suite.Run(t, &RecipeStoreSuite{
		newStore: func(ids IDGenerator) (RecipeStore, func() error) {
			s, err := NewGormStore(ids)
			require.NoError(t, err)
			return s, s.Close
		},
	})
}

func TestGormStoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	a, err := NewGormStore(nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewGormStore(nil)
	require.NoError(t, err)
	defer b.Close()

	_, err = a.Create(ctx, model.NewRecipeInput("only in a", nil))
	require.NoError(t, err)

	n, err := b.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStoreRejectsDuplicateGeneratedID(t *testing.T) {
	s := NewMemoryStore(IDGeneratorFunc(func() string { return "same" }))
	ctx := context.Background()

	_, err := s.Create(ctx, model.NewRecipeInput("a", nil))
	require.NoError(t, err)

	_, err = s.Create(ctx, model.NewRecipeInput("b", nil))
	assert.Error(t, err)

	n, _ := s.Len(ctx)
	assert.Equal(t, 1, n)
}

func TestOpen(t *testing.T) {
	for _, backend := range []string{"", BackendMemory, BackendSQLite} {
		s, closeFn, err := Open(backend, nil)
		require.NoError(t, err, backend)
		assert.NotNil(t, s)
		assert.NoError(t, closeFn())
	}

	_, _, err := Open("postgres", nil)
	assert.Error(t, err)
}
