// Package store holds the recipe records for the lifetime of the process.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/recipes-api/internal/model"
)

var (
	// ErrNotFound matches every NotFoundError via errors.Is
	ErrNotFound = errors.New("recipe not found")
	// ErrValidation matches every ValidationError via errors.Is
	ErrValidation = errors.New("invalid recipe")
)

// RecipeStore is the authoritative set of recipes
type RecipeStore interface {
	// List returns every recipe in insertion order.
	List(ctx context.Context) ([]model.Recipe, error)
	// Get returns the recipe with the given id.
	Get(ctx context.Context, id string) (*model.Recipe, error)
	// Create validates the input, assigns a new id and appends the record.
	Create(ctx context.Context, in model.RecipeInput) (*model.Recipe, error)
	// Update replaces name and ingredients of an existing recipe.
	Update(ctx context.Context, id string, in model.RecipeInput) error
	// Delete removes an existing recipe.
	Delete(ctx context.Context, id string) error
	// Len returns the number of stored recipes.
	Len(ctx context.Context) (int, error)
}

// ValidationError reports a missing or malformed input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports an id absent from the store
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("recipe %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// validateInput checks the fields shared by create and update and returns
// the normalized name and a private copy of the ingredients.
func validateInput(in model.RecipeInput) (string, model.StringArray, error) {
	if in.Name == nil {
		return "", nil, &ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(*in.Name) == "" {
		return "", nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if in.Ingredients == nil {
		return "", nil, &ValidationError{Field: "ingredients", Message: "is required"}
	}
	return *in.Name, model.StringArray(*in.Ingredients).Clone(), nil
}

func validateUpdate(id string, in model.RecipeInput) (string, model.StringArray, error) {
	if in.ID != "" && in.ID != id {
		return "", nil, &ValidationError{
			Field:   "id",
			Message: fmt.Sprintf("request path id (%s) and request body id (%s) must match", id, in.ID),
		}
	}
	return validateInput(in)
}
