package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pageza/recipes-api/internal/model"
)

// SeedFile is the YAML layout accepted by LoadSeed:
//
//	recipes:
//	  - name: boiled white rice
//	    ingredients: ["1 cup white rice", "2 cups water", "pinch of salt"]
type SeedFile struct {
	Recipes []model.RecipeInput `yaml:"recipes"`
}

// DefaultSeed is loaded when no seed file is configured
func DefaultSeed() []model.RecipeInput {
	return []model.RecipeInput{
		model.NewRecipeInput("boiled white rice", []string{"1 cup white rice", "2 cups water", "pinch of salt"}),
		model.NewRecipeInput("milkshake", []string{"2 tbsp cocoa", "2 cups vanilla ice cream", "1 cup milk"}),
	}
}

// LoadSeed reads seed recipes from a YAML file, or returns DefaultSeed for an empty path
func LoadSeed(path string) ([]model.RecipeInput, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes the YAML seed layout
func ParseSeed(data []byte) ([]model.RecipeInput, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return f.Recipes, nil
}

// Seed creates every input in order and stops at the first failure
func Seed(ctx context.Context, s RecipeStore, inputs []model.RecipeInput) ([]model.Recipe, error) {
	created := make([]model.Recipe, 0, len(inputs))
	for i, in := range inputs {
		r, err := s.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("seed recipe %d: %w", i, err)
		}
		created = append(created, *r)
	}
	return created, nil
}
