package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray is a list of strings stored as a JSON array column
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}

	var items []string
	if err := json.Unmarshal(bytes, &items); err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	*a = items
	return nil
}

// MarshalJSON always encodes an array, never null.
func (a StringArray) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}

// Clone returns a copy that shares no backing array with a.
func (a StringArray) Clone() StringArray {
	out := make(StringArray, len(a))
	copy(out, a)
	return out
}

// Recipe is the stored recipe record
type Recipe struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Ingredients StringArray `json:"ingredients"`
}

// Clone returns a deep copy of the recipe
func (r Recipe) Clone() Recipe {
	return Recipe{
		ID:          r.ID,
		Name:        r.Name,
		Ingredients: r.Ingredients.Clone(),
	}
}

// RecipeInput is the payload accepted by create and update.
// Name and Ingredients are pointers so a missing field can be told apart from an empty one.
type RecipeInput struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name        *string   `json:"name" yaml:"name"`
	Ingredients *[]string `json:"ingredients" yaml:"ingredients"`
}

// NewRecipeInput builds an input from plain values
func NewRecipeInput(name string, ingredients []string) RecipeInput {
	if ingredients == nil {
		ingredients = []string{}
	}
	return RecipeInput{
		Name:        &name,
		Ingredients: &ingredients,
	}
}
