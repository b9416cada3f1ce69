package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/recipes-api/internal/model"
)

// recipeRow is the table layout used by GormStore. Seq preserves insertion order.
type recipeRow struct {
	Seq         uint              `gorm:"primaryKey;autoIncrement"`
	ID          string            `gorm:"size:64;not null;uniqueIndex"`
	Name        string            `gorm:"size:255;not null"`
	Ingredients model.StringArray `gorm:"type:text;not null;default:'[]'"`
}

func (recipeRow) TableName() string { return "recipes" }

func (r recipeRow) toModel() model.Recipe {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = model.StringArray{}
	}
	return model.Recipe{ID: r.ID, Name: r.Name, Ingredients: ingredients}
}

// GormStore keeps recipes in a private in-memory SQLite database
type GormStore struct {
	db  *gorm.DB
	ids IDGenerator
}

// GormOption configures a GormStore
type GormOption func(*gorm.Config)

// WithGormLogger replaces the default silent gorm logger
func WithGormLogger(l logger.Interface) GormOption {
	return func(c *gorm.Config) { c.Logger = l }
}

// NewGormStore opens a fresh in-memory database and migrates the recipes table
func NewGormStore(ids IDGenerator, opts ...GormOption) (*GormStore, error) {
	if ids == nil {
		ids = UUIDGenerator{}
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(cfg)
	}

	// shared cache keeps the database alive across pooled connections; the
	// random name keeps every store isolated
	dsn := fmt.Sprintf("file:recipes_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&recipeRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate recipes table: %w", err)
	}

	return &GormStore{db: db, ids: ids}, nil
}

// Close releases the underlying database; its contents are gone afterwards.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) List(ctx context.Context) ([]model.Recipe, error) {
	var rows []recipeRow
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	out := make([]model.Recipe, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*model.Recipe, error) {
	row, err := findRow(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	r := row.toModel()
	return &r, nil
}

func (s *GormStore) Create(ctx context.Context, in model.RecipeInput) (*model.Recipe, error) {
	name, ingredients, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	row := recipeRow{ID: s.ids.NewID(), Name: name, Ingredients: ingredients}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}

	r := row.toModel()
	return &r, nil
}

func (s *GormStore) Update(ctx context.Context, id string, in model.RecipeInput) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRow(tx, id); err != nil {
			return err
		}
		name, ingredients, err := validateUpdate(id, in)
		if err != nil {
			return err
		}

		err = tx.Model(&recipeRow{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":        name,
			"ingredients": ingredients,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return nil
	})
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&recipeRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{ID: id}
	}
	return nil
}

func (s *GormStore) Len(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&recipeRow{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return int(count), nil
}

func findRow(db *gorm.DB, id string) (*recipeRow, error) {
	var row recipeRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to fetch recipe: %w", err)
	}
	return &row, nil
}
