package repository

import (
	"context"

	"recipe-api/internal/domain"
)

// TagRepository exposes persistence operations for Tag records. Every read and
// write is scoped to the owning user at the query level.
type TagRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, tag *domain.Tag) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Tag, error)
	Get(ctx context.Context, userID, id int64) (*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, userID, id int64) error
}

// IngredientRepository exposes persistence operations for Ingredient records,
// with the same per-user scoping as tags.
type IngredientRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, ingredient *domain.Ingredient) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Ingredient, error)
	Get(ctx context.Context, userID, id int64) (*domain.Ingredient, error)
	Update(ctx context.Context, ingredient *domain.Ingredient) error
	Delete(ctx context.Context, userID, id int64) error
}

// RecipeFilter narrows recipe listings to those linked to any of the given
// tag or ingredient IDs. Empty slices leave the listing unfiltered.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// RecipeRepository exposes persistence operations for Recipe aggregates,
// including their tag/ingredient links.
type RecipeRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, recipe *domain.Recipe) (int64, error)
	ListByUser(ctx context.Context, userID int64, filter RecipeFilter) ([]domain.Recipe, error)
	Get(ctx context.Context, userID, id int64) (*domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) error
	SetImageKey(ctx context.Context, userID, id int64, imageKey string) error
	Delete(ctx context.Context, userID, id int64) error
}
