package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
	"recipe-api/internal/storage"
)

var (
	// ErrNameRequired indicates a tag or ingredient was submitted without a name.
	ErrNameRequired = errors.New("name is required")
	// ErrTitleRequired indicates a recipe was submitted without a title.
	ErrTitleRequired = errors.New("title is required")
	// ErrStorageUnavailable indicates no object storage is configured for images.
	ErrStorageUnavailable = errors.New("image storage is not configured")
)

// RecipeInput carries the writable recipe fields plus the IDs of owned tags
// and ingredients to link.
type RecipeInput struct {
	Title         string
	TimeMinutes   int
	Price         float64
	Link          string
	TagIDs        []int64
	IngredientIDs []int64
}

// RecipeService coordinates owner-scoped CRUD over tags, ingredients and
// recipes. Every operation takes the requesting user's ID and never exposes
// another user's records; a foreign ID behaves exactly like a missing one.
type RecipeService interface {
	CreateTag(ctx context.Context, userID int64, name string) (*domain.Tag, error)
	ListTags(ctx context.Context, userID int64) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, userID, id int64, name string) (*domain.Tag, error)
	DeleteTag(ctx context.Context, userID, id int64) error

	CreateIngredient(ctx context.Context, userID int64, name string) (*domain.Ingredient, error)
	ListIngredients(ctx context.Context, userID int64) ([]domain.Ingredient, error)
	UpdateIngredient(ctx context.Context, userID, id int64, name string) (*domain.Ingredient, error)
	DeleteIngredient(ctx context.Context, userID, id int64) error

	CreateRecipe(ctx context.Context, userID int64, input RecipeInput) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, id int64, input RecipeInput) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, id int64) error

	AttachImage(ctx context.Context, userID, id int64, filename string, body storage.Object) (*domain.Recipe, error)
	ImageURL(ctx context.Context, userID, id int64) (string, error)
}

type recipeService struct {
	tags        repository.TagRepository
	ingredients repository.IngredientRepository
	recipes     repository.RecipeRepository
	storage     storage.Service
	bucket      string
	keyPrefix   string
}

func NewRecipeService(
	tags repository.TagRepository,
	ingredients repository.IngredientRepository,
	recipes repository.RecipeRepository,
	store storage.Service,
	bucket, keyPrefix string,
) RecipeService {
	return &recipeService{
		tags:        tags,
		ingredients: ingredients,
		recipes:     recipes,
		storage:     store,
		bucket:      bucket,
		keyPrefix:   strings.Trim(keyPrefix, "/"),
	}
}

func (s *recipeService) CreateTag(ctx context.Context, userID int64, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	tag := &domain.Tag{UserID: userID, Name: name}
	if _, err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *recipeService) ListTags(ctx context.Context, userID int64) ([]domain.Tag, error) {
	return s.tags.ListByUser(ctx, userID)
}

func (s *recipeService) UpdateTag(ctx context.Context, userID, id int64, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	tag := &domain.Tag{ID: id, UserID: userID, Name: name}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *recipeService) DeleteTag(ctx context.Context, userID, id int64) error {
	return s.tags.Delete(ctx, userID, id)
}

func (s *recipeService) CreateIngredient(ctx context.Context, userID int64, name string) (*domain.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	ingredient := &domain.Ingredient{UserID: userID, Name: name}
	if _, err := s.ingredients.Create(ctx, ingredient); err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *recipeService) ListIngredients(ctx context.Context, userID int64) ([]domain.Ingredient, error) {
	return s.ingredients.ListByUser(ctx, userID)
}

func (s *recipeService) UpdateIngredient(ctx context.Context, userID, id int64, name string) (*domain.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	ingredient := &domain.Ingredient{ID: id, UserID: userID, Name: name}
	if err := s.ingredients.Update(ctx, ingredient); err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (s *recipeService) DeleteIngredient(ctx context.Context, userID, id int64) error {
	return s.ingredients.Delete(ctx, userID, id)
}

func (s *recipeService) CreateRecipe(ctx context.Context, userID int64, input RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.buildRecipe(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return s.recipes.Get(ctx, userID, recipe.ID)
}

func (s *recipeService) ListRecipes(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]domain.Recipe, error) {
	return s.recipes.ListByUser(ctx, userID, filter)
}

func (s *recipeService) GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	return s.recipes.Get(ctx, userID, id)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, userID, id int64, input RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.buildRecipe(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	recipe.ID = id

	if err := s.recipes.Update(ctx, recipe); err != nil {
		return nil, err
	}
	return s.recipes.Get(ctx, userID, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, userID, id int64) error {
	recipe, err := s.recipes.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, userID, id); err != nil {
		return err
	}

	// Every upload gets a fresh key, so sweep the whole prefix. Best effort;
	// the row is already gone.
	if s.storage != nil && s.bucket != "" && recipe.ImageKey != "" {
		if objects, err := s.storage.ListObjects(ctx, s.bucket, s.imagePrefix(id)); err == nil {
			for _, obj := range objects {
				_ = s.storage.Delete(ctx, s.bucket, obj.Key)
			}
		}
	}
	return nil
}

// buildRecipe validates the input and resolves tag/ingredient links through
// owner-scoped lookups, so linking a foreign record fails as not found.
func (s *recipeService) buildRecipe(ctx context.Context, userID int64, input RecipeInput) (*domain.Recipe, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	recipe := &domain.Recipe{
		UserID:      userID,
		Title:       title,
		TimeMinutes: input.TimeMinutes,
		Price:       input.Price,
		Link:        strings.TrimSpace(input.Link),
	}

	for _, tagID := range input.TagIDs {
		tag, err := s.tags.Get(ctx, userID, tagID)
		if err != nil {
			return nil, err
		}
		recipe.Tags = append(recipe.Tags, *tag)
	}
	for _, ingID := range input.IngredientIDs {
		ing, err := s.ingredients.Get(ctx, userID, ingID)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = append(recipe.Ingredients, *ing)
	}
	return recipe, nil
}

func (s *recipeService) AttachImage(ctx context.Context, userID, id int64, filename string, body storage.Object) (*domain.Recipe, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, ErrStorageUnavailable
	}

	// Ownership check before touching remote storage.
	existing, err := s.recipes.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key := s.imageKey(id, filename)
	if err := s.storage.Upload(ctx, s.bucket, key, body); err != nil {
		return nil, fmt.Errorf("upload recipe image: %w", err)
	}

	if err := s.recipes.SetImageKey(ctx, userID, id, key); err != nil {
		return nil, err
	}

	// The replaced object is orphaned once the new key is recorded.
	if existing.ImageKey != "" && existing.ImageKey != key {
		_ = s.storage.Delete(ctx, s.bucket, existing.ImageKey)
	}
	return s.recipes.Get(ctx, userID, id)
}

func (s *recipeService) ImageURL(ctx context.Context, userID, id int64) (string, error) {
	if s.storage == nil || s.bucket == "" {
		return "", ErrStorageUnavailable
	}

	recipe, err := s.recipes.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if recipe.ImageKey == "" {
		return "", fmt.Errorf("recipe image: %w", repository.ErrNotFound)
	}

	return s.storage.ObjectURL(ctx, s.bucket, recipe.ImageKey, 15*time.Minute)
}

// imageKey builds a unique object key, keeping the original extension.
func (s *recipeService) imageKey(recipeID int64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return s.imagePrefix(recipeID) + uuid.NewString() + ext
}

func (s *recipeService) imagePrefix(recipeID int64) string {
	prefix := fmt.Sprintf("recipes/%d/", recipeID)
	if s.keyPrefix != "" {
		prefix = s.keyPrefix + "/" + prefix
	}
	return prefix
}
