package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

func TestRecipeRepository_CreateWithLinks(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	user := createTestUser(t, db, "chef@example.com")

	ctx := context.Background()
	tag := &domain.Tag{UserID: user.ID, Name: "Vegan"}
	_, err := NewTagRepository(db).Create(ctx, tag)
	require.NoError(t, err)
	ing := &domain.Ingredient{UserID: user.ID, Name: "Chickpeas"}
	_, err = NewIngredientRepository(db).Create(ctx, ing)
	require.NoError(t, err)

	recipe := &domain.Recipe{
		UserID:      user.ID,
		Title:       "Chana Masala",
		TimeMinutes: 35,
		Price:       6.50,
		Link:        "https://example.com/chana",
		Tags:        []domain.Tag{*tag},
		Ingredients: []domain.Ingredient{*ing},
	}
	id, err := repo.Create(ctx, recipe)
	require.NoError(t, err)

	found, err := repo.Get(ctx, user.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "Chana Masala", found.Title)
	assert.Equal(t, 35, found.TimeMinutes)
	assert.InDelta(t, 6.50, found.Price, 0.001)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "Vegan", found.Tags[0].Name)
	require.Len(t, found.Ingredients, 1)
	assert.Equal(t, "Chickpeas", found.Ingredients[0].Name)
}

func TestRecipeRepository_ListScopedAndOrdered(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	owner := createTestUser(t, db, "mine@example.com")
	other := createTestUser(t, db, "theirs@example.com")

	ctx := context.Background()
	_, err := repo.Create(ctx, &domain.Recipe{UserID: other.ID, Title: "Their Soup"})
	require.NoError(t, err)
	first, err := repo.Create(ctx, &domain.Recipe{UserID: owner.ID, Title: "Pancakes"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &domain.Recipe{UserID: owner.ID, Title: "Waffles"})
	require.NoError(t, err)

	recipes, err := repo.ListByUser(ctx, owner.ID, repository.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	// Most recently created first.
	assert.Equal(t, second, recipes[0].ID)
	assert.Equal(t, first, recipes[1].ID)
}

func TestRecipeRepository_ListFilteredByTag(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	user := createTestUser(t, db, "filter@example.com")

	ctx := context.Background()
	vegan := &domain.Tag{UserID: user.ID, Name: "Vegan"}
	_, err := NewTagRepository(db).Create(ctx, vegan)
	require.NoError(t, err)

	tagged, err := repo.Create(ctx, &domain.Recipe{
		UserID: user.ID,
		Title:  "Falafel",
		Tags:   []domain.Tag{*vegan},
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Recipe{UserID: user.ID, Title: "Steak"})
	require.NoError(t, err)

	recipes, err := repo.ListByUser(ctx, user.ID, repository.RecipeFilter{TagIDs: []int64{vegan.ID}})
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, tagged, recipes[0].ID)
}

func TestRecipeRepository_UpdateReplacesLinks(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	user := createTestUser(t, db, "update@example.com")

	ctx := context.Background()
	tags := NewTagRepository(db)
	breakfast := &domain.Tag{UserID: user.ID, Name: "Breakfast"}
	_, err := tags.Create(ctx, breakfast)
	require.NoError(t, err)
	dinner := &domain.Tag{UserID: user.ID, Name: "Dinner"}
	_, err = tags.Create(ctx, dinner)
	require.NoError(t, err)

	recipe := &domain.Recipe{UserID: user.ID, Title: "Omelette", Tags: []domain.Tag{*breakfast}}
	id, err := repo.Create(ctx, recipe)
	require.NoError(t, err)

	recipe.ID = id
	recipe.Title = "Frittata"
	recipe.Tags = []domain.Tag{*dinner}
	require.NoError(t, repo.Update(ctx, recipe))

	found, err := repo.Get(ctx, user.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "Frittata", found.Title)
	require.Len(t, found.Tags, 1)
	assert.Equal(t, "Dinner", found.Tags[0].Name)
}

func TestRecipeRepository_SetImageKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	user := createTestUser(t, db, "image@example.com")

	ctx := context.Background()
	id, err := repo.Create(ctx, &domain.Recipe{UserID: user.ID, Title: "Ramen"})
	require.NoError(t, err)

	require.NoError(t, repo.SetImageKey(ctx, user.ID, id, "recipes/1/abc.jpg"))

	found, err := repo.Get(ctx, user.ID, id)
	require.NoError(t, err)
	assert.Equal(t, "recipes/1/abc.jpg", found.ImageKey)

	err = repo.SetImageKey(ctx, user.ID+1, id, "x.jpg")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecipeRepository_DeleteScoped(t *testing.T) {
	db := newTestDB(t)
	repo := NewRecipeRepository(db)
	owner := createTestUser(t, db, "del@example.com")
	other := createTestUser(t, db, "notdel@example.com")

	ctx := context.Background()
	id, err := repo.Create(ctx, &domain.Recipe{UserID: owner.ID, Title: "Secret Sauce"})
	require.NoError(t, err)

	err = repo.Delete(ctx, other.ID, id)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, owner.ID, id))
	_, err = repo.Get(ctx, owner.ID, id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
