package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const createRecipesTables = `
CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	time_minutes INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL DEFAULT 0,
	link TEXT NOT NULL DEFAULT '',
	image_key TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_recipes_user_id ON recipes(user_id);

CREATE TABLE IF NOT EXISTS recipe_tags (
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (recipe_id, tag_id)
);

CREATE TABLE IF NOT EXISTS recipe_ingredients (
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_id INTEGER NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
	PRIMARY KEY (recipe_id, ingredient_id)
);
`

type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) repository.RecipeRepository {
	return &RecipeRepository{db: db}
}

func (r *RecipeRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRecipesTables); err != nil {
		return fmt.Errorf("create recipes tables: %w", err)
	}
	return nil
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (int64, error) {
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // safe no-op on commit

	res, err := tx.ExecContext(ctx, `
INSERT INTO recipes (user_id, title, time_minutes, price, link, image_key, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recipe.UserID,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.Link,
		recipe.ImageKey,
		recipe.CreatedAt,
		recipe.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recipe last insert id: %w", err)
	}
	recipe.ID = id

	if err := replaceLinks(ctx, tx, recipe); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return id, nil
}

func (r *RecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	recipe.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE recipes
SET title=?, time_minutes=?, price=?, link=?, updated_at=?
WHERE id=? AND user_id=?`,
		recipe.Title,
		recipe.TimeMinutes,
		recipe.Price,
		recipe.Link,
		recipe.UpdatedAt,
		recipe.ID,
		recipe.UserID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recipe rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update recipe: %w", repository.ErrNotFound)
	}

	if err := replaceLinks(ctx, tx, recipe); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// replaceLinks rewrites the tag/ingredient link rows for a recipe.
func replaceLinks(ctx context.Context, tx *sql.Tx, recipe *domain.Recipe) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id=?`, recipe.ID); err != nil {
		return fmt.Errorf("delete recipe tags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id=?`, recipe.ID); err != nil {
		return fmt.Errorf("delete recipe ingredients: %w", err)
	}

	for _, tag := range recipe.Tags {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)`,
			recipe.ID, tag.ID,
		); err != nil {
			return fmt.Errorf("insert recipe tag: %w", err)
		}
	}
	for _, ing := range recipe.Ingredients {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES (?, ?)`,
			recipe.ID, ing.ID,
		); err != nil {
			return fmt.Errorf("insert recipe ingredient: %w", err)
		}
	}
	return nil
}

func (r *RecipeRepository) ListByUser(ctx context.Context, userID int64, filter repository.RecipeFilter) ([]domain.Recipe, error) {
	query := `
SELECT DISTINCT r.id, r.user_id, r.title, r.time_minutes, r.price, r.link, r.image_key, r.created_at, r.updated_at
FROM recipes r`
	args := []any{}

	if len(filter.TagIDs) > 0 {
		query += `
JOIN recipe_tags rt ON rt.recipe_id = r.id AND rt.tag_id IN (` + placeholders(len(filter.TagIDs)) + `)`
		for _, id := range filter.TagIDs {
			args = append(args, id)
		}
	}
	if len(filter.IngredientIDs) > 0 {
		query += `
JOIN recipe_ingredients ri ON ri.recipe_id = r.id AND ri.ingredient_id IN (` + placeholders(len(filter.IngredientIDs)) + `)`
		for _, id := range filter.IngredientIDs {
			args = append(args, id)
		}
	}

	query += `
WHERE r.user_id = ?
ORDER BY r.id DESC`
	args = append(args, userID)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.Recipe
	for rows.Next() {
		var rec domain.Recipe
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Title,
			&rec.TimeMinutes,
			&rec.Price,
			&rec.Link,
			&rec.ImageKey,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	for i := range recipes {
		if err := r.loadLinks(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}
	return recipes, nil
}

func (r *RecipeRepository) Get(ctx context.Context, userID, id int64) (*domain.Recipe, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, title, time_minutes, price, link, image_key, created_at, updated_at
FROM recipes
WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var rec domain.Recipe
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.TimeMinutes,
		&rec.Price,
		&rec.Link,
		&rec.ImageKey,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recipe: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan recipe: %w", err)
	}

	if err := r.loadLinks(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RecipeRepository) SetImageKey(ctx context.Context, userID, id int64, imageKey string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE recipes SET image_key=?, updated_at=? WHERE id=? AND user_id=?`,
		imageKey,
		time.Now().UTC(),
		id,
		userID,
	)
	if err != nil {
		return fmt.Errorf("set recipe image: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set recipe image rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set recipe image: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM recipes WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete recipe: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *RecipeRepository) loadLinks(ctx context.Context, recipe *domain.Recipe) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT t.id, t.user_id, t.name
FROM tags t
JOIN recipe_tags rt ON rt.tag_id = t.id
WHERE rt.recipe_id = ?
ORDER BY t.name DESC`,
		recipe.ID,
	)
	if err != nil {
		return fmt.Errorf("load recipe tags: %w", err)
	}
	defer rows.Close()

	recipe.Tags = nil
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name); err != nil {
			return fmt.Errorf("scan recipe tag: %w", err)
		}
		recipe.Tags = append(recipe.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate recipe tags: %w", err)
	}

	ingRows, err := r.db.QueryContext(ctx, `
SELECT i.id, i.user_id, i.name
FROM ingredients i
JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
WHERE ri.recipe_id = ?
ORDER BY i.name DESC`,
		recipe.ID,
	)
	if err != nil {
		return fmt.Errorf("load recipe ingredients: %w", err)
	}
	defer ingRows.Close()

	recipe.Ingredients = nil
	for ingRows.Next() {
		var ing domain.Ingredient
		if err := ingRows.Scan(&ing.ID, &ing.UserID, &ing.Name); err != nil {
			return fmt.Errorf("scan recipe ingredient: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	if err := ingRows.Err(); err != nil {
		return fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
