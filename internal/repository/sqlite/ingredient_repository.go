package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const createIngredientsTable = `
CREATE TABLE IF NOT EXISTS ingredients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ingredients_user_id ON ingredients(user_id);
`

type IngredientRepository struct {
	db *sql.DB
}

func NewIngredientRepository(db *sql.DB) repository.IngredientRepository {
	return &IngredientRepository{db: db}
}

func (r *IngredientRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createIngredientsTable); err != nil {
		return fmt.Errorf("create ingredients table: %w", err)
	}
	return nil
}

func (r *IngredientRepository) Create(ctx context.Context, ingredient *domain.Ingredient) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO ingredients (user_id, name) VALUES (?, ?)`,
		ingredient.UserID,
		ingredient.Name,
	)
	if err != nil {
		return 0, fmt.Errorf("insert ingredient: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ingredient last insert id: %w", err)
	}
	ingredient.ID = id
	return id, nil
}

func (r *IngredientRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name
FROM ingredients
WHERE user_id = ?
ORDER BY name DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []domain.Ingredient
	for rows.Next() {
		var ing domain.Ingredient
		if err := rows.Scan(&ing.ID, &ing.UserID, &ing.Name); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return ingredients, nil
}

func (r *IngredientRepository) Get(ctx context.Context, userID, id int64) (*domain.Ingredient, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name
FROM ingredients
WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var ing domain.Ingredient
	if err := row.Scan(&ing.ID, &ing.UserID, &ing.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ingredient: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan ingredient: %w", err)
	}
	return &ing, nil
}

func (r *IngredientRepository) Update(ctx context.Context, ingredient *domain.Ingredient) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE ingredients SET name = ? WHERE id = ? AND user_id = ?`,
		ingredient.Name,
		ingredient.ID,
		ingredient.UserID,
	)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ingredient rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update ingredient: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *IngredientRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM ingredients WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete ingredient: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ingredient rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete ingredient: %w", repository.ErrNotFound)
	}
	return nil
}
