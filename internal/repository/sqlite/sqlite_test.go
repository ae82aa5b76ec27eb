package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"recipe-api/internal/domain"
)

// newTestDB opens an in-memory database with the full schema applied.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewTokenRepository(db).Init(ctx))
	require.NoError(t, NewTagRepository(db).Init(ctx))
	require.NoError(t, NewIngredientRepository(db).Init(ctx))
	require.NoError(t, NewRecipeRepository(db).Init(ctx))
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:        email,
		PasswordHash: "$2a$04$notarealhashbutgoodenoughfortests",
		IsActive:     true,
	}
	_, err := NewUserRepository(db).Create(context.Background(), user)
	require.NoError(t, err)
	return user
}
