package repository

import (
	"context"

	"recipe-api/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// TokenRepository stores opaque auth tokens keyed by their credential string.
type TokenRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, token *domain.Token) error
	GetByKey(ctx context.Context, key string) (*domain.Token, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Token, error)
	Delete(ctx context.Context, key string) error
}
