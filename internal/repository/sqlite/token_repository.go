package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const createTokensTable = `
CREATE TABLE IF NOT EXISTS auth_tokens (
	key TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NULL
);
`

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) repository.TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTokensTable); err != nil {
		return fmt.Errorf("create auth_tokens table: %w", err)
	}
	return nil
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.Token) error {
	token.CreatedAt = time.Now().UTC()

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO auth_tokens (key, user_id, created_at, expires_at)
VALUES (?, ?, ?, ?)`,
		token.Key,
		token.UserID,
		token.CreatedAt,
		token.ExpiresAt,
	); err != nil {
		return mapConstraintErr(err, "insert token")
	}
	return nil
}

func (r *TokenRepository) GetByKey(ctx context.Context, key string) (*domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT key, user_id, created_at, expires_at
FROM auth_tokens
WHERE key = ?`,
		key,
	)
	return scanToken(row)
}

func (r *TokenRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT key, user_id, created_at, expires_at
FROM auth_tokens
WHERE user_id = ?`,
		userID,
	)
	return scanToken(row)
}

func (r *TokenRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM auth_tokens WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func scanToken(row interface {
	Scan(dest ...any) error
}) (*domain.Token, error) {
	var token domain.Token
	if err := row.Scan(
		&token.Key,
		&token.UserID,
		&token.CreatedAt,
		&token.ExpiresAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return &token, nil
}
