package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
)

const createTagsTable = `
CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tags_user_id ON tags(user_id);
`

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) repository.TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTagsTable); err != nil {
		return fmt.Errorf("create tags table: %w", err)
	}
	return nil
}

func (r *TagRepository) Create(ctx context.Context, tag *domain.Tag) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO tags (user_id, name) VALUES (?, ?)`,
		tag.UserID,
		tag.Name,
	)
	if err != nil {
		return 0, fmt.Errorf("insert tag: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("tag last insert id: %w", err)
	}
	tag.ID = id
	return id, nil
}

func (r *TagRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, name
FROM tags
WHERE user_id = ?
ORDER BY name DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

func (r *TagRepository) Get(ctx context.Context, userID, id int64) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, name
FROM tags
WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	var tag domain.Tag
	if err := row.Scan(&tag.ID, &tag.UserID, &tag.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return &tag, nil
}

func (r *TagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE tags SET name = ? WHERE id = ? AND user_id = ?`,
		tag.Name,
		tag.ID,
		tag.UserID,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tag rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update tag: %w", repository.ErrNotFound)
	}
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM tags WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete tag rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete tag: %w", repository.ErrNotFound)
	}
	return nil
}
