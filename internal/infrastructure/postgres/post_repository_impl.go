package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"socialite/internal/domain/entity"
	"socialite/internal/domain/repository"
)

// PostRepository persists the post aggregate as a single row: scalar columns
// plus JSONB documents for the embedded comments and likes. The version
// column backs optimistic concurrency on read-modify-write mutations.
type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	comments, likes, err := marshalEmbedded(p)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (body, user_id, username, comments, likes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, version, created_at
	`, p.Body, p.UserID, p.Username, comments, likes)

	return row.Scan(&p.ID, &p.Version, &p.CreatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, body, user_id, username, comments, likes, version, created_at
		FROM posts
		WHERE id = $1
	`, id)

	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) List(ctx context.Context) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, body, user_id, username, comments, likes, version, created_at
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]*entity.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Update writes the embedded documents conditionally on the version the
// aggregate was read at. A zero-row result means either the post vanished or
// another writer got there first.
func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	comments, likes, err := marshalEmbedded(p)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET comments = $1, likes = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`, comments, likes, p.ID, p.Version)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}
	p.Version++
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func marshalEmbedded(p *entity.Post) ([]byte, []byte, error) {
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	if p.Likes == nil {
		p.Likes = []entity.Like{}
	}
	comments, err := json.Marshal(p.Comments)
	if err != nil {
		return nil, nil, err
	}
	likes, err := json.Marshal(p.Likes)
	if err != nil {
		return nil, nil, err
	}
	return comments, likes, nil
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	var comments, likes []byte
	if err := row.Scan(&p.ID, &p.Body, &p.UserID, &p.Username, &comments, &likes, &p.Version, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(likes, &p.Likes); err != nil {
		return nil, err
	}
	return p, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
