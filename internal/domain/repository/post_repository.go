package repository

import (
	"context"

	"socialite/internal/domain/entity"
)

// PostRepository defines the interface for post aggregate persistence.
// Update writes the whole aggregate conditionally on its version and returns
// ErrVersionConflict when the stored version moved on.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	List(ctx context.Context) ([]*entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
}
