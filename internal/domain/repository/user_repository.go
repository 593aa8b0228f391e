package repository

import (
	"context"
	"errors"

	"socialite/internal/domain/entity"
)

// Storage-level sentinel errors shared by all repository implementations.
// Services map these onto the API error taxonomy.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrVersionConflict signals a stale aggregate version on a conditional
	// write; callers re-fetch and retry.
	ErrVersionConflict = errors.New("version conflict")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
