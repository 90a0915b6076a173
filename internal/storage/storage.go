package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/all-in-auth/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations needed by the account service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Store is a UserStore backed by a resource that must be released.
type Store interface {
	UserStore
	Close() error
}
