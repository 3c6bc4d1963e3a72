package ports

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// UserService defines the interface for user business logic
type UserService interface {
	EnsureDefaultUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error)
	GetUser(ctx context.Context, id int64) (*user.User, error)
}
