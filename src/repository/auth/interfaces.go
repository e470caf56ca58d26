package auth_repo

import (
	"context"

	domain "github.com/drive-clone/api/src/domain/auth"
)

// UserRepositoryInterface defines contract for user repository operations
type UserRepositoryInterface interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, email, name, passwordHash string, provider domain.AuthProvider) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, name, passwordHash *string) (*domain.User, error)
}
