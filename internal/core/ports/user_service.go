package ports

import (
	"context"

	"github.com/docvault/document-system/internal/core/domain"
)

// UpdateUserInput carries the optional fields of a user update. Nil fields
// are left unchanged.
type UpdateUserInput struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
	Role     *string // role title; only admins may change it
}

// UserService owns the user record lifecycle. Every fetch resolves the
// user's role; Save hashes the password only when it was modified.
type UserService interface {
	Save(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	Find(ctx context.Context, filter UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, actor domain.Viewer, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Viewer, id string) error

	ValidatePassword(user *domain.User, plaintext string) (bool, error)
	GenerateJWT(user *domain.User) (string, error)
}
