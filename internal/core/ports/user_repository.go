package ports

import (
	"context"

	"github.com/docvault/document-system/internal/core/domain"
)

// UserFilter selects users. Empty fields are ignored; Login matches either
// the username or the email. The password hash is only read back when
// IncludePassword is set.
type UserFilter struct {
	Email           string
	Username        string
	Login           string
	RoleID          string
	IncludePassword bool
}

// UserRepository persists users. Implementations return records with RoleID
// set and Role unresolved; resolution is the service's job.
type UserRepository interface {
	// Insert stores a new user and sets its ID. A unique-index violation is
	// reported as a *domain.ValidationError with Rule domain.RuleUnique.
	Insert(ctx context.Context, user *domain.User) error
	// Update overwrites the stored fields of an existing user. An empty
	// Password leaves the stored hash untouched.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string, includePassword bool) (*domain.User, error)
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	Find(ctx context.Context, filter UserFilter) ([]*domain.User, error)
}
