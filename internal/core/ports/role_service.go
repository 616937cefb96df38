package ports

import (
	"context"

	"github.com/docvault/document-system/internal/core/domain"
)

type RoleService interface {
	// Initialize creates the default roles that are missing. Safe to call
	// more than once.
	Initialize(ctx context.Context) error
	List(ctx context.Context) ([]*domain.Role, error)
	FindByTitle(ctx context.Context, title string) (*domain.Role, error)
}
