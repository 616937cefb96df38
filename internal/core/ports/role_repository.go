package ports

import (
	"context"

	"github.com/docvault/document-system/internal/core/domain"
)

// RoleRepository persists roles.
type RoleRepository interface {
	// EnsureTitles creates a role for every title that does not exist yet.
	// Repeated calls never create duplicates.
	EnsureTitles(ctx context.Context, titles []string) error
	FindByID(ctx context.Context, id string) (*domain.Role, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Role, error)
	FindByTitle(ctx context.Context, title string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
}
