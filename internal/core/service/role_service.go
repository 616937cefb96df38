package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

var _ ports.RoleService = (*RoleService)(nil)

// RoleService maintains the fixed role registry.
type RoleService struct {
	repo ports.RoleRepository
	log  zerolog.Logger
}

func NewRoleService(repo ports.RoleRepository, log zerolog.Logger) *RoleService {
	return &RoleService{repo: repo, log: log}
}

// Initialize ensures every default role exists. It is idempotent; callers at
// startup log a failure and carry on.
func (s *RoleService) Initialize(ctx context.Context) error {
	if err := s.repo.EnsureTitles(ctx, domain.DefaultRoles); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	s.log.Debug().Strs("roles", domain.DefaultRoles).Msg("default roles ensured")
	return nil
}

func (s *RoleService) List(ctx context.Context) ([]*domain.Role, error) {
	return s.repo.List(ctx)
}

func (s *RoleService) FindByTitle(ctx context.Context, title string) (*domain.Role, error) {
	return s.repo.FindByTitle(ctx, title)
}
