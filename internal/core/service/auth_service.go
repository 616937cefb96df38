package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
	"github.com/docvault/document-system/internal/pkg/token"
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService implements signup, login and logout on top of UserService.
type AuthService struct {
	users       *UserService
	roles       ports.RoleRepository
	revocations ports.TokenRevocations
	log         zerolog.Logger
}

func NewAuthService(users *UserService, roles ports.RoleRepository, revocations ports.TokenRevocations, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, roles: roles, revocations: revocations, log: log}
}

// Signup creates an account with the default regular role and issues a
// token for it.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	user := &domain.User{
		Email:    in.Email,
		Username: in.Username,
	}
	user.SetFullName(in.FullName)
	user.SetPassword(in.Password)

	role, err := s.roles.FindByTitle(ctx, domain.RoleRegular)
	switch {
	case err == nil:
		user.RoleID = role.ID
		user.Role = role
	case errors.Is(err, domain.ErrRoleNotFound):
		s.log.Warn().Str("role", domain.RoleRegular).Msg("default role missing, creating user without role")
	default:
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user signed up")

	return s.result(user)
}

// Login authenticates by username or email. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, login, password string) (*ports.AuthResult, error) {
	if login == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindOne(ctx, ports.UserFilter{Login: login, IncludePassword: true})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.users.ValidatePassword(user, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Debug().Str("user_id", user.ID).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	// The hash is not needed past this point.
	user.Password = ""

	return s.result(user)
}

// Logout revokes the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *token.Claims) error {
	if claims == nil || claims.ID == "" {
		return token.ErrInvalid
	}
	if claims.ExpiresAt == nil {
		return token.ErrInvalid
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}
	s.log.Info().Str("user_id", claims.UserID).Msg("token revoked")
	return nil
}

func (s *AuthService) result(user *domain.User) (*ports.AuthResult, error) {
	signed, claims, err := s.users.issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}
