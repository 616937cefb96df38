package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
	"github.com/docvault/document-system/internal/pkg/password"
	"github.com/docvault/document-system/internal/pkg/token"
)

var _ ports.UserService = (*UserService)(nil)

var errPasswordNotLoaded = errors.New("user: password hash was not loaded")

// PasswordHasher abstracts the credential hasher (bcrypt).
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, storedHash string) (bool, error)
}

// UserService composes the user repository with the lifecycle steps that
// surround it: role resolution after every fetch, validation and
// hash-on-change before every write.
type UserService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   PasswordHasher
	tokens   ports.TokenIssuer
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// Save validates and persists user. The password is hashed only when it was
// set since the record was loaded, so re-saving never hashes a hash.
func (s *UserService) Save(ctx context.Context, user *domain.User) error {
	user.Username = strings.TrimSpace(user.Username)

	if err := s.validateUser(user); err != nil {
		return err
	}

	if user.PasswordModified() {
		hash, err := s.hasher.Hash(user.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.MarkPasswordHashed(hash)
	}

	now := s.now().UTC()
	user.UpdatedAt = now
	if user.ID == "" {
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		return s.users.Insert(ctx, user)
	}
	return s.users.Update(ctx, user)
}

func (s *UserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.resolveRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindOne(ctx context.Context, filter ports.UserFilter) (*domain.User, error) {
	user, err := s.users.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.resolveRoles(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Find(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	users, err := s.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.resolveRoles(ctx, users...); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies in to the user identified by id. Users may edit themselves;
// admins may edit anyone and are the only ones allowed to change roles.
func (s *UserService) Update(ctx context.Context, actor domain.Viewer, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if !actor.IsAdmin() && actor.UserID != id {
		return nil, domain.ErrForbidden
	}
	if in.Role != nil && !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Username != nil {
		user.Username = *in.Username
	}
	if in.FullName != nil {
		user.SetFullName(*in.FullName)
	}
	if in.Password != nil {
		user.SetPassword(*in.Password)
	}
	if in.Role != nil {
		if !domain.IsDefaultRole(*in.Role) {
			return nil, &domain.ValidationError{Field: "role", Value: *in.Role, Rule: domain.RuleInvalid}
		}
		role, err := s.roles.FindByTitle(ctx, *in.Role)
		if err != nil {
			return nil, err
		}
		user.RoleID = role.ID
		user.Role = role
	}

	if err := s.Save(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("actor", actor.UserID).Msg("user updated")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor domain.Viewer, id string) error {
	if !actor.IsAdmin() && actor.UserID != id {
		return domain.ErrForbidden
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Str("actor", actor.UserID).Msg("user deleted")
	return nil
}

// ValidatePassword reports whether plaintext matches the user's stored hash.
// The user must have been fetched with IncludePassword.
func (s *UserService) ValidatePassword(user *domain.User, plaintext string) (bool, error) {
	if user.Password == "" || user.PasswordModified() {
		return false, errPasswordNotLoaded
	}
	return s.hasher.Verify(plaintext, user.Password)
}

// GenerateJWT issues a signed token for user valid for the issuer's TTL.
func (s *UserService) GenerateJWT(user *domain.User) (string, error) {
	signed, _, err := s.issue(user)
	return signed, err
}

func (s *UserService) issue(user *domain.User) (string, *token.Claims, error) {
	return s.tokens.Issue(token.Subject{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.RoleTitle(),
	})
}

// resolveRoles replaces each user's RoleID with the referenced Role. Roles
// are loaded once per distinct id. A dangling reference leaves Role nil.
func (s *UserService) resolveRoles(ctx context.Context, users ...*domain.User) error {
	seen := make(map[string]struct{}, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.RoleID == "" {
			continue
		}
		if _, ok := seen[u.RoleID]; ok {
			continue
		}
		seen[u.RoleID] = struct{}{}
		ids = append(ids, u.RoleID)
	}
	if len(ids) == 0 {
		return nil
	}

	roles, err := s.roles.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[string]*domain.Role, len(roles))
	for _, r := range roles {
		byID[r.ID] = r
	}
	for _, u := range users {
		u.Role = byID[u.RoleID]
	}
	return nil
}

// validateUser checks declared field constraints and reports the first
// violation as a *domain.ValidationError.
func (s *UserService) validateUser(user *domain.User) error {
	if err := s.validate.Struct(user); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return &domain.ValidationError{
				Field: strings.ToLower(fe.Field()),
				Value: fmt.Sprintf("%v", fe.Value()),
				Rule:  fe.Tag(),
			}
		}
		return err
	}

	// A new record needs a password; an existing one only when it is being changed.
	if (user.ID == "" || user.PasswordModified()) && user.Password == "" {
		return &domain.ValidationError{Field: "password", Rule: domain.RuleRequired}
	}
	// bcrypt counts bytes, so multi-byte passwords can pass a character limit.
	if user.PasswordModified() && len(user.Password) > password.MaxLength {
		return &domain.ValidationError{Field: "password", Rule: domain.RuleInvalid}
	}
	return nil
}
