package ports

import (
	"context"
	"time"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/pkg/token"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	// Login authenticates by username or email.
	Login(ctx context.Context, login, password string) (*AuthResult, error)
	// Logout revokes the token described by claims until it would expire.
	Logout(ctx context.Context, claims *token.Claims) error
}
