package ports

import (
	"context"
	"time"

	"github.com/docvault/document-system/internal/pkg/token"
)

// TokenIssuer signs and verifies identity tokens.
type TokenIssuer interface {
	Issue(s token.Subject) (string, *token.Claims, error)
	Verify(raw string) (*token.Claims, error)
}

// TokenRevocations records tokens that were logged out before they expired.
type TokenRevocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
