package ports

import (
	"context"

	"github.com/docvault/document-system/internal/core/domain"
)

// ListDocumentsFilter carries the query parameters for listing documents.
type ListDocumentsFilter struct {
	Viewer  domain.Viewer // only documents visible to Viewer are returned
	OwnerID string        // optional: restrict to one owner
	Search  string        // optional: case-insensitive match on title
	Page    int           // 1-based
	Limit   int
}

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	FindByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
	// List returns a page of documents matching filter and the total count.
	List(ctx context.Context, filter ListDocumentsFilter) ([]*domain.Document, int64, error)
}
