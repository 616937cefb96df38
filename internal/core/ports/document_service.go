package ports

import (
	"context"

	"github.com/docvault/document-system/internal/core/domain"
)

// CreateDocumentInput carries the data for a new document.
type CreateDocumentInput struct {
	Title   string
	Content string
	Access  domain.Access // defaults to domain.AccessPublic
}

// UpdateDocumentInput carries optional document changes. Nil fields are
// left unchanged.
type UpdateDocumentInput struct {
	Title   *string
	Content *string
	Access  *domain.Access
}

// ListDocumentsInput carries all parameters for the list endpoint.
type ListDocumentsInput struct {
	Viewer  domain.Viewer
	OwnerID string
	Search  string
	Page    int
	Limit   int
}

// ListDocumentsResult is returned by List.
type ListDocumentsResult struct {
	Items      []*domain.Document
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DocumentService defines use-case operations for documents.
type DocumentService interface {
	Create(ctx context.Context, owner domain.Viewer, in CreateDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, viewer domain.Viewer, id string) (*domain.Document, error)
	List(ctx context.Context, in ListDocumentsInput) (*ListDocumentsResult, error)
	Update(ctx context.Context, viewer domain.Viewer, id string, in UpdateDocumentInput) (*domain.Document, error)
	Delete(ctx context.Context, viewer domain.Viewer, id string) error
}
