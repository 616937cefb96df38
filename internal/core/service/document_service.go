package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	// maxPage keeps (page-1)*limit far from overflow.
	maxPage          = 100000
	maxTitleLength   = 255
)

var _ ports.DocumentService = (*DocumentService)(nil)

type DocumentService struct {
	repo   ports.DocumentRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewDocumentService(repo ports.DocumentRepository, logger zerolog.Logger) *DocumentService {
	return &DocumentService{repo: repo, logger: logger, now: time.Now}
}

// Create stores a new document owned by owner. The owner's role is captured
// so role-scoped documents stay visible to that role.
func (s *DocumentService) Create(ctx context.Context, owner domain.Viewer, in ports.CreateDocumentInput) (*domain.Document, error) {
	access := in.Access
	if access == "" {
		access = domain.AccessPublic
	}

	now := s.now().UTC()
	doc := &domain.Document{
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		OwnerID:   owner.UserID,
		Access:    access,
		Role:      owner.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		s.logger.Error().Err(err).Msg("failed to create document")
		return nil, err
	}

	s.logger.Info().Str("document_id", doc.ID).Str("owner", owner.UserID).Msg("document created")
	return doc, nil
}

// Get returns the document if viewer may read it.
func (s *DocumentService) Get(ctx context.Context, viewer domain.Viewer, id string) (*domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.VisibleTo(viewer) {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

// List returns a page of documents visible to the viewer.
func (s *DocumentService) List(ctx context.Context, in ports.ListDocumentsInput) (*ports.ListDocumentsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	docs, total, err := s.repo.List(ctx, ports.ListDocumentsFilter{
		Viewer:  in.Viewer,
		OwnerID: in.OwnerID,
		Search:  strings.TrimSpace(in.Search),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListDocumentsResult{
		Items:      docs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Update applies in to the document. Only the owner or an admin may edit.
func (s *DocumentService) Update(ctx context.Context, viewer domain.Viewer, id string, in ports.UpdateDocumentInput) (*domain.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !doc.EditableBy(viewer) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		doc.Content = *in.Content
	}
	if in.Access != nil {
		doc.Access = *in.Access
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	doc.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes the document. Only the owner or an admin may delete.
func (s *DocumentService) Delete(ctx context.Context, viewer domain.Viewer, id string) error {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !doc.EditableBy(viewer) {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("document_id", id).Str("actor", viewer.UserID).Msg("document deleted")
	return nil
}

func validateDocument(doc *domain.Document) error {
	switch {
	case doc.Title == "":
		return &domain.ValidationError{Field: "title", Rule: domain.RuleRequired}
	case len(doc.Title) > maxTitleLength:
		return &domain.ValidationError{Field: "title", Value: doc.Title, Rule: domain.RuleInvalid}
	case doc.Content == "":
		return &domain.ValidationError{Field: "content", Rule: domain.RuleRequired}
	case !doc.Access.Valid():
		return &domain.ValidationError{Field: "access", Value: string(doc.Access), Rule: domain.RuleInvalid}
	}
	return nil
}
