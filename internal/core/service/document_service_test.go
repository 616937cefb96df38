package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

var (
	ownerViewer = domain.Viewer{UserID: "u1", Role: domain.RoleRegular}
	peerViewer  = domain.Viewer{UserID: "u2", Role: domain.RoleRegular}
	adminViewer = domain.Viewer{UserID: "u9", Role: domain.RoleAdmin}
)

func TestDocumentService_Create(t *testing.T) {
	repo := newStubDocumentRepo()
	svc := NewDocumentService(repo, zerolog.Nop())

	doc, err := svc.Create(context.Background(), ownerViewer, ports.CreateDocumentInput{
		Title:   "  Notes on the Analytical Engine ",
		Content: "The engine weaves algebraic patterns.",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.ID == "" || doc.OwnerID != "u1" || doc.Role != domain.RoleRegular {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Access != domain.AccessPublic {
		t.Fatalf("expected default public access, got %s", doc.Access)
	}
	if doc.Title != "Notes on the Analytical Engine" {
		t.Fatalf("expected trimmed title, got %q", doc.Title)
	}
}

func TestDocumentService_Create_Validation(t *testing.T) {
	svc := NewDocumentService(newStubDocumentRepo(), zerolog.Nop())

	cases := []struct {
		name  string
		in    ports.CreateDocumentInput
		field string
	}{
		{"missing title", ports.CreateDocumentInput{Content: "x"}, "title"},
		{"long title", ports.CreateDocumentInput{Title: strings.Repeat("x", maxTitleLength+1), Content: "x"}, "title"},
		{"missing content", ports.CreateDocumentInput{Title: "x"}, "content"},
		{"bad access", ports.CreateDocumentInput{Title: "x", Content: "y", Access: "secret"}, "access"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), ownerViewer, tc.in)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestDocumentService_Get_EnforcesAccess(t *testing.T) {
	repo := newStubDocumentRepo()
	svc := NewDocumentService(repo, zerolog.Nop())

	doc, _ := svc.Create(context.Background(), ownerViewer, ports.CreateDocumentInput{
		Title: "diary", Content: "private thoughts", Access: domain.AccessPrivate,
	})

	if _, err := svc.Get(context.Background(), peerViewer, doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for peer, got %v", err)
	}
	if _, err := svc.Get(context.Background(), adminViewer, doc.ID); err != nil {
		t.Fatalf("admin should read private doc: %v", err)
	}
	if _, err := svc.Get(context.Background(), ownerViewer, "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentService_List_Pagination(t *testing.T) {
	repo := newStubDocumentRepo()
	svc := NewDocumentService(repo, zerolog.Nop())
	for i := 0; i < 5; i++ {
		_, _ = svc.Create(context.Background(), ownerViewer, ports.CreateDocumentInput{Title: "doc", Content: "c"})
	}
	_, _ = svc.Create(context.Background(), ownerViewer, ports.CreateDocumentInput{Title: "hidden", Content: "c", Access: domain.AccessPrivate})

	res, err := svc.List(context.Background(), ports.ListDocumentsInput{Viewer: peerViewer, Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Total != 5 || res.TotalPages != 3 || len(res.Items) != 2 || res.Page != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d page=%d", res.Total, res.TotalPages, len(res.Items), res.Page)
	}

	res, _ = svc.List(context.Background(), ports.ListDocumentsInput{Viewer: peerViewer, Page: 0, Limit: 1000})
	if res.Page != 1 || res.Limit != maxPageLimit {
		t.Fatalf("expected normalised page/limit, got %d/%d", res.Page, res.Limit)
	}
	if repo.lastList.Limit != maxPageLimit {
		t.Fatalf("repo received limit %d", repo.lastList.Limit)
	}

	res, err = svc.List(context.Background(), ports.ListDocumentsInput{Viewer: peerViewer, Page: math.MaxInt, Limit: maxPageLimit})
	if err != nil {
		t.Fatalf("list far page: %v", err)
	}
	if res.Page != maxPage || repo.lastList.Page != maxPage || len(res.Items) != 0 {
		t.Fatalf("expected capped empty page, got page=%d repo=%d items=%d", res.Page, repo.lastList.Page, len(res.Items))
	}

	res, _ = svc.List(context.Background(), ports.ListDocumentsInput{Viewer: peerViewer})
	if res.Limit != defaultPageLimit || res.TotalPages != 1 {
		t.Fatalf("expected default limit, got %d (pages %d)", res.Limit, res.TotalPages)
	}
}

func TestDocumentService_UpdateAndDelete(t *testing.T) {
	repo := newStubDocumentRepo()
	svc := NewDocumentService(repo, zerolog.Nop())
	doc, _ := svc.Create(context.Background(), ownerViewer, ports.CreateDocumentInput{Title: "draft", Content: "v1"})

	title := "final"
	if _, err := svc.Update(context.Background(), peerViewer, doc.ID, ports.UpdateDocumentInput{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for peer update, got %v", err)
	}

	access := domain.AccessRole
	updated, err := svc.Update(context.Background(), ownerViewer, doc.ID, ports.UpdateDocumentInput{Title: &title, Access: &access})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "final" || updated.Access != domain.AccessRole || updated.Content != "v1" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := svc.Delete(context.Background(), peerViewer, doc.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for peer delete, got %v", err)
	}
	if err := svc.Delete(context.Background(), adminViewer, doc.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, ok := repo.docs[doc.ID]; ok {
		t.Fatalf("document should be gone")
	}
}
