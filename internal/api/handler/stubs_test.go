package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/docvault/document-system/internal/api/middleware"
	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
	"github.com/docvault/document-system/internal/pkg/token"
)

type stubAuthService struct {
	signupFn func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error)
	loginFn  func(ctx context.Context, login, password string) (*ports.AuthResult, error)
	logoutFn func(ctx context.Context, claims *token.Claims) error
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, login, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, login, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *token.Claims) error {
	return s.logoutFn(ctx, claims)
}

type stubUserService struct {
	ports.UserService // unimplemented methods panic

	findByIDFn func(ctx context.Context, id string) (*domain.User, error)
	findFn     func(ctx context.Context, f ports.UserFilter) ([]*domain.User, error)
	updateFn   func(ctx context.Context, actor domain.Viewer, id string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, actor domain.Viewer, id string) error
}

func (s *stubUserService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.findByIDFn(ctx, id)
}

func (s *stubUserService) Find(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
	return s.findFn(ctx, f)
}

func (s *stubUserService) Update(ctx context.Context, actor domain.Viewer, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, actor domain.Viewer, id string) error {
	return s.deleteFn(ctx, actor, id)
}

type stubDocumentService struct {
	createFn func(ctx context.Context, owner domain.Viewer, in ports.CreateDocumentInput) (*domain.Document, error)
	getFn    func(ctx context.Context, viewer domain.Viewer, id string) (*domain.Document, error)
	listFn   func(ctx context.Context, in ports.ListDocumentsInput) (*ports.ListDocumentsResult, error)
	updateFn func(ctx context.Context, viewer domain.Viewer, id string, in ports.UpdateDocumentInput) (*domain.Document, error)
	deleteFn func(ctx context.Context, viewer domain.Viewer, id string) error
}

func (s *stubDocumentService) Create(ctx context.Context, owner domain.Viewer, in ports.CreateDocumentInput) (*domain.Document, error) {
	return s.createFn(ctx, owner, in)
}

func (s *stubDocumentService) Get(ctx context.Context, viewer domain.Viewer, id string) (*domain.Document, error) {
	return s.getFn(ctx, viewer, id)
}

func (s *stubDocumentService) List(ctx context.Context, in ports.ListDocumentsInput) (*ports.ListDocumentsResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubDocumentService) Update(ctx context.Context, viewer domain.Viewer, id string, in ports.UpdateDocumentInput) (*domain.Document, error) {
	return s.updateFn(ctx, viewer, id, in)
}

func (s *stubDocumentService) Delete(ctx context.Context, viewer domain.Viewer, id string) error {
	return s.deleteFn(ctx, viewer, id)
}

// newContext builds an echo context with the validator registered. A
// non-empty viewer user id simulates the Auth middleware.
func newContext(method, target string, body io.Reader, viewer domain.Viewer) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if viewer.UserID != "" {
		c.Set(middleware.ContextUserID, viewer.UserID)
		c.Set(middleware.ContextRole, viewer.Role)
	}
	return c, rec
}

// expectHTTPError asserts err is an echo.HTTPError with code.
func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}

