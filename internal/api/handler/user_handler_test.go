package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

var (
	regularViewer = domain.Viewer{UserID: "u1", Role: domain.RoleRegular}
	adminViewer   = domain.Viewer{UserID: "u9", Role: domain.RoleAdmin}
)

func TestUserHandler_Me(t *testing.T) {
	stub := &stubUserService{
		findByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id != "u1" {
				t.Fatalf("expected caller id, got %s", id)
			}
			return &domain.User{ID: "u1", Username: "ada", Name: domain.Name{LastName: "Lovelace"}}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodGet, "/users/me", nil, regularViewer)
	if err := handler.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.FullName == nil || *resp.FullName != "Lovelace" {
		t.Fatalf("expected single-part full name, got %v", resp.FullName)
	}

	c, _ = newContext(http.MethodGet, "/users/me", nil, domain.Viewer{})
	expectHTTPError(t, handler.Me(c), http.StatusUnauthorized)
}

func TestUserHandler_Get_SelfOrAdmin(t *testing.T) {
	stub := &stubUserService{
		findByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "someone"}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, _ := newContext(http.MethodGet, "/users/u2", nil, regularViewer)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := handler.Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, rec := newContext(http.MethodGet, "/users/u2", nil, adminViewer)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := handler.Get(c); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_List(t *testing.T) {
	stub := &stubUserService{
		findFn: func(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
			if f.Username != "ada" || f.IncludePassword {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return []*domain.User{{ID: "u1", Username: "ada"}}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodGet, "/users?username=ada", nil, adminViewer)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp []userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || len(resp) != 1 {
		t.Fatalf("unexpected body %s (%v)", rec.Body.String(), err)
	}
}

func TestUserHandler_Update(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, actor domain.Viewer, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if actor != regularViewer || id != "u1" {
				t.Fatalf("unexpected actor/id: %+v %s", actor, id)
			}
			if in.FullName == nil || *in.FullName != "Ada King" || in.Email != nil || in.Role != nil {
				t.Fatalf("unexpected input: %+v", in)
			}
			u := &domain.User{ID: id, Username: "ada"}
			u.SetFullName(*in.FullName)
			return u, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodPut, "/users/u1", strings.NewReader(`{"fullName":"Ada King"}`), regularViewer)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"fullName":"Ada King"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodPut, "/users/u1", strings.NewReader(`{"role":"superuser"}`), adminViewer)
	expectHTTPError(t, handler.Update(c), http.StatusBadRequest)
}

func TestUserHandler_Update_NormalizesEmail(t *testing.T) {
	var got string
	stub := &stubUserService{
		updateFn: func(ctx context.Context, actor domain.Viewer, id string, in ports.UpdateUserInput) (*domain.User, error) {
			if in.Email == nil {
				t.Fatalf("email not forwarded: %+v", in)
			}
			got = *in.Email
			return &domain.User{ID: id, Username: "ada", Email: got}, nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodPut, "/users/u1", strings.NewReader(`{"email":"  Ada@Example.COM "}`), regularViewer)
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"email":"ada@example.com"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserHandler_Delete(t *testing.T) {
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, actor domain.Viewer, id string) error {
			if id != "u2" {
				return domain.ErrUserNotFound
			}
			return nil
		},
	}
	handler := NewUserHandler(stub)

	c, rec := newContext(http.MethodDelete, "/users/u2", nil, adminViewer)
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodDelete, "/users/u3", nil, adminViewer)
	c.SetParamNames("id")
	c.SetParamValues("u3")
	if err := handler.Delete(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
