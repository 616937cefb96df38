package handler

import (
	"time"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// --- Auth ---

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"max=200"`
}

type loginRequest struct {
	// Login is a username or an email address.
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// --- Users ---

type nameResponse struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

type userResponse struct {
	ID        string        `json:"_id"`
	Email     string        `json:"email"`
	Username  string        `json:"username"`
	Name      nameResponse  `json:"name"`
	FullName  *string       `json:"fullName,omitempty"`
	Role      *roleResponse `json:"role,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type updateUserRequest struct {
	Email    *string `json:"email"    validate:"omitempty,email"`
	Username *string `json:"username" validate:"omitempty,max=64"`
	FullName *string `json:"fullName" validate:"omitempty,max=200"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role"     validate:"omitempty,oneof=admin regular"`
}

// --- Roles ---

type roleResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// --- Documents ---

type createDocumentRequest struct {
	Title   string `json:"title"   validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Access  string `json:"access"  validate:"omitempty,oneof=public private role"`
}

type updateDocumentRequest struct {
	Title   *string `json:"title"   validate:"omitempty,max=255"`
	Content *string `json:"content"`
	Access  *string `json:"access"  validate:"omitempty,oneof=public private role"`
}

type documentResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"owner"`
	Access    string    `json:"access"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type listDocumentsResponse struct {
	Items      []documentResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"totalPages"`
}

// --- Mappers ---

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Name:      nameResponse{FirstName: u.Name.FirstName, LastName: u.Name.LastName},
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Role != nil {
		r := toRoleResponse(u.Role)
		resp.Role = &r
	}
	return resp
}

func toRoleResponse(r *domain.Role) roleResponse {
	return roleResponse{ID: r.ID, Title: r.Title, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: toUserResponse(res.User)}
}

func toDocumentResponse(d *domain.Document) documentResponse {
	return documentResponse{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		OwnerID:   d.OwnerID,
		Access:    string(d.Access),
		Role:      d.Role,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
