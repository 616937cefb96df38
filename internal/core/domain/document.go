package domain

import "time"

// Access controls who may read a document.
type Access string

const (
	AccessPublic  Access = "public"  // any authenticated user
	AccessPrivate Access = "private" // owner and admins
	AccessRole    Access = "role"    // users sharing the owner's role
)

func (a Access) Valid() bool {
	switch a {
	case AccessPublic, AccessPrivate, AccessRole:
		return true
	}
	return false
}

// Viewer identifies the caller a document is checked against.
type Viewer struct {
	UserID string
	Role   string
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// Document is an owned record. Role is the owner's role title at creation.
type Document struct {
	ID        string
	Title     string
	Content   string
	OwnerID   string
	Access    Access
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VisibleTo reports whether v may read the document.
func (d *Document) VisibleTo(v Viewer) bool {
	if v.IsAdmin() || d.OwnerID == v.UserID {
		return true
	}
	switch d.Access {
	case AccessPublic:
		return true
	case AccessRole:
		return d.Role != "" && d.Role == v.Role
	}
	return false
}

// EditableBy reports whether v may update or delete the document.
func (d *Document) EditableBy(v Viewer) bool {
	return v.IsAdmin() || d.OwnerID == v.UserID
}
