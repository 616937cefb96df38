package domain

import (
	"strings"
	"time"
)

// Name holds the stored parts of a user's name. The full name is derived
// from these two fields and never persisted.
type Name struct {
	FirstName string
	LastName  string
}

// FullName joins the name parts with a single space. It returns nil when
// both parts are empty and the lone part when only one is set.
func FullName(n Name) *string {
	var full string
	switch {
	case n.FirstName != "" && n.LastName != "":
		full = n.FirstName + " " + n.LastName
	case n.FirstName != "":
		full = n.FirstName
	case n.LastName != "":
		full = n.LastName
	default:
		return nil
	}
	return &full
}

// ApplyFullName splits full on whitespace: the first token becomes the first
// name and the rest, joined by single spaces, the last name. An empty input
// leaves n untouched.
func ApplyFullName(n *Name, full string) {
	if full == "" {
		return
	}
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return
	}
	n.FirstName = parts[0]
	n.LastName = strings.Join(parts[1:], " ")
}

// User models an account. Password holds the bcrypt hash once the record
// has been saved; between SetPassword and the next save it holds plaintext.
type User struct {
	ID        string
	Email     string `validate:"required,email"`
	Username  string `validate:"required"`
	Password  string
	Name      Name
	RoleID    string
	Role      *Role // resolved on every fetch
	CreatedAt time.Time
	UpdatedAt time.Time

	passwordModified bool
}

// SetPassword stages a new plaintext password to be hashed on the next save.
func (u *User) SetPassword(plaintext string) {
	u.Password = plaintext
	u.passwordModified = true
}

// PasswordModified reports whether the password was set since the record was
// loaded or last saved.
func (u *User) PasswordModified() bool {
	return u.passwordModified
}

// MarkPasswordHashed replaces the staged plaintext with its hash.
func (u *User) MarkPasswordHashed(hash string) {
	u.Password = hash
	u.passwordModified = false
}

// FullName returns FullName(u.Name).
func (u *User) FullName() *string {
	return FullName(u.Name)
}

// SetFullName applies full to u.Name; see ApplyFullName.
func (u *User) SetFullName(full string) {
	ApplyFullName(&u.Name, full)
}

// RoleTitle returns the resolved role title, or "" when the role has not
// been resolved.
func (u *User) RoleTitle() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Title
}

// IsAdmin reports whether the resolved role is RoleAdmin.
func (u *User) IsAdmin() bool {
	return u.RoleTitle() == RoleAdmin
}
