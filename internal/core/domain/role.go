package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleRegular = "regular"
)

// DefaultRoles are seeded at startup. New accounts get RoleRegular.
var DefaultRoles = []string{RoleAdmin, RoleRegular}

// Role is shared by reference across all users that point to it.
type Role struct {
	ID        string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsDefaultRole reports whether title names one of DefaultRoles.
func IsDefaultRole(title string) bool {
	for _, r := range DefaultRoles {
		if r == title {
			return true
		}
	}
	return false
}
