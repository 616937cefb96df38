package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleNotFound       = errors.New("role not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrForbidden          = errors.New("access forbidden")
)

// Validation rules reported in ValidationError.Rule.
const (
	RuleRequired = "required"
	RuleEmail    = "email"
	RuleUnique   = "unique"
	RuleInvalid  = "invalid"
)

// ValidationError reports a write that violates a field constraint.
// It matches ErrValidation with errors.Is, and ErrUserExists as well when
// the violated rule is uniqueness.
type ValidationError struct {
	Field string
	Value string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleEmail:
		return fmt.Sprintf("%s is not a valid email address.", e.Value)
	case RuleRequired:
		return fmt.Sprintf("%s is required.", e.Field)
	case RuleUnique:
		return fmt.Sprintf("%s %q is already taken.", e.Field, e.Value)
	default:
		return fmt.Sprintf("%s has an invalid value %q.", e.Field, e.Value)
	}
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return target == ErrUserExists && e.Rule == RuleUnique
}
