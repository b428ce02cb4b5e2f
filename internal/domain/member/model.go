package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Role constants
const (
	RoleOwner      = "owner"
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// Domain errors
var (
	ErrNotFound    = errors.New("member not found")
	ErrEmptyTenant = errors.New("tenant_id is required")
	ErrEmptyName   = errors.New("member name cannot be empty")
	ErrNameTooLong = errors.New("member name cannot exceed 100 characters")
	ErrInvalidMail = errors.New("member email must be valid")
	ErrInvalidRole = errors.New("role must be one of: owner, admin, instructor, student")
)

// Member is a person belonging to a tenant: staff, instructors and students alike.
type Member struct {
	ID       string
	TenantID string
	Name     string
	Email    string // optional; used for payout notifications
	Role     string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if m.TenantID == "" {
		return ErrEmptyTenant
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return ErrInvalidMail
	}
	switch m.Role {
	case RoleOwner, RoleAdmin, RoleInstructor, RoleStudent:
	default:
		return ErrInvalidRole
	}
	return nil
}

// IsStaffRole reports whether role grants staff access.
func IsStaffRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleInstructor
}
