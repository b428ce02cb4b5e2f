package member

import (
	"context"

	domain "studio/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, tenantID, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, tenantID string, filter ListFilter) ([]domain.Member, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Roles []string // empty means all roles
}
