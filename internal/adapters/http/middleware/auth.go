package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	domainMember "studio/internal/domain/member"
)

// Identity headers set by the upstream gateway after it authenticates the caller.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderMemberID = "X-Member-ID"
	HeaderRole     = "X-Role"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the caller of one request, scoped to one tenant.
type Identity struct {
	TenantID string
	MemberID string
	Role     string
}

// IsStaff reports whether the caller may see staff-only data.
// INVARIANT: Identity fields are not mutated
func (i Identity) IsStaff() bool {
	return domainMember.IsStaffRole(i.Role)
}

// CanSee reports whether the caller may read memberID's progress.
func (i Identity) CanSee(memberID string) bool {
	return i.IsStaff() || (memberID != "" && memberID == i.MemberID)
}

// Identify attaches the caller Identity to requests under /api/.
// Requests without a tenant or member are rejected with 401.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}
		id := Identity{
			TenantID: strings.TrimSpace(r.Header.Get(HeaderTenantID)),
			MemberID: strings.TrimSpace(r.Header.Get(HeaderMemberID)),
			Role:     strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderRole))),
		}
		if id.TenantID == "" || id.MemberID == "" {
			slog.Warn("auth_denied", "path", r.URL.Path, "reason", "missing identity headers")
			http.Error(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// ContextWithIdentity returns a copy of ctx carrying id.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the caller set by Identify.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}
