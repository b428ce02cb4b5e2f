package member_test

import (
	"errors"
	"strings"
	"testing"

	"studio/internal/domain/member"
)

// TestMemberValidation tests validation of Member.
func TestMemberValidation(t *testing.T) {
	tests := []struct {
		name    string
		member  member.Member
		wantErr error
	}{
		{
			name:   "valid instructor",
			member: member.Member{ID: "1", TenantID: "t1", Name: "Ana Lima", Email: "ana@example.com", Role: member.RoleInstructor},
		},
		{
			name:   "valid student without email",
			member: member.Member{ID: "2", TenantID: "t1", Name: "Sam", Role: member.RoleStudent},
		},
		{
			name:    "missing tenant",
			member:  member.Member{ID: "3", Name: "Sam", Role: member.RoleStudent},
			wantErr: member.ErrEmptyTenant,
		},
		{
			name:    "blank name",
			member:  member.Member{ID: "4", TenantID: "t1", Name: "   ", Role: member.RoleStudent},
			wantErr: member.ErrEmptyName,
		},
		{
			name:    "name too long",
			member:  member.Member{ID: "5", TenantID: "t1", Name: strings.Repeat("a", 101), Role: member.RoleStudent},
			wantErr: member.ErrNameTooLong,
		},
		{
			name:    "bad email",
			member:  member.Member{ID: "6", TenantID: "t1", Name: "Sam", Email: "nope", Role: member.RoleStudent},
			wantErr: member.ErrInvalidMail,
		},
		{
			name:    "unknown role",
			member:  member.Member{ID: "7", TenantID: "t1", Name: "Sam", Role: "janitor"},
			wantErr: member.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestIsStaffRole verifies which roles count as staff.
func TestIsStaffRole(t *testing.T) {
	for role, want := range map[string]bool{
		member.RoleOwner:      true,
		member.RoleAdmin:      true,
		member.RoleInstructor: true,
		member.RoleStudent:    false,
		"":                    false,
	} {
		if got := member.IsStaffRole(role); got != want {
			t.Errorf("IsStaffRole(%q) = %v, want %v", role, got, want)
		}
	}
}
