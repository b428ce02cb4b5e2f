package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestIdentify_RequiresHeaders verifies API requests need tenant and member headers.
func TestIdentify_RequiresHeaders(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		tenant   string
		member   string
		wantCode int
	}{
		{"complete identity", "/api/progress/metrics", "t1", "m1", http.StatusOK},
		{"missing tenant", "/api/progress/metrics", "", "m1", http.StatusUnauthorized},
		{"missing member", "/api/progress/metrics", "t1", "", http.StatusUnauthorized},
		{"outside api", "/healthz", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			req.Header.Set(HeaderTenantID, tt.tenant)
			req.Header.Set(HeaderMemberID, tt.member)
			rr := httptest.NewRecorder()
			Identify(okHandler()).ServeHTTP(rr, req)
			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

// TestIdentify_AttachesIdentity verifies the handler sees a normalised Identity.
func TestIdentify_AttachesIdentity(t *testing.T) {
	var got Identity
	handler := Identify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/payroll/payouts", nil)
	req.Header.Set(HeaderTenantID, " t1 ")
	req.Header.Set(HeaderMemberID, "m1")
	req.Header.Set(HeaderRole, "Admin")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	want := Identity{TenantID: "t1", MemberID: "m1", Role: "admin"}
	if got != want {
		t.Errorf("identity = %+v, want %+v", got, want)
	}
	if !got.IsStaff() {
		t.Error("admin should be staff")
	}
}

// TestIdentity_CanSee verifies students may only read their own progress.
func TestIdentity_CanSee(t *testing.T) {
	student := Identity{TenantID: "t1", MemberID: "m1", Role: "student"}
	if !student.CanSee("m1") {
		t.Error("student should see self")
	}
	if student.CanSee("m2") {
		t.Error("student should not see another member")
	}
	if student.CanSee("") {
		t.Error("empty member id should not be visible")
	}
	coach := Identity{TenantID: "t1", MemberID: "i1", Role: "instructor"}
	if !coach.CanSee("m2") {
		t.Error("instructor should see any member")
	}
}

// TestRateLimiter_RefillsAfterInterval verifies the bucket empties and refills.
func TestRateLimiter_RefillsAfterInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request within the interval should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatal("bucket should refill after the interval")
	}

	now = now.Add(10 * time.Minute)
	rl.sweep()
	if len(rl.visitors) != 0 {
		t.Errorf("visitors = %d, want 0 after sweep", len(rl.visitors))
	}
}

// TestRateLimit_Returns429 verifies the middleware rejects over-limit clients.
func TestRateLimit_Returns429(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handler := RateLimit(NewRateLimiter(ctx, 1, time.Hour))(okHandler())

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest("GET", "/api/progress/metrics", nil)
		req.Header.Set(HeaderTenantID, "t1")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes[i] = rr.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
}

// TestSecurityHeaders verifies hardening headers are set.
func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rr, httptest.NewRequest("GET", "/api/payroll/export", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Cache-Control"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("header %s not set", h)
		}
	}
}

// TestCSRF_JSONExempt verifies JSON writes skip the token check while form posts need one.
func TestCSRF_JSONExempt(t *testing.T) {
	handler := CSRF([]byte(strings.Repeat("k", 32)), false, nil)(okHandler())

	jsonReq := httptest.NewRequest("POST", "/api/payroll/approve", strings.NewReader(`{"ids":[]}`))
	jsonReq.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, jsonReq)
	if rr.Code != http.StatusOK {
		t.Errorf("json status = %d, want 200", rr.Code)
	}

	formReq := httptest.NewRequest("POST", "/api/payroll/approve", strings.NewReader("ids=p1"))
	formReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, formReq)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form status = %d, want 403", rr.Code)
	}

	getReq := httptest.NewRequest("GET", "/api/payroll/payouts", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, getReq)
	if rr.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rr.Code)
	}
}

// TestCSRF_GatewayHeaderExempt verifies a body-less DELETE with identity headers skips the token check.
func TestCSRF_GatewayHeaderExempt(t *testing.T) {
	handler := CSRF([]byte(strings.Repeat("k", 32)), false, nil)(okHandler())

	req := httptest.NewRequest("DELETE", "/api/progress/metrics?id=m-1", nil)
	req.Header.Set(HeaderTenantID, "tenant-1")
	req.Header.Set(HeaderMemberID, "owner-1")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("delete with tenant header status = %d, want 200", rr.Code)
	}

	bare := httptest.NewRequest("DELETE", "/api/progress/metrics?id=m-1", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, bare)
	if rr.Code != http.StatusForbidden {
		t.Errorf("bare delete status = %d, want 403", rr.Code)
	}
}
