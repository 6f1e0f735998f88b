package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifySession(t *testing.T) {
	claims := SessionClaims{
		Sub:    "user-1",
		Email:  "user@example.com",
		Tier:   "PREMIUM",
		Role:   "admin",
		Locale: "id",
		Exp:    time.Now().Add(time.Hour).Unix(),
	}
	token, err := SignSession("secret", claims)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := VerifySession("secret", token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.Sub != "user-1" || got.Role != "admin" || got.Tier != "PREMIUM" {
		t.Fatalf("claims = %+v", got)
	}
}

func TestVerifySessionRejectsTampering(t *testing.T) {
	token, _ := SignSession("secret", SessionClaims{Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix()})
	if _, err := VerifySession("other-secret", token); err == nil {
		t.Fatalf("expected signature failure with wrong secret")
	}
	if _, err := VerifySession("secret", token+"x"); err == nil {
		t.Fatalf("expected signature failure on altered token")
	}
	if _, err := VerifySession("secret", "not-a-token"); err == nil {
		t.Fatalf("expected malformed token error")
	}
}

func TestVerifySessionExpired(t *testing.T) {
	token, _ := SignSession("secret", SessionClaims{Sub: "user-1", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifySession("secret", token); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestAuthMiddleware(t *testing.T) {
	var seenUser, seenRole string
	handler := Auth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = UserIDFromContext(r.Context())
		seenRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header = %d, want 401", rec.Code)
	}

	token, _ := SignSession("secret", SessionClaims{Sub: "user-1", Role: "user", Exp: time.Now().Add(time.Hour).Unix()})
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token = %d, want 200", rec.Code)
	}
	if seenUser != "user-1" || seenRole != "user" {
		t.Fatalf("context = %q/%q", seenUser, seenRole)
	}
}

func TestRequireAdmin(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth("secret")(RequireAdmin(inner))

	userToken, _ := SignSession("secret", SessionClaims{Sub: "u1", Role: "user", Exp: time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user role = %d, want 403", rec.Code)
	}

	adminToken, _ := SignSession("secret", SessionClaims{Sub: "a1", Role: "admin", Exp: time.Now().Add(time.Hour).Unix()})
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin role = %d, want 200", rec.Code)
	}
}
