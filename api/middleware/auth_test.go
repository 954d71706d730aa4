package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medkitstore/medkit-backend/pkg/auth"
	"github.com/medkitstore/medkit-backend/pkg/config"
	"github.com/medkitstore/medkit-backend/pkg/enums"
	"github.com/medkitstore/medkit-backend/pkg/logger"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret-test-secret-test-secret",
	Issuer:            "medkit-test",
	ExpirationMinutes: 15,
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func mintToken(t *testing.T, userID uuid.UUID, role enums.Role) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWTConfig, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthStampsIdentity(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var gotID uuid.UUID
	var gotRole enums.Role
	handler := Auth(testJWTConfig, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
		gotRole, _ = RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, userID, enums.RoleCustomer))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != userID || gotRole != enums.RoleCustomer {
		t.Fatalf("identity not stamped: id=%s role=%s", gotID, gotRole)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	t.Parallel()

	handler := Auth(testJWTConfig, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer ", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	t.Parallel()

	var sawUser bool
	handler := OptionalAuth(testJWTConfig, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawUser = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if sawUser {
		t.Fatal("anonymous request must not carry a user ID")
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	chain := Auth(testJWTConfig, testLogger())(
		RequireRole(enums.RoleAdmin, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New(), enums.RoleCustomer))
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer expected 403, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, uuid.New(), enums.RoleAdmin))
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin expected 204, got %d", rec.Code)
	}
}
