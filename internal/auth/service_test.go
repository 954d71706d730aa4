package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/customers"
	pkgauth "github.com/medkitstore/medkit-backend/pkg/auth"
	"github.com/medkitstore/medkit-backend/pkg/config"
	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/enums"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test",
		Issuer:            "medkit-test",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, env string) (Service, *customers.Repository) {
	t.Helper()
	conn := newTestDB(t)
	repo := customers.NewRepository(conn)
	svc, err := NewService(ServiceParams{
		DB:             db.NewWithConn(conn),
		Users:          repo,
		AppConfig:      config.AppConfig{Env: env},
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return svc, repo
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		FullName: "Jo Reyes",
		Email:    "Jo@Example.com",
		Password: "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, config.AppEnvDev)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "jo@example.com" {
		t.Fatalf("email not normalized: %q", resp.User.Email)
	}
	if resp.User.Role != enums.RoleCustomer {
		t.Fatalf("expected customer role, got %q", resp.User.Role)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != enums.RoleCustomer {
		t.Fatalf("unexpected claims %+v", claims)
	}

	login, err := svc.Login(ctx, LoginRequest{Email: "jo@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.User.LastLoginAt == nil {
		t.Fatal("expected last login timestamp")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, config.AppEnvDev)
	ctx := context.Background()

	short := registerRequest()
	short.Password = "short"
	_, err := svc.Register(ctx, short)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for short password, got %v", err)
	}

	noName := registerRequest()
	noName.FullName = "  "
	_, err = svc.Register(ctx, noName)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for blank name, got %v", err)
	}

	badEmail := registerRequest()
	badEmail.Email = "not-an-email"
	_, err = svc.Register(ctx, badEmail)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for bad email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, config.AppEnvDev)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Same address with different casing still collides.
	dup := registerRequest()
	dup.Email = "JO@example.com"
	_, err := svc.Register(ctx, dup)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t, config.AppEnvDev)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "jo@example.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for wrong password, got %v", err)
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for unknown email, got %v", err)
	}

	// Customer credentials never open the admin door.
	_, err = svc.AdminLogin(ctx, LoginRequest{Email: "jo@example.com", Password: "correct-horse"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for customer on admin login, got %v", err)
	}

	// Deactivated accounts cannot log in.
	user, err := repo.FindByID(ctx, resp.User.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	user.IsActive = false
	if err := repo.Save(ctx, user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	_, err = svc.Login(ctx, LoginRequest{Email: "jo@example.com", Password: "correct-horse"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for inactive account, got %v", err)
	}
}

func TestAdminRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	prodSvc, _ := newTestService(t, config.AppEnvProd)
	_, err := prodSvc.AdminRegister(ctx, AdminRegisterRequest{
		FullName: "Root Admin",
		Email:    "admin@example.com",
		Password: "super-secret-1",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN in prod, got %v", err)
	}

	devSvc, _ := newTestService(t, config.AppEnvDev)
	admin, err := devSvc.AdminRegister(ctx, AdminRegisterRequest{
		FullName: "Root Admin",
		Email:    "admin@example.com",
		Password: "super-secret-1",
	})
	if err != nil {
		t.Fatalf("admin register: %v", err)
	}
	if admin.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}

	login, err := devSvc.AdminLogin(ctx, LoginRequest{Email: "admin@example.com", Password: "super-secret-1"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin claims, got %+v", claims)
	}
}
