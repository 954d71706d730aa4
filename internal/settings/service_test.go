package settings

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	svc, err := NewService(conn)
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	return svc
}

func TestGetCreatesDefaults(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	row, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.ID != models.SettingsID {
		t.Fatalf("unexpected id %q", row.ID)
	}
	if row.StoreName != "Medkit Store" {
		t.Fatalf("unexpected default store name %q", row.StoreName)
	}

	// Subsequent reads return the same row, not a fresh default.
	again, err := svc.Get(ctx)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if !again.CreatedAt.Equal(row.CreatedAt) {
		t.Fatal("second read must reuse the singleton row")
	}
}

func TestUpdateStoreInfo(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	name := "Medkit Pharmacy"
	email := "hello@medkit.example"
	row, err := svc.UpdateStoreInfo(ctx, StoreInfoInput{StoreName: &name, StoreEmail: &email})
	if err != nil {
		t.Fatalf("update store info: %v", err)
	}
	if row.StoreName != "Medkit Pharmacy" || row.StoreEmail != "hello@medkit.example" {
		t.Fatalf("unexpected settings %+v", row)
	}

	// Untouched fields survive partial updates.
	phone := "028-8888"
	row, err = svc.UpdateStoreInfo(ctx, StoreInfoInput{StorePhone: &phone})
	if err != nil {
		t.Fatalf("partial update: %v", err)
	}
	if row.StoreName != "Medkit Pharmacy" || row.StorePhone != "028-8888" {
		t.Fatalf("partial update clobbered fields: %+v", row)
	}

	blank := "  "
	_, err = svc.UpdateStoreInfo(ctx, StoreInfoInput{StoreName: &blank})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for blank name, got %v", err)
	}
}

func TestUpdateBankInfo(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	bank := "BPI"
	account := "0012-3456-78"
	holder := "Medkit Store Inc"
	row, err := svc.UpdateBankInfo(ctx, BankInfoInput{
		BankName:          &bank,
		BankAccountNumber: &account,
		BankAccountName:   &holder,
	})
	if err != nil {
		t.Fatalf("update bank info: %v", err)
	}
	if row.BankName != "BPI" || row.BankAccountNumber != "0012-3456-78" || row.BankAccountName != "Medkit Store Inc" {
		t.Fatalf("unexpected settings %+v", row)
	}
}
