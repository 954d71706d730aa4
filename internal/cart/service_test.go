package cart

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/catalog"
	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
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

type fixture struct {
	svc     Service
	catalog catalog.Service
	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	client := db.NewWithConn(conn)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), client)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	svc, err := NewService(NewRepository(conn), client, catalogSvc)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	product, err := catalogSvc.CreateProduct(context.Background(), uuid.New(), catalog.ProductInput{
		Name:     "Paracetamol 500mg",
		Category: "pain-relief",
		IsActive: true,
		Variants: []catalog.VariantInput{
			{Name: "Biogesic", PriceCents: 550, Stock: 20},
			{Name: "Calpol", PriceCents: 700, Stock: 5},
		},
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return &fixture{svc: svc, catalog: catalogSvc, product: product}
}

func customerOwner() Owner {
	id := uuid.New()
	return Owner{CustomerID: &id}
}

func sessionOwner() Owner {
	key := uuid.NewString()
	return Owner{SessionKey: &key}
}

func TestOwnerValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	id := uuid.New()
	key := "abc"
	both := Owner{CustomerID: &id, SessionKey: &key}
	neither := Owner{}

	for _, owner := range []Owner{both, neither} {
		_, err := f.svc.Get(ctx, owner)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for owner %+v, got %v", owner, err)
		}
	}
}

func TestGetReturnsUnsavedEmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := customerOwner()

	cart, err := f.svc.Get(ctx, owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cart.ID != uuid.Nil {
		t.Fatal("empty view must not be persisted")
	}
	if len(cart.Items) != 0 || cart.TotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}

	// Still nothing persisted after the read.
	again, err := f.svc.Get(ctx, owner)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.ID != uuid.Nil {
		t.Fatal("read must not create a cart row")
	}
}

func TestAddItemCreatesAndMerges(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := sessionOwner()

	cart, err := f.svc.AddItem(ctx, owner, f.product.ID, "Biogesic", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", cart.Items)
	}
	if cart.TotalCents != 2*550 {
		t.Fatalf("expected total %d, got %d", 2*550, cart.TotalCents)
	}

	cart, err = f.svc.AddItem(ctx, owner, f.product.ID, "biogesic", 3)
	if err != nil {
		t.Fatalf("merge add: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", cart.Items)
	}
	if cart.TotalCents != 5*550 {
		t.Fatalf("expected total %d, got %d", 5*550, cart.TotalCents)
	}
}

func TestAddItemRejectsOversell(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := customerOwner()

	if _, err := f.svc.AddItem(ctx, owner, f.product.ID, "Calpol", 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Merged 3+3 exceeds the stock of 5.
	_, err := f.svc.AddItem(ctx, owner, f.product.ID, "Calpol", 3)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	cart, err := f.svc.Get(ctx, owner)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cart.Items[0].Quantity != 3 || cart.TotalCents != 3*700 {
		t.Fatalf("failed add must leave cart unmodified, got %+v", cart)
	}
}

func TestAddItemUnknownVariantAndProduct(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := customerOwner()

	_, err := f.svc.AddItem(ctx, owner, f.product.ID, "NoSuchBrand", 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for variant, got %v", err)
	}

	_, err = f.svc.AddItem(ctx, owner, uuid.New(), "Biogesic", 1)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for product, got %v", err)
	}
}

func TestUpdateAndRemoveItem(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := customerOwner()

	if _, err := f.svc.AddItem(ctx, owner, f.product.ID, "Biogesic", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := f.svc.UpdateItem(ctx, owner, f.product.ID, "Biogesic", 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Items[0].Quantity != 7 || cart.TotalCents != 7*550 {
		t.Fatalf("unexpected cart after update %+v", cart)
	}

	_, err = f.svc.UpdateItem(ctx, owner, f.product.ID, "Biogesic", 100)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK on oversized update, got %v", err)
	}

	cart, err = f.svc.RemoveItem(ctx, owner, f.product.ID, "Biogesic")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalCents != 0 {
		t.Fatalf("expected empty cart after remove, got %+v", cart)
	}

	_, err = f.svc.RemoveItem(ctx, owner, f.product.ID, "Biogesic")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND removing absent item, got %v", err)
	}
}

func TestClearKeepsCartRow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := customerOwner()

	if _, err := f.svc.AddItem(ctx, owner, f.product.ID, "Biogesic", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	cart, err := f.svc.Clear(ctx, owner)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cart.ID == uuid.Nil {
		t.Fatal("expected persisted cart row to survive clear")
	}
	if len(cart.Items) != 0 || cart.TotalCents != 0 {
		t.Fatalf("expected zeroed cart, got %+v", cart)
	}
}

func TestTotalInvariantUnderRandomOps(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	owner := customerOwner()

	rng := rand.New(rand.NewSource(42))
	variants := []string{"Biogesic", "Calpol"}

	for i := 0; i < 40; i++ {
		variant := variants[rng.Intn(len(variants))]
		switch rng.Intn(4) {
		case 0:
			_, _ = f.svc.AddItem(ctx, owner, f.product.ID, variant, 1+rng.Intn(3))
		case 1:
			_, _ = f.svc.UpdateItem(ctx, owner, f.product.ID, variant, 1+rng.Intn(5))
		case 2:
			_, _ = f.svc.RemoveItem(ctx, owner, f.product.ID, variant)
		case 3:
			_, _ = f.svc.Clear(ctx, owner)
		}

		cart, err := f.svc.Get(ctx, owner)
		if err != nil {
			t.Fatalf("get after op %d: %v", i, err)
		}
		want := 0
		for _, item := range cart.Items {
			if item.LineSubtotalCents != item.Quantity*item.UnitPriceCents {
				t.Fatalf("line subtotal drifted: %+v", item)
			}
			want += item.LineSubtotalCents
		}
		if cart.TotalCents != want {
			t.Fatalf("total invariant broken after op %d: total=%d want=%d", i, cart.TotalCents, want)
		}
	}
}
