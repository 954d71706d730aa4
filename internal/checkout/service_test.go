package checkout

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/cart"
	"github.com/medkitstore/medkit-backend/internal/catalog"
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

type customerStub struct {
	known map[uuid.UUID]*models.User
}

func (s *customerStub) GetCustomer(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.known[id]; ok {
		return user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
}

type settingsStub struct{}

func (s *settingsStub) Get(_ context.Context) (*models.Settings, error) {
	return &models.Settings{
		ID:                  models.SettingsID,
		StoreName:           "Medkit Store",
		BankName:            "BPI",
		BankAccountName:     "Medkit Store Inc",
		BankAccountNumber:   "0012-3456-78",
		PaymentInstructions: "Transfer the exact total and upload the receipt.",
	}, nil
}

type fixture struct {
	svc        Service
	repo       *Repository
	conn       *gorm.DB
	carts      cart.Service
	catalog    catalog.Service
	product    *models.Product
	customerID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := newTestDB(t)
	client := db.NewWithConn(conn)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), client)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	cartSvc, err := cart.NewService(cart.NewRepository(conn), client, catalogSvc)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	customerID := uuid.New()
	customers := &customerStub{known: map[uuid.UUID]*models.User{
		customerID: {ID: customerID, Email: "jo@example.com", FullName: "Jo Reyes"},
	}}

	repo := NewRepository(conn)
	svc, err := NewService(config.CheckoutConfig{NumberMaxRetries: 3}, repo,
		cart.NewRepository(conn), catalog.NewRepository(conn), client, customers, &settingsStub{})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
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

	return &fixture{
		svc:        svc,
		repo:       repo,
		conn:       conn,
		carts:      cartSvc,
		catalog:    catalogSvc,
		product:    product,
		customerID: customerID,
	}
}

func (f *fixture) owner() cart.Owner {
	return cart.Owner{CustomerID: &f.customerID}
}

func TestCreateSessionSnapshotsCartAndEmptiesIt(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.carts.AddItem(ctx, f.owner(), f.product.ID, "Biogesic", 2); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	if _, err := f.carts.AddItem(ctx, f.owner(), f.product.ID, "Calpol", 1); err != nil {
		t.Fatalf("fill cart: %v", err)
	}

	result, err := f.svc.CreateSession(ctx, f.customerID, 150, "leave at the gate")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	session := result.Session
	if !strings.HasPrefix(session.SessionNumber, "CHK-") {
		t.Fatalf("unexpected session number %q", session.SessionNumber)
	}
	if session.SubtotalCents != 2*550+700 {
		t.Fatalf("unexpected subtotal %d", session.SubtotalCents)
	}
	if session.ShippingCents != 150 || session.TotalCents != session.SubtotalCents+150 {
		t.Fatalf("unexpected totals %+v", session)
	}
	if session.Notes != "leave at the gate" {
		t.Fatalf("unexpected notes %q", session.Notes)
	}
	if len(session.Items) != 2 {
		t.Fatalf("expected 2 item snapshots, got %d", len(session.Items))
	}
	if result.BankDetails.BankName != "BPI" || result.BankDetails.AccountNumber != "0012-3456-78" {
		t.Fatalf("unexpected bank details %+v", result.BankDetails)
	}

	reloaded, err := f.repo.FindByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment status, got %q", reloaded.PaymentStatus)
	}
	if reloaded.OrderID != nil {
		t.Fatal("fresh session must not carry an order id")
	}

	emptied, err := f.carts.Get(ctx, f.owner())
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(emptied.Items) != 0 || emptied.TotalCents != 0 {
		t.Fatalf("cart must be emptied by checkout, got %+v", emptied)
	}
}

func TestCreateSessionRejectsEmptyCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateSession(context.Background(), f.customerID, 0, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCreateSessionUnknownCustomer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.CreateSession(context.Background(), uuid.New(), 0, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateSessionRevalidatesStock(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.carts.AddItem(ctx, f.owner(), f.product.ID, "Calpol", 5); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	// Stock shrinks between cart add and checkout.
	var calpolID uuid.UUID
	for _, variant := range f.product.Variants {
		if variant.Name == "Calpol" {
			calpolID = variant.ID
		}
	}
	if _, err := f.catalog.SetVariantStock(ctx, calpolID, 2); err != nil {
		t.Fatalf("set stock: %v", err)
	}

	_, err := f.svc.CreateSession(ctx, f.customerID, 0, "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}

	// The failed checkout must leave the cart intact.
	current, err := f.carts.Get(ctx, f.owner())
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(current.Items) != 1 || current.Items[0].Quantity != 5 {
		t.Fatalf("cart mutated by failed checkout: %+v", current.Items)
	}
}

func TestGetSummaryPrefersLiveCart(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.svc.GetSummary(ctx, f.customerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Cart != nil || summary.LastSession != nil {
		t.Fatalf("expected empty summary, got %+v", summary)
	}

	if _, err := f.carts.AddItem(ctx, f.owner(), f.product.ID, "Biogesic", 3); err != nil {
		t.Fatalf("fill cart: %v", err)
	}

	summary, err = f.svc.GetSummary(ctx, f.customerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Cart == nil || summary.SubtotalCents != 3*550 {
		t.Fatalf("expected live cart summary, got %+v", summary)
	}

	if _, err := f.svc.CreateSession(ctx, f.customerID, 100, ""); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Cart now empty: the summary falls back to the latest session.
	summary, err = f.svc.GetSummary(ctx, f.customerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Cart != nil {
		t.Fatalf("expected no live cart, got %+v", summary.Cart)
	}
	if summary.LastSession == nil || summary.LastSession.TotalCents != 3*550+100 {
		t.Fatalf("expected last session fallback, got %+v", summary.LastSession)
	}
}

func TestGetSummaryDropsExpiredSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.carts.AddItem(ctx, f.owner(), f.product.ID, "Biogesic", 1); err != nil {
		t.Fatalf("fill cart: %v", err)
	}
	if _, err := f.svc.CreateSession(ctx, f.customerID, 0, ""); err != nil {
		t.Fatalf("create session: %v", err)
	}

	conn := f.conn
	customers := &customerStub{known: map[uuid.UUID]*models.User{
		f.customerID: {ID: f.customerID, Email: "jo@example.com", FullName: "Jo Reyes"},
	}}
	expiring, err := NewService(config.CheckoutConfig{NumberMaxRetries: 3, SessionTTL: time.Nanosecond},
		f.repo, cart.NewRepository(conn), catalog.NewRepository(conn), db.NewWithConn(conn), customers, &settingsStub{})
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}

	summary, err := expiring.GetSummary(ctx, f.customerID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.LastSession != nil {
		t.Fatalf("expected expired session to be dropped, got %+v", summary.LastSession)
	}
}
