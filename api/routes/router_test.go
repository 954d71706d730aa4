package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/internal/auth"
	"github.com/medkitstore/medkit-backend/internal/cart"
	"github.com/medkitstore/medkit-backend/internal/catalog"
	"github.com/medkitstore/medkit-backend/internal/checkout"
	"github.com/medkitstore/medkit-backend/internal/customers"
	"github.com/medkitstore/medkit-backend/internal/orders"
	"github.com/medkitstore/medkit-backend/internal/payments"
	"github.com/medkitstore/medkit-backend/internal/reviews"
	"github.com/medkitstore/medkit-backend/internal/settings"
	"github.com/medkitstore/medkit-backend/pkg/config"
	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/redis"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret-router-test-secret",
			Issuer:            "medkit-test",
			ExpirationMinutes: 15,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
		Checkout: config.CheckoutConfig{NumberMaxRetries: 3},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	client := db.NewWithConn(conn)
	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})

	catalogRepo := catalog.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	checkoutRepo := checkout.NewRepository(conn)
	userRepo := customers.NewRepository(conn)

	catalogSvc, err := catalog.NewService(catalogRepo, client)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	cartSvc, err := cart.NewService(cartRepo, client, catalogSvc)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	customerSvc, err := customers.NewService(userRepo)
	if err != nil {
		t.Fatalf("customers service: %v", err)
	}
	settingsSvc, err := settings.NewService(conn)
	if err != nil {
		t.Fatalf("settings service: %v", err)
	}
	checkoutSvc, err := checkout.NewService(cfg.Checkout, checkoutRepo, cartRepo, catalogRepo, client, customerSvc, settingsSvc)
	if err != nil {
		t.Fatalf("checkout service: %v", err)
	}
	paymentSvc, err := payments.NewService(checkoutRepo)
	if err != nil {
		t.Fatalf("payments service: %v", err)
	}
	orderSvc, err := orders.NewService(orders.NewRepository(conn), checkoutRepo, catalogRepo, client, customerSvc)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	reviewSvc, err := reviews.NewService(reviews.NewRepository(conn), catalogSvc, checkoutRepo)
	if err != nil {
		t.Fatalf("reviews service: %v", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		DB:             client,
		Users:          userRepo,
		AppConfig:      cfg.App,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	// Zero-value client: rate limiting fails open, which is what an outage
	// does in production too.
	return NewRouter(Deps{
		Config: cfg,
		Logger: logg,
		DB:     client,
		Redis:  &redis.Client{},
		Services: Services{
			Auth:      authSvc,
			Catalog:   catalogSvc,
			Cart:      cartSvc,
			Checkout:  checkoutSvc,
			Payments:  paymentSvc,
			Orders:    orderSvc,
			Customers: customerSvc,
			Reviews:   reviewSvc,
			Settings:  settingsSvc,
		},
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/v1/auth/register", "", map[string]any{
		"full_name": "Jo Reyes",
		"email":     email,
		"password":  "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if body.Data.AccessToken == "" {
		t.Fatal("expected access token")
	}
	return body.Data.AccessToken
}

func adminToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/admin/v1/auth/register", "", map[string]any{
		"full_name": "Store Admin",
		"email":     "admin@medkit.example",
		"password":  "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/api/admin/v1/auth/login", "", map[string]any{
		"email":    "admin@medkit.example",
		"password": "hunter2hunter2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return body.Data.AccessToken
}

func TestHealthLive(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/health/live", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestStorefrontFlow(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	admin := adminToken(t, router)
	rec := doJSON(t, router, "POST", "/api/admin/v1/products", admin, map[string]any{
		"name":      "Paracetamol 500mg",
		"category":  "pain-relief",
		"is_active": true,
		"variants": []map[string]any{
			{"name": "Biogesic", "price_cents": 550, "stock": 10},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	rec = doJSON(t, router, "GET", "/api/v1/products", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, router, "GET", "/api/v1/products/category/pain-relief", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("category page: expected 200, got %d", rec.Code)
	}

	customer := registerAndLogin(t, router, "jo@example.com")
	rec = doJSON(t, router, "POST", "/api/v1/cart/items", customer, map[string]any{
		"product_id":   created.Data.ID,
		"variant_name": "Biogesic",
		"quantity":     2,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add cart item: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/api/v1/checkout", customer, map[string]any{
		"shipping_cents": 150,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Data struct {
			Session struct {
				ID            string `json:"id"`
				SessionNumber string `json:"session_number"`
				TotalCents    int    `json:"total_cents"`
			} `json:"session"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Data.Session.TotalCents != 2*550+150 {
		t.Fatalf("unexpected total %d", session.Data.Session.TotalCents)
	}

	rec = doJSON(t, router, "POST", "/api/v1/payments/"+session.Data.Session.ID+"/proof", customer, map[string]any{
		"proof_uri": "uploads/transfer-slip.jpg",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit proof: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "PUT", "/api/admin/v1/payments/"+session.Data.Session.ID+"/approve", admin, map[string]any{})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "POST", "/api/v1/delivery/"+session.Data.Session.ID, customer, map[string]any{
		"full_name": "Jo Reyes",
		"phone":     "09171234567",
		"line1":     "12 Mabini St",
		"city":      "Quezon City",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("delivery: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, "GET", "/api/v1/orders", customer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list orders: expected 200, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/admin/v1/orders", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	customer := registerAndLogin(t, router, "jo@example.com")
	rec = doJSON(t, router, "GET", "/api/admin/v1/orders", customer, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer: expected 403, got %d", rec.Code)
	}
}

func TestAnonymousCartUsesSessionKey(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set("X-Session-Key", "anon-visitor-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// No identity at all is rejected.
	rec = doJSON(t, router, "GET", "/api/v1/cart", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without owner, got %d", rec.Code)
	}
}
