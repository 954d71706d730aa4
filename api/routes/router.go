package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medkitstore/medkit-backend/api/controllers"
	"github.com/medkitstore/medkit-backend/api/middleware"
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
	"github.com/medkitstore/medkit-backend/pkg/enums"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/redis"
)

// Services bundles the wired service layer for route registration.
type Services struct {
	Auth      auth.Service
	Catalog   catalog.Service
	Cart      cart.Service
	Checkout  checkout.Service
	Payments  payments.Service
	Orders    orders.Service
	Customers customers.Service
	Reviews   reviews.Service
	Settings  settings.Service
}

// Deps carries everything the router needs beyond the services.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Services Services
}

// NewRouter assembles the full HTTP surface: public storefront routes,
// customer routes behind auth, and admin routes behind auth plus role checks.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger
	svcs := deps.Services

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS(nil))

	requireAuth := middleware.Auth(cfg.JWT, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, logg)
	requireAdmin := middleware.RequireRole(enums.RoleAdmin, logg)
	loginLimit := middleware.AuthRateLimit(deps.Redis, middleware.LoginPolicy(cfg.AuthRateLimit), logg)
	registerLimit := middleware.AuthRateLimit(deps.Redis, middleware.RegisterPolicy(cfg.AuthRateLimit), logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(deps.DB, deps.Redis, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(registerLimit).Post("/register", controllers.Register(svcs.Auth, logg))
			r.With(loginLimit).Post("/login", controllers.Login(svcs.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Catalog, logg))
			r.Get("/featured", controllers.FeaturedProducts(svcs.Catalog, logg))
			r.Get("/categories", controllers.Categories(svcs.Catalog, logg))
			r.Get("/category/{category}", controllers.ProductsByCategory(svcs.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(svcs.Catalog, logg))
			r.Get("/{productID}/related", controllers.RelatedProducts(svcs.Catalog, logg))
			r.Get("/{productID}/reviews", controllers.ListProductReviews(svcs.Reviews, logg))
			r.With(requireAuth).Post("/{productID}/reviews", controllers.CreateReview(svcs.Reviews, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Post("/items", controllers.AddCartItem(svcs.Cart, logg))
			r.Put("/items", controllers.UpdateCartItem(svcs.Cart, logg))
			r.Delete("/items", controllers.RemoveCartItem(svcs.Cart, logg))
			r.Delete("/", controllers.ClearCart(svcs.Cart, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", controllers.CreateCheckoutSession(svcs.Checkout, logg))
			r.Get("/summary", controllers.CheckoutSummary(svcs.Checkout, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/{sessionID}", controllers.GetMySession(svcs.Payments, logg))
			r.Post("/{sessionID}/proof", controllers.SubmitPaymentProof(svcs.Payments, logg))
		})

		r.Route("/delivery", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/{sessionID}", controllers.AddDeliveryDetails(svcs.Orders, logg))
			r.Put("/orders/{orderID}", controllers.UpdateDeliveryDetails(svcs.Orders, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.ListMyOrders(svcs.Orders, logg))
			r.Get("/number/{orderNumber}", controllers.GetMyOrderByNumber(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetMyOrder(svcs.Orders, logg))
		})

		r.Route("/customers/me", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", controllers.Me(svcs.Customers, logg))
			r.Put("/", controllers.UpdateProfile(svcs.Customers, logg))
		})

		r.Get("/settings", controllers.GetStoreInfo(svcs.Settings, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Post("/login", controllers.AdminLogin(svcs.Auth, logg))
			// Dev-only bootstrap; the service refuses it in prod as well.
			if !cfg.App.IsProd() {
				r.With(registerLimit).Post("/register", controllers.AdminRegister(svcs.Auth, logg))
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(svcs.Catalog, logg))
				r.Post("/", controllers.CreateProduct(svcs.Catalog, logg))
				r.Get("/{productID}", controllers.AdminGetProduct(svcs.Catalog, logg))
				r.Put("/{productID}", controllers.UpdateProduct(svcs.Catalog, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(svcs.Catalog, logg))
			})
			r.Patch("/variants/{variantID}/stock", controllers.SetVariantStock(svcs.Catalog, logg))

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.ListPaymentSessions(svcs.Payments, logg))
				r.Get("/{sessionID}", controllers.GetPaymentSession(svcs.Payments, logg))
				r.Put("/{sessionID}/approve", controllers.ApprovePayment(svcs.Payments, logg))
				r.Put("/{sessionID}/reject", controllers.RejectPayment(svcs.Payments, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.AdminGetOrder(svcs.Orders, logg))
				r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			})

			r.Get("/customers", controllers.AdminListCustomers(svcs.Customers, logg))

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", controllers.AdminGetSettings(svcs.Settings, logg))
				r.Put("/store", controllers.UpdateStoreInfo(svcs.Settings, logg))
				r.Put("/bank", controllers.UpdateBankInfo(svcs.Settings, logg))
			})
		})
	})

	return r
}
