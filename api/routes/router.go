package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/expresskart/expresskart-backend/api/controllers"
	ordercontrollers "github.com/expresskart/expresskart-backend/api/controllers/orders"
	"github.com/expresskart/expresskart-backend/api/middleware"
	"github.com/expresskart/expresskart-backend/internal/admin"
	"github.com/expresskart/expresskart-backend/internal/auth"
	"github.com/expresskart/expresskart-backend/internal/cart"
	"github.com/expresskart/expresskart-backend/internal/orders"
	"github.com/expresskart/expresskart-backend/internal/products"
	"github.com/expresskart/expresskart-backend/internal/reviews"
	"github.com/expresskart/expresskart-backend/internal/users"
	"github.com/expresskart/expresskart-backend/internal/vendors"
	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/expresskart/expresskart-backend/pkg/db"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/logger"
	"github.com/expresskart/expresskart-backend/pkg/metrics"
	pkgredis "github.com/expresskart/expresskart-backend/pkg/redis"
)

// Cache is the redis surface the HTTP layer needs.
type Cache interface {
	pkgredis.IdempotencyStore
	pkgredis.RateLimiter
	Ping(ctx context.Context) error
}

type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Cache       Cache
	Accounts    middleware.AccountLookup
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth     auth.Service
	Users    users.Service
	Vendors  vendors.Service
	Products products.Service
	Cart     cart.Service
	Orders   orders.Service
	Reviews  reviews.Service
	Admin    admin.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, p.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	idempotent := middleware.Idempotency(p.Cache, cfg.Orders.IdempotencyTTL, logg)
	authenticate := middleware.Auth(cfg.JWT, p.Accounts, logg)
	vendorOnly := middleware.RequireRole(logg, enums.RoleVendor)
	adminOnly := middleware.RequireRole(logg, enums.RoleAdmin)
	vendorOrAdmin := middleware.RequireRole(logg, enums.RoleVendor, enums.RoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Cache))
	})
	if p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Cache, logg)).Post("/register", controllers.AuthRegister(p.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Cache, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
	})

	r.Route("/api/users/me", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", controllers.UserMe(p.Users, logg))
		r.Put("/", controllers.UserUpdateMe(p.Users, logg))
		r.Get("/addresses", controllers.UserAddresses(p.Users, logg))
		r.Post("/addresses", controllers.UserAddAddress(p.Users, logg))
		r.Delete("/addresses/{addressId}", controllers.UserDeleteAddress(p.Users, logg))
		r.Get("/wishlist", controllers.UserWishlist(p.Users, logg))
		r.Post("/wishlist/{productId}", controllers.UserWishlistAdd(p.Users, logg))
		r.Delete("/wishlist/{productId}", controllers.UserWishlistRemove(p.Users, logg))
	})

	r.Route("/api/vendors", func(r chi.Router) {
		r.Get("/", controllers.VendorList(p.Vendors, logg))
		r.With(authenticate).Post("/", controllers.VendorCreate(p.Vendors, logg))
		r.Group(func(r chi.Router) {
			r.Use(authenticate, vendorOnly)
			r.Get("/me", controllers.VendorMe(p.Vendors, logg))
			r.Put("/me", controllers.VendorUpdateMe(p.Vendors, logg))
		})
		r.Get("/{vendorId}", controllers.VendorGet(p.Vendors, logg))
		r.Get("/{vendorId}/products", controllers.VendorProducts(p.Products, logg))
		r.Group(func(r chi.Router) {
			r.Use(authenticate, adminOnly)
			r.Put("/{vendorId}/verify", controllers.AdminVendorVerify(p.Vendors, logg))
			r.Put("/{vendorId}/status", controllers.AdminVendorStatus(p.Vendors, logg))
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(p.Products, logg))
		r.Get("/suggestions", controllers.ProductSuggestions(p.Products, logg))
		r.With(authenticate, vendorOnly).Get("/vendor/mine", controllers.ProductMine(p.Products, logg))
		r.With(authenticate, vendorOnly).Post("/", controllers.ProductCreate(p.Products, logg))
		r.Get("/{productId}", controllers.ProductGet(p.Products, logg))
		r.With(authenticate, vendorOrAdmin).Put("/{productId}", controllers.ProductUpdate(p.Products, logg))
		r.With(authenticate, vendorOrAdmin).Delete("/{productId}", controllers.ProductDelete(p.Products, logg))
		r.Get("/{productId}/reviews", controllers.ReviewList(p.Reviews, logg))
		r.With(authenticate).Post("/{productId}/reviews", controllers.ReviewCreate(p.Reviews, logg))
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(authenticate)
		r.Put("/{reviewId}", controllers.ReviewUpdate(p.Reviews, logg))
		r.Delete("/{reviewId}", controllers.ReviewDelete(p.Reviews, logg))
	})

	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", controllers.CartGet(p.Cart, logg))
		r.Delete("/", controllers.CartClear(p.Cart, logg))
		r.Post("/items", controllers.CartAddItem(p.Cart, logg))
		r.Put("/items/{productId}", controllers.CartUpdateItem(p.Cart, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(p.Cart, logg))
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authenticate)
		r.With(idempotent).Post("/", ordercontrollers.Create(p.Orders, logg))
		r.With(idempotent).Post("/checkout", ordercontrollers.Checkout(p.Orders, logg))
		r.With(adminOnly).Get("/", ordercontrollers.ListAll(p.Orders, logg))
		r.Get("/my/orders", ordercontrollers.ListMine(p.Orders, logg))
		r.With(vendorOnly).Get("/vendor/orders", ordercontrollers.ListVendor(p.Orders, logg))
		r.Get("/{orderId}", ordercontrollers.Detail(p.Orders, logg))
		r.With(vendorOrAdmin).Put("/{orderId}/status", ordercontrollers.UpdateStatus(p.Orders, logg))
		r.Put("/{orderId}/cancel", ordercontrollers.Cancel(p.Orders, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authenticate, adminOnly)
		r.Get("/stats", controllers.AdminStats(p.Admin, logg))
		r.Get("/users", controllers.AdminUsers(p.Admin, logg))
		r.Put("/users/{userId}/status", controllers.AdminUserStatus(p.Admin, logg))
		r.Get("/vendors", controllers.AdminVendors(p.Admin, logg))
		r.Put("/vendors/{vendorId}/verify", controllers.AdminVendorVerify(p.Vendors, logg))
		r.Put("/vendors/{vendorId}/status", controllers.AdminVendorStatus(p.Vendors, logg))
		r.Put("/reviews/{reviewId}/status", controllers.AdminReviewModerate(p.Reviews, logg))
	})

	return r
}
