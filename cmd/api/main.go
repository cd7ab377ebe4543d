package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/expresskart/expresskart-backend/api/routes"
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
	"github.com/expresskart/expresskart-backend/pkg/env"
	"github.com/expresskart/expresskart-backend/pkg/instance"
	"github.com/expresskart/expresskart-backend/pkg/logger"
	"github.com/expresskart/expresskart-backend/pkg/metrics"
	"github.com/expresskart/expresskart-backend/pkg/migrate"
	"github.com/expresskart/expresskart-backend/pkg/outbox"
	"github.com/expresskart/expresskart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	handler, err := buildHandler(cfg, logg, dbClient, redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func buildHandler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (http.Handler, error) {
	conn := dbClient.DB()

	usersRepo := users.NewRepository(conn)
	vendorsRepo := vendors.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	cartsRepo := cart.NewCartRecordRepository(conn)
	cartItemsRepo := cart.NewCartItemRepository(conn)
	reviewsRepo := reviews.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	authService, err := auth.NewService(auth.ServiceParams{
		Users:          usersRepo,
		UsersForTx:     func(tx *gorm.DB) auth.UserRepository { return users.NewRepository(tx) },
		Tx:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	usersService, err := users.NewService(usersRepo, dbClient)
	if err != nil {
		return nil, err
	}

	vendorsService, err := vendors.NewService(
		vendorsRepo,
		usersRepo,
		func(tx *gorm.DB) vendors.UsersRepository { return users.NewRepository(tx) },
		dbClient,
	)
	if err != nil {
		return nil, err
	}

	productsService, err := products.NewService(productsRepo, vendorsRepo)
	if err != nil {
		return nil, err
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Carts:    cartsRepo,
		Items:    cartItemsRepo,
		Products: productsRepo,
		Tx:       dbClient,
	})
	if err != nil {
		return nil, err
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Reviews:           reviewsRepo,
		Products:          productsRepo,
		Aggregator:        reviews.NewAggregator(reviewsRepo, productsRepo, vendorsRepo),
		Tx:                dbClient,
		RequireModeration: cfg.Reviews.RequireModeration,
	})
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Orders.Location()
	if err != nil {
		return nil, err
	}
	pricing, err := orders.NewPricing(cfg.Orders)
	if err != nil {
		return nil, err
	}
	ordersService, err := orders.NewService(orders.ServiceParams{
		Orders:         ordersRepo,
		Products:       productsRepo,
		Vendors:        vendorsRepo,
		Users:          usersRepo,
		Carts:          cartsRepo,
		CartItems:      cartItemsRepo,
		Outbox:         outbox.NewService(outbox.NewRepository(conn), logg, cfg.FeatureFlags.Outbox),
		Numbers:        orders.NewNumberGenerator(redisClient, loc),
		Pricing:        pricing,
		NumberAttempts: cfg.Orders.NumberMaxAttempts,
		Metrics:        metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		Logger:         logg,
		Tx:             dbClient,
	})
	if err != nil {
		return nil, err
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		Users:    usersRepo,
		Vendors:  vendorsRepo,
		Products: productsRepo,
		Orders:   ordersRepo,
		Vendor:   vendorsService,
	})
	if err != nil {
		return nil, err
	}

	return routes.NewRouter(routes.Params{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Cache:       redisClient,
		Accounts:    usersRepo,
		Gatherer:    prometheus.DefaultGatherer,
		HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),

		Auth:     authService,
		Users:    usersService,
		Vendors:  vendorsService,
		Products: productsService,
		Cart:     cartService,
		Orders:   ordersService,
		Reviews:  reviewsService,
		Admin:    adminService,
	}), nil
}
