package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/medkitstore/medkit-backend/api/routes"
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

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if cfg.FeatureFlags.AutoMigrate {
		if err := dbClient.DB().AutoMigrate(models.All()...); err != nil {
			logg.Error(ctx, "auto-migration failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "auto-migration applied")
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	svcs, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(ctx, "failed to wire services", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Services: svcs,
	})

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	logg.Info(logg.WithField(ctx, "addr", addr), "api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "server stopped", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	conn := dbClient.DB()

	catalogRepo := catalog.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	checkoutRepo := checkout.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	userRepo := customers.NewRepository(conn)
	reviewRepo := reviews.NewRepository(conn)

	catalogSvc, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	cartSvc, err := cart.NewService(cartRepo, dbClient, catalogSvc)
	if err != nil {
		return routes.Services{}, err
	}
	customerSvc, err := customers.NewService(userRepo)
	if err != nil {
		return routes.Services{}, err
	}
	settingsSvc, err := settings.NewService(conn)
	if err != nil {
		return routes.Services{}, err
	}
	checkoutSvc, err := checkout.NewService(cfg.Checkout, checkoutRepo, cartRepo, catalogRepo, dbClient, customerSvc, settingsSvc)
	if err != nil {
		return routes.Services{}, err
	}
	paymentSvc, err := payments.NewService(checkoutRepo)
	if err != nil {
		return routes.Services{}, err
	}
	orderSvc, err := orders.NewService(orderRepo, checkoutRepo, catalogRepo, dbClient, customerSvc)
	if err != nil {
		return routes.Services{}, err
	}
	reviewSvc, err := reviews.NewService(reviewRepo, catalogSvc, checkoutRepo)
	if err != nil {
		return routes.Services{}, err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		Users:          userRepo,
		AppConfig:      cfg.App,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authSvc,
		Catalog:   catalogSvc,
		Cart:      cartSvc,
		Checkout:  checkoutSvc,
		Payments:  paymentSvc,
		Orders:    orderSvc,
		Customers: customerSvc,
		Reviews:   reviewSvc,
		Settings:  settingsSvc,
	}, nil
}
