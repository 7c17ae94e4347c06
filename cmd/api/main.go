package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/bookhaven/bookhaven-backend/api/routes"
	authsvc "github.com/bookhaven/bookhaven-backend/internal/auth"
	bookssvc "github.com/bookhaven/bookhaven-backend/internal/books"
	cartsvc "github.com/bookhaven/bookhaven-backend/internal/cart"
	checkoutsvc "github.com/bookhaven/bookhaven-backend/internal/checkout"
	"github.com/bookhaven/bookhaven-backend/internal/inventory"
	orderssvc "github.com/bookhaven/bookhaven-backend/internal/orders"
	replenishmentsvc "github.com/bookhaven/bookhaven-backend/internal/replenishment"
	reportssvc "github.com/bookhaven/bookhaven-backend/internal/reports"
	"github.com/bookhaven/bookhaven-backend/internal/users"
	"github.com/bookhaven/bookhaven-backend/pkg/config"
	"github.com/bookhaven/bookhaven-backend/pkg/db"
	"github.com/bookhaven/bookhaven-backend/pkg/logger"
	"github.com/bookhaven/bookhaven-backend/pkg/metrics"
	"github.com/bookhaven/bookhaven-backend/pkg/migrate"
	"github.com/bookhaven/bookhaven-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()

	booksRepo := bookssvc.NewRepository(gormDB)
	cartRepo := cartsvc.NewRepository(gormDB)
	ordersRepo := orderssvc.NewRepository(gormDB)
	replenishmentRepo := replenishmentsvc.NewRepository(gormDB)
	reportsRepo := reportssvc.NewRepository(gormDB)
	usersRepo := users.NewRepository(gormDB)
	ledger := inventory.NewLedger()

	booksService, err := bookssvc.NewService(booksRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create books service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartRepo, booksRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	checkoutService, err := checkoutsvc.NewService(dbClient, cartRepo, ordersRepo, ledger, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orderssvc.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	replenishmentService, err := replenishmentsvc.NewService(replenishmentRepo, dbClient, ledger, booksRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create replenishment service", err)
		os.Exit(1)
	}

	reportsService, err := reportssvc.NewService(reportsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(usersRepo, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
		Auth:          authService,
		Books:         booksService,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        ordersService,
		Replenishment: replenishmentService,
		Reports:       reportsService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	closeErr := multierr.Combine(redisClient.Close(), dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "api server stopped")
}
