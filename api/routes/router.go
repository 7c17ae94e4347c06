package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookhaven/bookhaven-backend/api/controllers"
	"github.com/bookhaven/bookhaven-backend/api/middleware"
	authsvc "github.com/bookhaven/bookhaven-backend/internal/auth"
	bookssvc "github.com/bookhaven/bookhaven-backend/internal/books"
	cartsvc "github.com/bookhaven/bookhaven-backend/internal/cart"
	checkoutsvc "github.com/bookhaven/bookhaven-backend/internal/checkout"
	orderssvc "github.com/bookhaven/bookhaven-backend/internal/orders"
	replenishmentsvc "github.com/bookhaven/bookhaven-backend/internal/replenishment"
	reportssvc "github.com/bookhaven/bookhaven-backend/internal/reports"
	"github.com/bookhaven/bookhaven-backend/pkg/config"
	"github.com/bookhaven/bookhaven-backend/pkg/enums"
	"github.com/bookhaven/bookhaven-backend/pkg/logger"
	"github.com/bookhaven/bookhaven-backend/pkg/redis"
)

// Pinger is the health check surface of a wired dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles everything the router mounts.
type Services struct {
	Auth          authsvc.Service
	Books         bookssvc.Service
	Cart          cartsvc.Service
	Checkout      checkoutsvc.Service
	Orders        orderssvc.Service
	Replenishment replenishmentsvc.Service
	Reports       reportssvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
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

	deps := map[string]controllers.HealthDep{}
	if dbP != nil {
		deps["database"] = dbP
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", controllers.BookSearch(svcs.Books, logg))
		r.Get("/{isbn}", controllers.BookDetails(svcs.Books, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartList(svcs.Cart, logg))
			r.Delete("/", controllers.CartClear(svcs.Cart, logg))
			r.Post("/items", controllers.CartAdd(svcs.Cart, logg))
			r.Put("/items/{isbn}", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/items/{isbn}", controllers.CartRemoveItem(svcs.Cart, logg))
		})

		r.Get("/me", controllers.AuthMe(svcs.Auth, logg))

		r.Post("/checkout", controllers.CheckoutExecute(svcs.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(svcs.Orders, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

			r.Route("/books", func(r chi.Router) {
				r.Post("/", controllers.AdminBookAdd(svcs.Books, logg))
				r.Patch("/{isbn}", controllers.AdminBookUpdate(svcs.Books, logg))
				r.Get("/low-stock", controllers.AdminLowStock(svcs.Books, logg))
			})

			r.Route("/publishers", func(r chi.Router) {
				r.Post("/", controllers.AdminPublisherAdd(svcs.Books, logg))
				r.Get("/", controllers.AdminPublisherList(svcs.Books, logg))
			})

			r.Route("/replenishment", func(r chi.Router) {
				r.Post("/", controllers.ReplenishmentCreate(svcs.Replenishment, logg))
				r.Get("/", controllers.ReplenishmentList(svcs.Replenishment, logg))
				r.Post("/{poId}/confirm", controllers.ReplenishmentConfirm(svcs.Replenishment, logg))
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/sales/monthly", controllers.ReportMonthlySales(svcs.Reports, logg))
				r.Get("/sales/daily", controllers.ReportDailySales(svcs.Reports, logg))
				r.Get("/top-customers", controllers.ReportTopCustomers(svcs.Reports, logg))
				r.Get("/top-books", controllers.ReportTopBooks(svcs.Reports, logg))
				r.Get("/replenishment", controllers.ReportReplenishment(svcs.Reports, logg))
			})
		})
	})

	return r
}
