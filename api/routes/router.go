package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/records-backend/api/controllers"
	"github.com/angelmondragon/records-backend/api/docs"
	"github.com/angelmondragon/records-backend/api/middleware"
	"github.com/angelmondragon/records-backend/api/responses"
	"github.com/angelmondragon/records-backend/internal/logins"
	"github.com/angelmondragon/records-backend/internal/orders"
	"github.com/angelmondragon/records-backend/internal/products"
	"github.com/angelmondragon/records-backend/internal/users"
	"github.com/angelmondragon/records-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/records-backend/pkg/errors"
	"github.com/angelmondragon/records-backend/pkg/logger"
	"github.com/angelmondragon/records-backend/pkg/metrics"
	"github.com/angelmondragon/records-backend/pkg/redis"
)

// Dependencies carries everything the router wires into handlers. Redis and
// Registry are optional.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Users    users.Service
	Logins   logins.Service
	Orders   orders.Service
	Products products.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(httpMetrics),
	)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responses.WriteError(req.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMethodNotAllowed, "method not allowed"))
	})

	checks := map[string]controllers.Pinger{"database": deps.DB}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})

	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	var limiter middleware.Limiter = middleware.NewLocalLimiter()
	if deps.Redis != nil {
		limiter = deps.Redis
	}
	writePolicy := middleware.NewWriteRateLimitPolicy(
		cfg.RateLimit.Window,
		cfg.RateLimit.WriteIPLimit,
		cfg.RateLimit.CreateEmailLimit,
	)

	records := func(r chi.Router) {
		r.Use(middleware.WriteRateLimit(writePolicy, limiter, logg))

		r.Get("/", docs.Index())
		r.Get("/openapi.json", docs.Spec())

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(deps.Users, logg))
			r.With(middleware.SignupRateLimit(writePolicy, limiter, logg)).Post("/add", controllers.CreateUser(deps.Users, logg))
			r.Put("/update", controllers.UpdateUser(deps.Users, logg))
			r.Delete("/delete", controllers.DeleteUser(deps.Users, logg))
		})

		r.Route("/logins", func(r chi.Router) {
			r.Get("/", controllers.ListLogins(deps.Logins, logg))
			r.Post("/add", controllers.CreateLogin(deps.Logins, logg))
			r.Delete("/delete", controllers.DeleteLogins(deps.Logins, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Post("/add", controllers.CreateOrder(deps.Orders, logg))
			r.Put("/update", controllers.UpdateOrder(deps.Orders, logg))
			r.Delete("/delete", controllers.DeleteOrder(deps.Orders, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Post("/add", controllers.CreateProduct(deps.Products, logg))
			r.Put("/update", controllers.UpdateProduct(deps.Products, logg))
			r.Delete("/delete", controllers.DeleteProduct(deps.Products, logg))
		})
	}

	r.Group(records)
	r.Route("/api", records)

	return r
}
