package router

import (
	"net/http"

	"restaurant-orders/internal/handler"
	"restaurant-orders/internal/metrics"
	"restaurant-orders/internal/middleware"
	"restaurant-orders/internal/model"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Health  *handler.HealthHandler
	View    *handler.ViewHandler
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Order   *handler.OrderHandler
	Cart    *handler.CartHandler
	User    *handler.UserHandler
}

// Options configures the router.
type Options struct {
	Sessions    middleware.SessionOpener
	HTTPMetrics *metrics.HTTPMetrics
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// MediaDir is served under /media/ when set.
	MediaDir string
	// AllowedOrigins are the browser origins admitted by CORS.
	AllowedOrigins []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware order: Recovery -> RequestID -> Logging -> Metrics -> CORS -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(opts.HTTPMetrics))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.Get("/health", h.Health.Health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(opts.MediaDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(opts.Sessions, handler.SessionCookie))

		// Views
		r.Get("/", h.View.Root)
		r.With(middleware.RequireAnonymous(logger)).Get("/login", h.View.Login)
		r.With(middleware.RequireRoles(logger, model.RoleCustomer)).Get("/cliente", h.View.Customer)
		r.With(middleware.RequireRoles(logger, model.RoleAdmin)).Get("/admin", h.View.Admin)
		r.Get("/acceso-denegado", h.View.Denied)

		r.Route("/api", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/login", h.Auth.Login)
				r.Post("/register", h.Auth.Register)
				r.Post("/google", h.Auth.Google)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRolesAPI(logger))
					r.Post("/logout", h.Auth.Logout)
					r.Get("/me", h.Auth.Me)
				})
			})

			r.Get("/categories", h.Product.Categories)
			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.Product.List)
				r.Get("/{id}", h.Product.Get)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRolesAPI(logger, model.RoleAdmin))
					r.Post("/", h.Product.Create)
					r.Post("/images", h.Product.UploadImage)
					r.Patch("/{id}", h.Product.Update)
					r.Delete("/{id}", h.Product.Delete)
				})
			})

			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.RequireRolesAPI(logger, model.RoleCustomer))
				r.Get("/", h.Cart.Get)
				r.Post("/items", h.Cart.AddItem)
				r.Delete("/items/{index}", h.Cart.RemoveItem)
				r.Post("/checkout", h.Cart.Checkout)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRolesAPI(logger, model.RoleCustomer))
					r.Get("/mine", h.Order.Mine)
					r.Post("/{id}/comment", h.Order.Comment)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRolesAPI(logger, model.RoleAdmin))
					r.Get("/", h.Order.ListAll)
					r.Patch("/{id}", h.Order.Update)
					r.Patch("/{id}/status", h.Order.SetStatus)
					r.Post("/{id}/advance", h.Order.Advance)
					r.Delete("/{id}", h.Order.Delete)
				})
			})

			r.With(middleware.RequireRolesAPI(logger, model.RoleAdmin)).Post("/users/{uid}/admin", h.User.GrantAdmin)
		})
	})

	r.NotFound(h.View.NotFound)

	return r
}
