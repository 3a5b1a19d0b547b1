package api

import (
	"net/http"

	"belleza-be/internal/logger"
	"belleza-be/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type RouterOptions struct {
	CORSOrigin string
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.Limiter
}

// NewRouter builds the HTTP router for the storefront and back office.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(middleware.Recover)
	r.Use(logger.LoggingMiddleware)
	if opts.CORSOrigin != "" {
		r.Use(middleware.CORS(opts.CORSOrigin))
	}
	r.Use(middleware.CustomerAuth(h.tokens))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/send-code", h.SendCode)
			r.Post("/verify-code", h.VerifyCode)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/create", h.CreateOrder)
			r.With(middleware.RequireCustomer).Get("/mine", h.MyOrders)
		})

		r.Route("/customers/me", func(r chi.Router) {
			r.Use(middleware.RequireCustomer)
			r.Get("/", h.Me)
			r.Put("/", h.UpdateMe)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/featured", h.FeaturedProducts)
			r.Get("/slug/{slug}", h.GetProductBySlug)
			r.Get("/{id}", h.GetProduct)
		})
		r.Get("/search/products", h.SearchProducts)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Get("/{id}", h.GetCategory)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AdminLogin)
			r.Post("/logout", h.AdminLogout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(h.admins))

				r.Post("/verify-token", h.VerifyAdminToken)
				r.Get("/stats", h.Stats)
				r.Get("/metrics", h.Metrics)
				r.Post("/slugs", h.AllocateSlug)

				r.Route("/products", func(r chi.Router) {
					r.Get("/", h.AdminListProducts)
					r.Post("/", h.CreateProduct)
					r.Get("/{id}", h.AdminGetProduct)
					r.Put("/{id}", h.UpdateProduct)
					r.Delete("/{id}", h.DeleteProduct)
				})

				r.Route("/categories", func(r chi.Router) {
					r.Post("/", h.CreateCategory)
					r.Put("/{id}", h.UpdateCategory)
					r.Delete("/{id}", h.DeleteCategory)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", h.ListOrders)
					r.Put("/update-status", h.UpdateOrderStatus)
					r.Get("/{id}", h.GetOrder)
				})
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
