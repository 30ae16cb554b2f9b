package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig bundles the handlers and cross-cutting settings the
// router needs.
type RouterConfig struct {
	Products       *ProductsHandler
	Cart           *CartHandler
	Checkout       *CheckoutHandler
	Orders         *OrdersHandler
	AdminToken     string
	RequestTimeout time.Duration
}

// NewRouter builds the full route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(MetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/products", cfg.Products.ListProducts)
		r.Get("/products/{id}", cfg.Products.GetProduct)
		r.Get("/categories", cfg.Products.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cfg.Cart.GetCart)
			r.Delete("/", cfg.Cart.ClearCart)
			r.Post("/items", cfg.Cart.AddItem)
			r.Put("/items/{id}", cfg.Cart.UpdateItem)
			r.Delete("/items/{id}", cfg.Cart.RemoveItem)
		})

		r.Post("/checkout", cfg.Checkout.Checkout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", cfg.Orders.ListOrders)
			r.Get("/{id}", cfg.Orders.GetOrder)
			r.Post("/{id}/cancel", cfg.Orders.CancelOrder)
			r.Post("/{id}/pay", cfg.Orders.PayOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminOnly(cfg.AdminToken))

			r.Get("/orders", cfg.Orders.ListAllOrders)
			r.Get("/users/{id}/orders", cfg.Orders.ListUserOrders)
			r.Put("/orders/{id}/status", cfg.Orders.SetOrderStatus)
		})
	})

	return r
}
