package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/cartview"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/checkout"
	"github.com/parvesmosarof35/beautyShop-sub000/internal/notify"
)

// NewRouter wires the storefront API.
func NewRouter(carts *cartview.Service, orchestrator *checkout.Orchestrator, feed *notify.Feed, requestTimeout time.Duration) chi.Router {
	cartHandler := NewCartHandler(carts, requestTimeout)
	checkoutHandler := NewCheckoutHandler(orchestrator, requestTimeout)
	catalogHandler := NewCatalogHandler()
	notificationsHandler := NewNotificationsHandler(feed)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.SetQuantity)
			r.Post("/items/{product_id}/increment", cartHandler.IncrementItem)
			r.Post("/items/{product_id}/decrement", cartHandler.DecrementItem)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkoutHandler.PlaceOrder)
			r.Get("/state", checkoutHandler.State)
			r.Post("/return", checkoutHandler.Return)
			r.Get("/config", checkoutHandler.Config)
		})

		r.Get("/products", catalogHandler.Listing)
		r.Get("/notifications", notificationsHandler.Drain)
	})

	return r
}
