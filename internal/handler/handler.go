// Package handler maps the HTTP surface onto the order service.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nordural/order-service/internal/domain/order"
)

// Handler serves the order API routes, delegating business logic to the
// injected order service.
type Handler struct {
	orders *order.Service
}

// NewHandler constructs a Handler around the order service.
func NewHandler(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes builds the router for the full API surface. The access guard is
// applied by the caller so probe endpoints can stay outside it.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Root)
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/summary", h.Summary)
		r.Get("/customer/{customerID}", h.CustomerOrders)
		r.Get("/{orderID}", h.GetOrder)
		r.Patch("/{orderID}", h.UpdateOrder)
		r.Delete("/{orderID}", h.DeleteOrder)
	})

	return r
}

// Root serves the welcome message.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"message": "Welcome to the Nordural Order Service API!",
	})
}
