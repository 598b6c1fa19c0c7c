package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nordural/order-service/internal/domain/order"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// CreateOrder handles POST /orders/.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload order.CreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		respondMalformed(w, r, err)
		return
	}

	created, err := h.orders.Create(r.Context(), &payload)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, created)
}

// ListOrders handles GET /orders/ with optional status and customer_id
// filters and skip/limit pagination.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, verr := parseListFilter(r)
	if verr != nil {
		respondValidation(w, r, verr)
		return
	}

	orders, err := h.orders.List(r.Context(), *filter)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, orders)
}

// GetOrder handles GET /orders/{orderID}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, o)
}

// UpdateOrder handles PATCH /orders/{orderID}: a partial update where only
// the supplied fields change.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var payload order.UpdatePayload
	if err := decodeJSON(r, &payload); err != nil {
		respondMalformed(w, r, err)
		return
	}

	updated, err := h.orders.Update(r.Context(), chi.URLParam(r, "orderID"), &payload)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, updated)
}

// DeleteOrder handles DELETE /orders/{orderID}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		respondDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CustomerOrders handles GET /orders/customer/{customerID}. An unknown
// customer yields an empty array, not 404.
func (h *Handler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, orders)
}

// Summary handles GET /orders/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orders.Summarize(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, summary)
}

// parseListFilter extracts the list query parameters, applying the skip=0 and
// limit=100 defaults. Non-numeric or negative pagination values and unknown
// statuses are validation failures.
func parseListFilter(r *http.Request) (*order.ListFilter, *order.ValidationError) {
	q := r.URL.Query()
	fields := make(map[string]string)

	filter := order.ListFilter{
		Skip:       defaultSkip,
		Limit:      defaultLimit,
		CustomerID: q.Get("customer_id"),
	}

	if raw := q.Get("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			fields["status"] = "must be a valid order status"
		} else {
			filter.Status = &st
		}
	}

	if raw := q.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields["skip"] = "must be a non-negative integer"
		} else {
			filter.Skip = n
		}
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields["limit"] = "must be a non-negative integer"
		} else {
			filter.Limit = n
		}
	}

	if len(fields) > 0 {
		return nil, &order.ValidationError{Fields: fields}
	}
	return &filter, nil
}
