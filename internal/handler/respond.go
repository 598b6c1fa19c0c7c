package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/nordural/order-service/internal/domain/order"
)

// detailResponse is the fixed-message error body, matching the API's
// {"detail": "..."} convention.
type detailResponse struct {
	Detail string `json:"detail"`
}

// validationResponse carries per-field messages for 422 responses.
type validationResponse struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Status is already on the wire; nothing to do but log.
		zctx.From(r.Context()).Warn("encode response", zap.Error(err))
	}
}

func respondDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	respondJSON(w, r, status, detailResponse{Detail: detail})
}

func respondValidation(w http.ResponseWriter, r *http.Request, verr *order.ValidationError) {
	respondJSON(w, r, http.StatusUnprocessableEntity, validationResponse{
		Detail: "validation failed",
		Fields: verr.Fields,
	})
}

// respondDomainError translates service errors into the client-facing
// taxonomy: validation failures to 422, duplicates to 400, missing records
// to 404. Anything else is an unhandled store-level error and propagates as
// a generic 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidation(w, r, verr)
	case errors.Is(err, order.ErrNotFound):
		respondDetail(w, r, http.StatusNotFound, "Order not found")
	case errors.Is(err, order.ErrDuplicateID):
		respondDetail(w, r, http.StatusBadRequest, "Order ID already exists")
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondDetail(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeJSON decodes the request body into dst. Unparseable JSON, wrong
// primitive types, and out-of-set enum values all fail here, before any
// validation rule runs, and map to 422.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// respondMalformed answers a body that failed to decode. The decoder error
// carries Go type names and byte offsets, so it goes to the log, not the
// client.
func respondMalformed(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Debug("malformed request body", zap.Error(err))
	respondDetail(w, r, http.StatusUnprocessableEntity, "malformed request body")
}
