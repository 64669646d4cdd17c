package web

import (
	"errors"
	"net/http"
	"time"

	"cafe-pos/internal/app"
	"cafe-pos/internal/core"
)

// repriceProduct handles POST /api/products/{id}/reprice — recomputes the
// ingredient cost and smart price suggestion for one product.
func (h *Handler) repriceProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req app.RepriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	pricing, err := h.svc.RepriceProduct(r.Context(), claims.CafeID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidMargin):
			writeError(w, r, err.Error(), "INVALID_MARGIN", http.StatusBadRequest)
		case errors.Is(err, core.ErrCircularRecipe):
			writeError(w, r, err.Error(), "CIRCULAR_RECIPE", http.StatusConflict)
		default:
			writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, pricing)
}

// getProductPricing handles GET /api/products/{id}/pricing.
func (h *Handler) getProductPricing(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	pricing, err := h.svc.GetProductPricing(r.Context(), claims.CafeID, id)
	if err != nil {
		writeError(w, r, "failed to load pricing", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	if pricing == nil {
		writeError(w, r, "no pricing recorded for product", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, pricing)
}

// listProductPricing handles GET /api/pricing.
func (h *Handler) listProductPricing(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	list, err := h.svc.ListProductPricing(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list pricing", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

// classifyMenu handles GET /api/menu-engineering?from=YYYY-MM-DD&to=YYYY-MM-DD.
// The window defaults to the last 30 days.
func (h *Handler) classifyMenu(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		now := time.Now()
		to = now.Format("2006-01-02")
		from = now.AddDate(0, 0, -30).Format("2006-01-02")
	}
	matrix, err := h.svc.ClassifyMenu(r.Context(), claims.CafeID, from, to)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, matrix)
}
