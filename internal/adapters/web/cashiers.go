package web

import (
	"net/http"

	"cafe-pos/internal/app"
)

// createCashier handles POST /api/cashiers.
func (h *Handler) createCashier(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.CashierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.CreateCashier(r.Context(), claims.CafeID, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, user)
}

// listCashiers handles GET /api/cashiers.
func (h *Handler) listCashiers(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	users, err := h.svc.ListCashiers(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list cashiers", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, users)
}

// deactivateCashier handles DELETE /api/cashiers/{id}.
func (h *Handler) deactivateCashier(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateCashier(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
