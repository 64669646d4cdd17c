package web

import (
	"net/http"
	"time"

	"cafe-pos/internal/app"
)

// createMaterial handles POST /api/materials.
func (h *Handler) createMaterial(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.MaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.CreateMaterial(r.Context(), claims.CafeID, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, m)
}

// listMaterials handles GET /api/materials.
func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	materials, err := h.svc.ListMaterials(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list materials", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, materials)
}

// deactivateMaterial handles DELETE /api/materials/{id}.
func (h *Handler) deactivateMaterial(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateMaterial(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// receiveBatch handles POST /api/batches — records one received stock lot.
func (h *Handler) receiveBatch(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.BatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, err := h.svc.ReceiveBatch(r.Context(), claims.CafeID, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, b)
}

// getStock handles GET /api/stock?within_days=N. Batches expiring inside the
// window (default 7 days) are listed alongside current levels.
func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	days := queryInt(r, "within_days", 7)
	if days < 0 {
		days = 0
	}
	stock, err := h.svc.GetStock(r.Context(), claims.CafeID, time.Duration(days)*24*time.Hour)
	if err != nil {
		writeError(w, r, "failed to load stock", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stock)
}
