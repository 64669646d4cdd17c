package web

import (
	"net/http"

	"cafe-pos/internal/app"
)

// createCategory handles POST /api/categories.
func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	cat, err := h.svc.CreateCategory(r.Context(), claims.CafeID, req.Name)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, cat)
}

// listCategories handles GET /api/categories.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	cats, err := h.svc.ListCategories(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list categories", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, cats)
}

// deleteCategory handles DELETE /api/categories/{id}.
func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.CreateProduct(r.Context(), claims.CafeID, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, p)
}

// updateProduct handles PUT /api/products/{id}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req app.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.UpdateProduct(r.Context(), claims.CafeID, id, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, p)
}

// deactivateProduct handles DELETE /api/products/{id}.
func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateProduct(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), claims.CafeID, id)
	if err != nil {
		writeError(w, r, "product not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	products, err := h.svc.ListProducts(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list products", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, products)
}

// addVariation handles POST /api/products/{id}/variations.
func (h *Handler) addVariation(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name       string `json:"name"`
		PriceDelta string `json:"price_delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.AddVariation(r.Context(), claims.CafeID, id, req.Name, req.PriceDelta)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, v)
}

// addAddon handles POST /api/products/{id}/addons.
func (h *Handler) addAddon(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.svc.AddAddon(r.Context(), claims.CafeID, id, req.Name, req.Price)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, a)
}

// removeVariation handles DELETE /api/variations/{id}.
func (h *Handler) removeVariation(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveVariation(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// removeAddon handles DELETE /api/addons/{id}.
func (h *Handler) removeAddon(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveAddon(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// publicMenu handles GET /api/cafes/{cafeID}/menu — the customer storefront view.
func (h *Handler) publicMenu(w http.ResponseWriter, r *http.Request) {
	cafeID, ok := urlInt(w, r, "cafeID")
	if !ok {
		return
	}
	menu, err := h.svc.PublicMenu(r.Context(), cafeID)
	if err != nil {
		writeError(w, r, "cafe not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, menu)
}
