package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-pos/internal/app"
	"cafe-pos/internal/core"
)

// createSubRecipe handles POST /api/sub-recipes.
func (h *Handler) createSubRecipe(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req struct {
		Name      string `json:"name"`
		YieldUnit string `json:"yield_unit"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	sr, err := h.svc.CreateSubRecipe(r.Context(), claims.CafeID, req.Name, req.YieldUnit)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, sr)
}

// listSubRecipes handles GET /api/sub-recipes.
func (h *Handler) listSubRecipes(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	list, err := h.svc.ListSubRecipes(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list sub-recipes", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

// getSubRecipe handles GET /api/sub-recipes/{id}.
func (h *Handler) getSubRecipe(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	sr, err := h.svc.GetSubRecipe(r.Context(), claims.CafeID, id)
	if err != nil {
		writeError(w, r, "sub-recipe not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, sr)
}

// deleteSubRecipe handles DELETE /api/sub-recipes/{id}. Deleting a sub-recipe
// that other recipes still reference is rejected with 409.
func (h *Handler) deleteSubRecipe(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSubRecipe(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// replaceRecipeLines handles PUT /api/recipes — replaces the full bill of
// materials of a product or sub-recipe. Edits that would close a sub-recipe
// cycle get 409.
func (h *Handler) replaceRecipeLines(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.RecipeLinesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lines, err := h.svc.ReplaceRecipeLines(r.Context(), claims.CafeID, req)
	if err != nil {
		if errors.Is(err, core.ErrCircularRecipe) {
			writeError(w, r, err.Error(), "CIRCULAR_RECIPE", http.StatusConflict)
			return
		}
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, lines)
}

// getRecipeLines handles GET /api/recipes/{ownerType}/{ownerID}.
func (h *Handler) getRecipeLines(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	ownerType := chi.URLParam(r, "ownerType")
	ownerID, ok := urlInt(w, r, "ownerID")
	if !ok {
		return
	}
	lines, err := h.svc.GetRecipeLines(r.Context(), claims.CafeID, ownerType, ownerID)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, lines)
}
