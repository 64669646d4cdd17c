package web

import (
	"net/http"

	"cafe-pos/internal/app"
)

// createReview handles POST /api/cafes/{cafeID}/reviews (public).
func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	cafeID, ok := urlInt(w, r, "cafeID")
	if !ok {
		return
	}
	var req app.ReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	review, err := h.svc.CreateReview(r.Context(), cafeID, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, review)
}

// listReviews handles GET /api/cafes/{cafeID}/reviews (public).
func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	cafeID, ok := urlInt(w, r, "cafeID")
	if !ok {
		return
	}
	result, err := h.svc.ListReviews(r.Context(), cafeID)
	if err != nil {
		writeError(w, r, "failed to list reviews", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}
