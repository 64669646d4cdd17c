package web

import (
	"net/http"
	"time"
)

// reportWindow reads from/to query params, defaulting to the last 30 days.
func reportWindow(r *http.Request) (string, string) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		now := time.Now()
		to = now.Format("2006-01-02")
		from = now.AddDate(0, 0, -30).Format("2006-01-02")
	}
	return from, to
}

// salesSummary handles GET /api/reports/sales?from=&to=.
func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	from, to := reportWindow(r)
	summary, err := h.svc.SalesSummary(r.Context(), claims.CafeID, from, to)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, summary)
}

// bestSellers handles GET /api/reports/best-sellers?from=&to=&limit=.
func (h *Handler) bestSellers(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	from, to := reportWindow(r)
	limit := queryInt(r, "limit", 10)
	sellers, err := h.svc.BestSellers(r.Context(), claims.CafeID, from, to, limit)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, sellers)
}
