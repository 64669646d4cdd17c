package web

import (
	"errors"
	"net/http"

	"cafe-pos/internal/app"
	"cafe-pos/internal/core"
)

// placeOnlineOrder handles POST /api/cafes/{cafeID}/orders — the public
// customer checkout. No cashier is attached.
func (h *Handler) placeOnlineOrder(w http.ResponseWriter, r *http.Request) {
	cafeID, ok := urlInt(w, r, "cafeID")
	if !ok {
		return
	}
	var req app.OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.OrderType = core.OrderTypeOnline
	h.placeOrder(w, r, cafeID, nil, req)
}

// placeCounterOrder handles POST /api/orders — a staff member rings up an
// order at the counter, attributed to their account.
func (h *Handler) placeCounterOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.OrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.OrderType = core.OrderTypeCounter
	h.placeOrder(w, r, claims.CafeID, &claims.UserID, req)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request, cafeID int, cashierID *int, req app.OrderRequest) {
	order, err := h.svc.PlaceOrder(r.Context(), cafeID, cashierID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInsufficientStock):
			writeError(w, r, err.Error(), "INSUFFICIENT_STOCK", http.StatusConflict)
		case errors.Is(err, core.ErrVoucherNotFound):
			writeError(w, r, err.Error(), "VOUCHER_NOT_FOUND", http.StatusNotFound)
		case errors.Is(err, core.ErrVoucherUsed), errors.Is(err, core.ErrVoucherExpired):
			writeError(w, r, err.Error(), "VOUCHER_REJECTED", http.StatusConflict)
		default:
			writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		}
		return
	}
	writeCreated(w, order)
}

// getOrder handles GET /api/orders/{id}.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(r.Context(), claims.CafeID, id)
	if err != nil {
		writeError(w, r, "order not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeJSON(w, order)
}

// listOrders handles GET /api/orders?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	orders, err := h.svc.ListOrders(r.Context(), claims.CafeID, r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, orders)
}
