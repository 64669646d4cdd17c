package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cafe-pos/internal/app"
	"cafe-pos/internal/core"
)

// createVoucher handles POST /api/vouchers.
func (h *Handler) createVoucher(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	var req app.VoucherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := h.svc.CreateVoucher(r.Context(), claims.CafeID, req)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, v)
}

// listVouchers handles GET /api/vouchers.
func (h *Handler) listVouchers(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	vouchers, err := h.svc.ListVouchers(r.Context(), claims.CafeID)
	if err != nil {
		writeError(w, r, "failed to list vouchers", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, vouchers)
}

// deactivateVoucher handles DELETE /api/vouchers/{id}.
func (h *Handler) deactivateVoucher(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateVoucher(r.Context(), claims.CafeID, id); err != nil {
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// generateVoucherCodes handles POST /api/vouchers/{id}/codes.
func (h *Handler) generateVoucherCodes(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Count int `json:"count"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.GenerateVoucherCodes(r.Context(), claims.CafeID, id, req.Count)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeCreated(w, result)
}

// listVoucherCodes handles GET /api/vouchers/{id}/codes.
func (h *Handler) listVoucherCodes(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	id, ok := urlInt(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListVoucherCodes(r.Context(), claims.CafeID, id)
	if err != nil {
		writeError(w, r, "failed to list voucher codes", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// voucherCodeQR handles GET /api/cafes/{cafeID}/vouchers/{code}/qr — renders
// the code as a PNG so it can be printed or shown on a phone. Public: the code
// itself is the secret.
func (h *Handler) voucherCodeQR(w http.ResponseWriter, r *http.Request) {
	cafeID, ok := urlInt(w, r, "cafeID")
	if !ok {
		return
	}
	code := chi.URLParam(r, "code")
	size := queryInt(r, "size", 256)
	if size < 64 || size > 1024 {
		size = 256
	}
	png, err := h.svc.VoucherCodeQR(r.Context(), cafeID, code, size)
	if err != nil {
		if errors.Is(err, core.ErrVoucherNotFound) {
			writeError(w, r, "voucher code not found", "NOT_FOUND", http.StatusNotFound)
			return
		}
		writeError(w, r, "failed to render QR code", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
