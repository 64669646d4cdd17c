package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cafe-pos/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Auth (public) ─────────────────────────────────────────────────────────
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Customer-facing routes (public, cafe-scoped by URL) ──────────────────
	r.Get("/api/cafes/{cafeID}/menu", h.publicMenu)
	r.Post("/api/cafes/{cafeID}/orders", h.placeOnlineOrder)
	r.Get("/api/cafes/{cafeID}/reviews", h.listReviews)
	r.Post("/api/cafes/{cafeID}/reviews", h.createReview)
	r.Get("/api/cafes/{cafeID}/vouchers/{code}/qr", h.voucherCodeQR)

	// ── Staff routes (cafe scope comes from the JWT, not the URL) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		// Cashiers and owners both run the counter.
		r.Get("/api/categories", h.listCategories)
		r.Get("/api/products", h.listProducts)
		r.Get("/api/products/{id}", h.getProduct)
		r.Post("/api/orders", h.placeCounterOrder)
		r.Get("/api/orders", h.listOrders)
		r.Get("/api/orders/{id}", h.getOrder)

		// Back office is owner-only.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireOwner)

			// Catalog
			r.Post("/api/categories", h.createCategory)
			r.Delete("/api/categories/{id}", h.deleteCategory)
			r.Post("/api/products", h.createProduct)
			r.Put("/api/products/{id}", h.updateProduct)
			r.Delete("/api/products/{id}", h.deactivateProduct)
			r.Post("/api/products/{id}/variations", h.addVariation)
			r.Post("/api/products/{id}/addons", h.addAddon)
			r.Delete("/api/variations/{id}", h.removeVariation)
			r.Delete("/api/addons/{id}", h.removeAddon)

			// Inventory
			r.Get("/api/materials", h.listMaterials)
			r.Post("/api/materials", h.createMaterial)
			r.Delete("/api/materials/{id}", h.deactivateMaterial)
			r.Post("/api/batches", h.receiveBatch)
			r.Get("/api/stock", h.getStock)

			// Recipes & costing
			r.Get("/api/sub-recipes", h.listSubRecipes)
			r.Post("/api/sub-recipes", h.createSubRecipe)
			r.Get("/api/sub-recipes/{id}", h.getSubRecipe)
			r.Delete("/api/sub-recipes/{id}", h.deleteSubRecipe)
			r.Put("/api/recipes", h.replaceRecipeLines)
			r.Get("/api/recipes/{ownerType}/{ownerID}", h.getRecipeLines)

			// Pricing & menu engineering
			r.Post("/api/products/{id}/reprice", h.repriceProduct)
			r.Get("/api/products/{id}/pricing", h.getProductPricing)
			r.Get("/api/pricing", h.listProductPricing)
			r.Get("/api/menu-engineering", h.classifyMenu)

			// Vouchers
			r.Get("/api/vouchers", h.listVouchers)
			r.Post("/api/vouchers", h.createVoucher)
			r.Delete("/api/vouchers/{id}", h.deactivateVoucher)
			r.Post("/api/vouchers/{id}/codes", h.generateVoucherCodes)
			r.Get("/api/vouchers/{id}/codes", h.listVoucherCodes)

			// Reports
			r.Get("/api/reports/sales", h.salesSummary)
			r.Get("/api/reports/best-sellers", h.bestSellers)

			// Cashier accounts
			r.Get("/api/cashiers", h.listCashiers)
			r.Post("/api/cashiers", h.createCashier)
			r.Delete("/api/cashiers/{id}", h.deactivateCashier)
		})
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlInt extracts an integer URL parameter; the bool is false when the value
// is missing or not a number (a 400 has already been written in that case).
func urlInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

// queryInt reads an optional integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return def
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
