package app

import (
	"context"
	"time"

	"cafe-pos/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// HTTP or display concerns. Every operation takes the caller's cafe id
// explicitly — there is no ambient tenant state.
type ApplicationService interface {
	// ── Auth / accounts ───────────────────────────────────────────────────
	AuthenticateUser(ctx context.Context, username, password string) (*Session, error)
	GetUser(ctx context.Context, userID int) (*core.User, error)
	CreateCashier(ctx context.Context, cafeID int, req CashierRequest) (*core.User, error)
	ListCashiers(ctx context.Context, cafeID int) ([]core.User, error)
	DeactivateCashier(ctx context.Context, cafeID, userID int) error

	// ── Catalog ───────────────────────────────────────────────────────────
	CreateCategory(ctx context.Context, cafeID int, name string) (*core.Category, error)
	ListCategories(ctx context.Context, cafeID int) ([]core.Category, error)
	DeleteCategory(ctx context.Context, cafeID, categoryID int) error
	CreateProduct(ctx context.Context, cafeID int, req ProductRequest) (*core.Product, error)
	UpdateProduct(ctx context.Context, cafeID, productID int, req ProductRequest) (*core.Product, error)
	DeactivateProduct(ctx context.Context, cafeID, productID int) error
	GetProduct(ctx context.Context, cafeID, productID int) (*core.Product, error)
	ListProducts(ctx context.Context, cafeID int) ([]core.Product, error)
	AddVariation(ctx context.Context, cafeID, productID int, name string, priceDelta string) (*core.Variation, error)
	AddAddon(ctx context.Context, cafeID, productID int, name string, price string) (*core.Addon, error)
	RemoveVariation(ctx context.Context, cafeID, variationID int) error
	RemoveAddon(ctx context.Context, cafeID, addonID int) error

	// PublicMenu is the customer-facing catalog view with review
	// aggregates; it needs no authentication.
	PublicMenu(ctx context.Context, cafeID int) (*MenuResult, error)

	// ── Inventory ─────────────────────────────────────────────────────────
	CreateMaterial(ctx context.Context, cafeID int, req MaterialRequest) (*core.RawMaterial, error)
	ListMaterials(ctx context.Context, cafeID int) ([]core.RawMaterial, error)
	DeactivateMaterial(ctx context.Context, cafeID, materialID int) error
	ReceiveBatch(ctx context.Context, cafeID int, req BatchRequest) (*core.MaterialBatch, error)
	// GetStock returns stock levels plus batches expiring within the window.
	GetStock(ctx context.Context, cafeID int, expiryWindow time.Duration) (*StockResult, error)

	// ── Recipes & costing ─────────────────────────────────────────────────
	CreateSubRecipe(ctx context.Context, cafeID int, name, yieldUnit string) (*core.SubRecipe, error)
	ListSubRecipes(ctx context.Context, cafeID int) ([]core.SubRecipe, error)
	GetSubRecipe(ctx context.Context, cafeID, subRecipeID int) (*core.SubRecipe, error)
	DeleteSubRecipe(ctx context.Context, cafeID, subRecipeID int) error
	ReplaceRecipeLines(ctx context.Context, cafeID int, req RecipeLinesRequest) ([]core.RecipeLine, error)
	GetRecipeLines(ctx context.Context, cafeID int, ownerType string, ownerID int) ([]core.RecipeLine, error)

	// ── Pricing ───────────────────────────────────────────────────────────
	RepriceProduct(ctx context.Context, cafeID, productID int, req RepriceRequest) (*core.ProductPricing, error)
	GetProductPricing(ctx context.Context, cafeID, productID int) (*core.ProductPricing, error)
	ListProductPricing(ctx context.Context, cafeID int) ([]core.ProductPricing, error)

	// ── Menu engineering ──────────────────────────────────────────────────
	ClassifyMenu(ctx context.Context, cafeID int, from, to string) (*core.MenuMatrix, error)

	// ── Vouchers ──────────────────────────────────────────────────────────
	CreateVoucher(ctx context.Context, cafeID int, req VoucherRequest) (*core.Voucher, error)
	ListVouchers(ctx context.Context, cafeID int) ([]core.Voucher, error)
	DeactivateVoucher(ctx context.Context, cafeID, voucherID int) error
	GenerateVoucherCodes(ctx context.Context, cafeID, voucherID, count int) (*VoucherCodesResult, error)
	ListVoucherCodes(ctx context.Context, cafeID, voucherID int) (*VoucherCodesResult, error)
	VoucherCodeQR(ctx context.Context, cafeID int, code string, size int) ([]byte, error)

	// ── Orders ────────────────────────────────────────────────────────────
	PlaceOrder(ctx context.Context, cafeID int, cashierID *int, req OrderRequest) (*core.Order, error)
	GetOrder(ctx context.Context, cafeID, orderID int) (*core.Order, error)
	ListOrders(ctx context.Context, cafeID int, from, to string) ([]core.Order, error)

	// ── Reviews ───────────────────────────────────────────────────────────
	CreateReview(ctx context.Context, cafeID int, req ReviewRequest) (*core.Review, error)
	ListReviews(ctx context.Context, cafeID int) (*ReviewListResult, error)

	// ── Reporting ─────────────────────────────────────────────────────────
	SalesSummary(ctx context.Context, cafeID int, from, to string) (*core.SalesSummary, error)
	BestSellers(ctx context.Context, cafeID int, from, to string, limit int) ([]core.BestSeller, error)
}
