package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

type appService struct {
	pool      *pgxpool.Pool
	users     core.UserService
	catalog   core.CatalogService
	inventory core.InventoryService
	recipes   core.RecipeService
	pricing   core.PricingService
	menuEng   core.MenuEngineeringService
	vouchers  core.VoucherService
	orders    core.OrderService
	reviews   core.ReviewService
	reporting core.ReportingService
}

// NewAppService constructs the appService satisfying ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	users core.UserService,
	catalog core.CatalogService,
	inventory core.InventoryService,
	recipes core.RecipeService,
	pricing core.PricingService,
	menuEng core.MenuEngineeringService,
	vouchers core.VoucherService,
	orders core.OrderService,
	reviews core.ReviewService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		pool:      pool,
		users:     users,
		catalog:   catalog,
		inventory: inventory,
		recipes:   recipes,
		pricing:   pricing,
		menuEng:   menuEng,
		vouchers:  vouchers,
		orders:    orders,
		reviews:   reviews,
		reporting: reporting,
	}
}

// ── Auth / accounts ──────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: u.ID, CafeID: u.CafeID, Username: u.Username, Role: u.Role}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *appService) CreateCashier(ctx context.Context, cafeID int, req CashierRequest) (*core.User, error) {
	return s.users.CreateCashier(ctx, cafeID, req.Username, req.Email, req.Password)
}

func (s *appService) ListCashiers(ctx context.Context, cafeID int) ([]core.User, error) {
	return s.users.GetCashiers(ctx, cafeID)
}

func (s *appService) DeactivateCashier(ctx context.Context, cafeID, userID int) error {
	return s.users.DeactivateCashier(ctx, cafeID, userID)
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) CreateCategory(ctx context.Context, cafeID int, name string) (*core.Category, error) {
	return s.catalog.CreateCategory(ctx, cafeID, name)
}

func (s *appService) ListCategories(ctx context.Context, cafeID int) ([]core.Category, error) {
	return s.catalog.GetCategories(ctx, cafeID)
}

func (s *appService) DeleteCategory(ctx context.Context, cafeID, categoryID int) error {
	return s.catalog.DeleteCategory(ctx, cafeID, categoryID)
}

func (s *appService) CreateProduct(ctx context.Context, cafeID int, req ProductRequest) (*core.Product, error) {
	return s.catalog.CreateProduct(ctx, cafeID, req.CategoryID, req.Name, req.Description, req.Price, req.Stock)
}

func (s *appService) UpdateProduct(ctx context.Context, cafeID, productID int, req ProductRequest) (*core.Product, error) {
	return s.catalog.UpdateProduct(ctx, cafeID, productID, req.CategoryID, req.Name, req.Description, req.Price, req.Stock)
}

func (s *appService) DeactivateProduct(ctx context.Context, cafeID, productID int) error {
	return s.catalog.DeactivateProduct(ctx, cafeID, productID)
}

func (s *appService) GetProduct(ctx context.Context, cafeID, productID int) (*core.Product, error) {
	return s.catalog.GetProduct(ctx, cafeID, productID)
}

func (s *appService) ListProducts(ctx context.Context, cafeID int) ([]core.Product, error) {
	return s.catalog.GetProducts(ctx, cafeID)
}

func (s *appService) AddVariation(ctx context.Context, cafeID, productID int, name, priceDelta string) (*core.Variation, error) {
	delta, err := decimal.NewFromString(priceDelta)
	if err != nil {
		return nil, fmt.Errorf("invalid price delta %q: %w", priceDelta, err)
	}
	return s.catalog.AddVariation(ctx, cafeID, productID, name, delta)
}

func (s *appService) AddAddon(ctx context.Context, cafeID, productID int, name, price string) (*core.Addon, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid addon price %q: %w", price, err)
	}
	return s.catalog.AddAddon(ctx, cafeID, productID, name, p)
}

func (s *appService) RemoveVariation(ctx context.Context, cafeID, variationID int) error {
	return s.catalog.RemoveVariation(ctx, cafeID, variationID)
}

func (s *appService) RemoveAddon(ctx context.Context, cafeID, addonID int) error {
	return s.catalog.RemoveAddon(ctx, cafeID, addonID)
}

func (s *appService) PublicMenu(ctx context.Context, cafeID int) (*MenuResult, error) {
	cafe := &core.Cafe{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, address, phone, created_at FROM cafes WHERE id = $1", cafeID,
	).Scan(&cafe.ID, &cafe.Name, &cafe.Address, &cafe.Phone, &cafe.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("cafe %d not found", cafeID)
		}
		return nil, fmt.Errorf("failed to fetch cafe: %w", err)
	}

	products, err := s.catalog.GetProducts(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	reviews, avg, err := s.reviews.GetReviews(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	return &MenuResult{
		Cafe:          cafe,
		Products:      products,
		AverageRating: avg,
		ReviewCount:   len(reviews),
	}, nil
}

// ── Inventory ────────────────────────────────────────────────────────────────

func (s *appService) CreateMaterial(ctx context.Context, cafeID int, req MaterialRequest) (*core.RawMaterial, error) {
	return s.inventory.CreateMaterial(ctx, cafeID, req.Name, req.Category, req.Unit, req.Cost)
}

func (s *appService) ListMaterials(ctx context.Context, cafeID int) ([]core.RawMaterial, error) {
	return s.inventory.GetMaterials(ctx, cafeID)
}

func (s *appService) DeactivateMaterial(ctx context.Context, cafeID, materialID int) error {
	return s.inventory.DeactivateMaterial(ctx, cafeID, materialID)
}

func (s *appService) ReceiveBatch(ctx context.Context, cafeID int, req BatchRequest) (*core.MaterialBatch, error) {
	var expiresOn *time.Time
	if req.ExpiresOn != "" {
		d, err := time.Parse("2006-01-02", req.ExpiresOn)
		if err != nil {
			return nil, fmt.Errorf("invalid expiry date %q: %w", req.ExpiresOn, err)
		}
		expiresOn = &d
	}
	return s.inventory.ReceiveBatch(ctx, cafeID, req.MaterialID, req.Quantity, req.UnitCost, expiresOn)
}

func (s *appService) GetStock(ctx context.Context, cafeID int, expiryWindow time.Duration) (*StockResult, error) {
	levels, err := s.inventory.StockLevels(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	expiring, err := s.inventory.ExpiringBatches(ctx, cafeID, time.Now().Add(expiryWindow))
	if err != nil {
		return nil, err
	}
	return &StockResult{Levels: levels, Expiring: expiring}, nil
}

// ── Recipes & costing ────────────────────────────────────────────────────────

func (s *appService) CreateSubRecipe(ctx context.Context, cafeID int, name, yieldUnit string) (*core.SubRecipe, error) {
	return s.recipes.CreateSubRecipe(ctx, cafeID, name, yieldUnit)
}

func (s *appService) ListSubRecipes(ctx context.Context, cafeID int) ([]core.SubRecipe, error) {
	return s.recipes.GetSubRecipes(ctx, cafeID)
}

func (s *appService) GetSubRecipe(ctx context.Context, cafeID, subRecipeID int) (*core.SubRecipe, error) {
	return s.recipes.GetSubRecipe(ctx, cafeID, subRecipeID)
}

func (s *appService) DeleteSubRecipe(ctx context.Context, cafeID, subRecipeID int) error {
	return s.recipes.DeleteSubRecipe(ctx, cafeID, subRecipeID)
}

func (s *appService) ReplaceRecipeLines(ctx context.Context, cafeID int, req RecipeLinesRequest) ([]core.RecipeLine, error) {
	lines := make([]core.RecipeLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.RecipeLineInput{
			MaterialID:  l.MaterialID,
			SubRecipeID: l.SubRecipeID,
			Quantity:    l.Quantity,
		}
	}
	return s.recipes.ReplaceLines(ctx, cafeID, req.OwnerType, req.OwnerID, lines)
}

func (s *appService) GetRecipeLines(ctx context.Context, cafeID int, ownerType string, ownerID int) ([]core.RecipeLine, error) {
	return s.recipes.GetLines(ctx, cafeID, ownerType, ownerID)
}

// ── Pricing ──────────────────────────────────────────────────────────────────

func (s *appService) RepriceProduct(ctx context.Context, cafeID, productID int, req RepriceRequest) (*core.ProductPricing, error) {
	return s.pricing.Recalculate(ctx, cafeID, productID, req.DesiredMargin, req.CompetitorPrice)
}

func (s *appService) GetProductPricing(ctx context.Context, cafeID, productID int) (*core.ProductPricing, error) {
	return s.pricing.GetPricing(ctx, cafeID, productID)
}

func (s *appService) ListProductPricing(ctx context.Context, cafeID int) ([]core.ProductPricing, error) {
	return s.pricing.ListPricing(ctx, cafeID)
}

// ── Menu engineering ─────────────────────────────────────────────────────────

func (s *appService) ClassifyMenu(ctx context.Context, cafeID int, from, to string) (*core.MenuMatrix, error) {
	if _, err := time.Parse("2006-01-02", from); err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	if _, err := time.Parse("2006-01-02", to); err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	return s.menuEng.ClassifyMenu(ctx, cafeID, from, to)
}

// ── Vouchers ─────────────────────────────────────────────────────────────────

func (s *appService) CreateVoucher(ctx context.Context, cafeID int, req VoucherRequest) (*core.Voucher, error) {
	from, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid valid_from date %q: %w", req.ValidFrom, err)
	}
	until, err := time.Parse("2006-01-02", req.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("invalid valid_until date %q: %w", req.ValidUntil, err)
	}
	return s.vouchers.CreateVoucher(ctx, cafeID, req.Name, req.DiscountType, req.DiscountValue, from, until)
}

func (s *appService) ListVouchers(ctx context.Context, cafeID int) ([]core.Voucher, error) {
	return s.vouchers.GetVouchers(ctx, cafeID)
}

func (s *appService) DeactivateVoucher(ctx context.Context, cafeID, voucherID int) error {
	return s.vouchers.DeactivateVoucher(ctx, cafeID, voucherID)
}

func (s *appService) GenerateVoucherCodes(ctx context.Context, cafeID, voucherID, count int) (*VoucherCodesResult, error) {
	codes, err := s.vouchers.GenerateCodes(ctx, cafeID, voucherID, count)
	if err != nil {
		return nil, err
	}
	return &VoucherCodesResult{VoucherID: voucherID, Codes: codes}, nil
}

func (s *appService) ListVoucherCodes(ctx context.Context, cafeID, voucherID int) (*VoucherCodesResult, error) {
	codes, err := s.vouchers.GetCodes(ctx, cafeID, voucherID)
	if err != nil {
		return nil, err
	}
	return &VoucherCodesResult{VoucherID: voucherID, Codes: codes}, nil
}

func (s *appService) VoucherCodeQR(ctx context.Context, cafeID int, code string, size int) ([]byte, error) {
	return s.vouchers.CodeQR(ctx, cafeID, code, size)
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) PlaceOrder(ctx context.Context, cafeID int, cashierID *int, req OrderRequest) (*core.Order, error) {
	return s.orders.PlaceOrder(ctx, cafeID, req.toCore(cashierID))
}

func (s *appService) GetOrder(ctx context.Context, cafeID, orderID int) (*core.Order, error) {
	return s.orders.GetOrder(ctx, cafeID, orderID)
}

func (s *appService) ListOrders(ctx context.Context, cafeID int, from, to string) ([]core.Order, error) {
	return s.orders.ListOrders(ctx, cafeID, from, to)
}

// ── Reviews ──────────────────────────────────────────────────────────────────

func (s *appService) CreateReview(ctx context.Context, cafeID int, req ReviewRequest) (*core.Review, error) {
	return s.reviews.CreateReview(ctx, cafeID, req.CustomerName, req.Rating, req.Comment)
}

func (s *appService) ListReviews(ctx context.Context, cafeID int) (*ReviewListResult, error) {
	reviews, avg, err := s.reviews.GetReviews(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	return &ReviewListResult{Reviews: reviews, AverageRating: avg}, nil
}

// ── Reporting ────────────────────────────────────────────────────────────────

func (s *appService) SalesSummary(ctx context.Context, cafeID int, from, to string) (*core.SalesSummary, error) {
	return s.reporting.SalesSummary(ctx, cafeID, from, to)
}

func (s *appService) BestSellers(ctx context.Context, cafeID int, from, to string, limit int) ([]core.BestSeller, error) {
	return s.reporting.BestSellers(ctx, cafeID, from, to, limit)
}
