package app

import (
	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

// ProductRequest carries the writable fields of a product.
type ProductRequest struct {
	CategoryID  *int            `json:"category_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// MaterialRequest carries the writable fields of a raw material.
type MaterialRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Unit     string          `json:"unit"`
	Cost     decimal.Decimal `json:"cost"`
}

// BatchRequest records the receipt of one stock lot.
type BatchRequest struct {
	MaterialID int             `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiresOn  string          `json:"expires_on"` // YYYY-MM-DD, empty for none
}

// RecipeLinesRequest replaces the bill of materials of a product or
// sub-recipe.
type RecipeLinesRequest struct {
	OwnerType string            `json:"owner_type"`
	OwnerID   int               `json:"owner_id"`
	Lines     []RecipeLineEntry `json:"lines"`
}

// RecipeLineEntry is one requested bill-of-materials line.
type RecipeLineEntry struct {
	MaterialID  *int            `json:"material_id"`
	SubRecipeID *int            `json:"sub_recipe_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// RepriceRequest asks for an explicit pricing recalculation.
type RepriceRequest struct {
	DesiredMargin   decimal.Decimal  `json:"desired_margin"`
	CompetitorPrice *decimal.Decimal `json:"competitor_price"`
}

// VoucherRequest carries the writable fields of a voucher campaign.
type VoucherRequest struct {
	Name          string          `json:"name"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     string          `json:"valid_from"`  // YYYY-MM-DD
	ValidUntil    string          `json:"valid_until"` // YYYY-MM-DD
}

// OrderRequest places an order.
type OrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	OrderType     string             `json:"order_type"`
	VoucherCode   *string            `json:"voucher_code"`
	PaymentMethod string             `json:"payment_method"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	ProductID   int    `json:"product_id"`
	Quantity    int    `json:"quantity"`
	VariationID *int   `json:"variation_id"`
	AddonIDs    []int  `json:"addon_ids"`
	Notes       string `json:"notes"`
}

// CashierRequest creates a cashier account.
type CashierRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ReviewRequest records customer feedback.
type ReviewRequest struct {
	CustomerName string `json:"customer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

func (r OrderRequest) toCore(cashierID *int) core.PlaceOrderInput {
	items := make([]core.OrderItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = core.OrderItemInput{
			ProductID:   it.ProductID,
			Quantity:    it.Quantity,
			VariationID: it.VariationID,
			AddonIDs:    it.AddonIDs,
			Notes:       it.Notes,
		}
	}
	return core.PlaceOrderInput{
		CustomerName:  r.CustomerName,
		OrderType:     r.OrderType,
		CashierID:     cashierID,
		VoucherCode:   r.VoucherCode,
		PaymentMethod: r.PaymentMethod,
		Items:         items,
	}
}
