package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the menu (e.g. "Coffee", "Pastry").
type Category struct {
	ID     int    `json:"id"`
	CafeID int    `json:"cafe_id"`
	Name   string `json:"name"`
}

// Product is a sellable menu item. Status is derived, never stored:
// "available" iff stock > 0.
type Product struct {
	ID          int             `json:"id"`
	CafeID      int             `json:"cafe_id"`
	CategoryID  *int            `json:"category_id,omitempty"`
	Category    string          `json:"category,omitempty"` // joined from categories
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      string          `json:"status"`
	IsActive    bool            `json:"is_active"`
	Variations  []Variation     `json:"variations,omitempty"`
	Addons      []Addon         `json:"addons,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Variation is a named size/style option with a price delta relative to
// the product's base price (e.g. "Large" +5000).
type Variation struct {
	ID         int             `json:"id"`
	ProductID  int             `json:"product_id"`
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price_delta"`
}

// Addon is an optional extra sold with a product (e.g. "Extra shot").
type Addon struct {
	ID        int             `json:"id"`
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

// availability derives the product status string from stock.
func availability(stock int) string {
	if stock > 0 {
		return "available"
	}
	return "sold_out"
}
