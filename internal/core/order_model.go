package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order types: counter sales rung by a cashier, online orders placed by
// customers browsing the public menu.
const (
	OrderTypeCounter = "counter"
	OrderTypeOnline  = "online"
)

// Order is a completed sale. Orders and their items are immutable once
// placed; reporting and menu engineering aggregate over them as history.
type Order struct {
	ID           int             `json:"id"`
	CafeID       int             `json:"cafe_id"`
	OrderNumber  string          `json:"order_number"`
	CustomerName string          `json:"customer_name"`
	OrderType    string          `json:"order_type"`
	Status       string          `json:"status"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
	VoucherCode  *string         `json:"voucher_code,omitempty"`
	CashierID    *int            `json:"cashier_id,omitempty"`
	Items        []OrderItem     `json:"items"`
	PlacedAt     time.Time       `json:"placed_at"`
}

// OrderItem is one line of an order with the unit price snapshotted at
// placement time (base price + variation delta + add-ons).
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"` // joined from products
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Notes       string          `json:"notes"`
}

// OrderItemInput is one requested line when placing an order.
type OrderItemInput struct {
	ProductID   int
	Quantity    int
	VariationID *int
	AddonIDs    []int
	Notes       string
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	CustomerName  string
	OrderType     string
	CashierID     *int
	VoucherCode   *string
	PaymentMethod string
	Items         []OrderItemInput
}
