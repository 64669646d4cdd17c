package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

func strPtr(s string) *string { return &s }

func TestPlaceOrder_PricesOptionsAndDecrementsStock(t *testing.T) {
	pool, ctx := setupTestDB(t)
	orders := core.NewOrderService(pool, core.NewVoucherService(pool))

	// Large latte with an extra shot: 20000 + 5000 + 4000 = 29000 per unit.
	order, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		CustomerName: "Budi",
		Items: []core.OrderItemInput{
			{ProductID: 1, Quantity: 2, VariationID: intPtr(1), AddonIDs: []int{1}},
		},
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if !order.Subtotal.Equal(decimal.NewFromInt(58000)) {
		t.Errorf("expected subtotal 58000, got %s", order.Subtotal)
	}
	if !order.Total.Equal(decimal.NewFromInt(58000)) {
		t.Errorf("expected total 58000, got %s", order.Total)
	}
	if len(order.Items) != 1 || !order.Items[0].UnitPrice.Equal(decimal.NewFromInt(29000)) {
		t.Errorf("expected unit price 29000, got %+v", order.Items)
	}
	if order.OrderType != core.OrderTypeCounter {
		t.Errorf("expected default order type counter, got %q", order.OrderType)
	}

	var stock int
	if err := pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = 1").Scan(&stock); err != nil {
		t.Fatalf("fetch stock: %v", err)
	}
	if stock != 8 {
		t.Errorf("expected stock 8 after ordering 2, got %d", stock)
	}

	var paid decimal.Decimal
	if err := pool.QueryRow(ctx,
		"SELECT amount FROM payments WHERE order_id = $1", order.ID,
	).Scan(&paid); err != nil {
		t.Fatalf("fetch payment: %v", err)
	}
	if !paid.Equal(order.Total) {
		t.Errorf("expected payment %s, got %s", order.Total, paid)
	}
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	pool, ctx := setupTestDB(t)
	orders := core.NewOrderService(pool, core.NewVoucherService(pool))

	_, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		Items: []core.OrderItemInput{
			{ProductID: 2, Quantity: 3},
			{ProductID: 1, Quantity: 99},
		},
	})
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The croissant decrement from the first line must roll back too.
	var stock int
	if err := pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = 2").Scan(&stock); err != nil {
		t.Fatalf("fetch stock: %v", err)
	}
	if stock != 5 {
		t.Errorf("expected stock 5 after rollback, got %d", stock)
	}
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no orders persisted, got %d", count)
	}
}

func TestPlaceOrder_VoucherCodeIsSingleUse(t *testing.T) {
	pool, ctx := setupTestDB(t)
	vouchers := core.NewVoucherService(pool)
	orders := core.NewOrderService(pool, vouchers)

	v, err := vouchers.CreateVoucher(ctx, 1, "Grand Opening", core.DiscountFixed,
		decimal.NewFromInt(5000),
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("CreateVoucher failed: %v", err)
	}
	codes, err := vouchers.GenerateCodes(ctx, 1, v.ID, 1)
	if err != nil {
		t.Fatalf("GenerateCodes failed: %v", err)
	}
	code := codes[0].Code

	order, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		VoucherCode: strPtr(code),
		Items:       []core.OrderItemInput{{ProductID: 2, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder with voucher failed: %v", err)
	}
	if !order.Discount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected discount 5000, got %s", order.Discount)
	}
	if !order.Total.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected total 10000, got %s", order.Total)
	}

	// Same code again: rejected, and the order must not go through.
	_, err = orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		VoucherCode: strPtr(code),
		Items:       []core.OrderItemInput{{ProductID: 2, Quantity: 1}},
	})
	if !errors.Is(err, core.ErrVoucherUsed) {
		t.Fatalf("expected ErrVoucherUsed on reuse, got %v", err)
	}

	var stock int
	if err := pool.QueryRow(ctx, "SELECT stock FROM products WHERE id = 2").Scan(&stock); err != nil {
		t.Fatalf("fetch stock: %v", err)
	}
	if stock != 4 {
		t.Errorf("expected stock 4 (only the first order committed), got %d", stock)
	}
}

func TestPlaceOrder_PercentVoucherAndTenantScope(t *testing.T) {
	pool, ctx := setupTestDB(t)
	vouchers := core.NewVoucherService(pool)
	orders := core.NewOrderService(pool, vouchers)

	v, err := vouchers.CreateVoucher(ctx, 1, "Weekday 10%", core.DiscountPercent,
		decimal.NewFromInt(10),
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("CreateVoucher failed: %v", err)
	}
	codes, err := vouchers.GenerateCodes(ctx, 1, v.ID, 1)
	if err != nil {
		t.Fatalf("GenerateCodes failed: %v", err)
	}

	// A different cafe cannot redeem this cafe's code.
	if _, err := pool.Exec(ctx, "INSERT INTO cafes (name) VALUES ('Other Cafe')"); err != nil {
		t.Fatalf("insert second cafe: %v", err)
	}
	var otherCafeID int
	if err := pool.QueryRow(ctx, "SELECT id FROM cafes WHERE name = 'Other Cafe'").Scan(&otherCafeID); err != nil {
		t.Fatalf("fetch second cafe: %v", err)
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)
	_, err = vouchers.RedeemInTx(ctx, tx, otherCafeID, codes[0].Code, decimal.NewFromInt(10000))
	if !errors.Is(err, core.ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound across tenants, got %v", err)
	}
	_ = tx.Rollback(ctx)

	order, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		VoucherCode: strPtr(codes[0].Code),
		Items:       []core.OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if !order.Discount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected 10%% discount 2000, got %s", order.Discount)
	}
	if !order.Total.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("expected total 18000, got %s", order.Total)
	}
}
