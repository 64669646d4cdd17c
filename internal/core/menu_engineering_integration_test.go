package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

func performanceByName(t *testing.T, products []core.ProductPerformance, name string) core.ProductPerformance {
	t.Helper()
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not found in matrix", name)
	return core.ProductPerformance{}
}

// Seeds sales for the latte (with a recipe cost of 3000) and the croissant
// (no recipe, cost 0), leaves a third product unsold, and adds an old order
// outside the window. The unsold product must still appear in the matrix
// and drag the averages down as zeros; the old order must not count.
func TestClassifyMenu_AggregatesOverWindow(t *testing.T) {
	pool, ctx := setupTestDB(t)
	recipes := core.NewRecipeService(pool)
	menu := core.NewMenuEngineeringService(pool, core.NewCostingService(pool))
	orders := core.NewOrderService(pool, core.NewVoucherService(pool))

	if _, err := pool.Exec(ctx,
		"INSERT INTO products (cafe_id, category_id, name, price, stock) VALUES (1, 1, 'Tea', 10000, 20)",
	); err != nil {
		t.Fatalf("insert unsold product: %v", err)
	}

	// Latte ingredient cost: 0.2 liter milk at 15000/liter = 3000.
	if _, err := recipes.ReplaceLines(ctx, 1, core.OwnerProduct, 1, []core.RecipeLineInput{
		{MaterialID: intPtr(1), Quantity: decimal.NewFromFloat(0.2)},
	}); err != nil {
		t.Fatalf("ReplaceLines failed: %v", err)
	}

	if _, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		Items: []core.OrderItemInput{{ProductID: 1, Quantity: 5}},
	}); err != nil {
		t.Fatalf("PlaceOrder (latte) failed: %v", err)
	}
	if _, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		Items: []core.OrderItemInput{{ProductID: 2, Quantity: 1}},
	}); err != nil {
		t.Fatalf("PlaceOrder (croissant) failed: %v", err)
	}

	// A big croissant order 40 days ago: outside the window, must not
	// leak into the aggregates through the product join.
	var oldOrderID int
	if err := pool.QueryRow(ctx, `
		INSERT INTO orders (cafe_id, order_number, order_type, status, subtotal, discount, total, placed_at)
		VALUES (1, 'ORD-OLD-1', 'counter', 'PAID', 150000, 0, 150000, NOW() - INTERVAL '40 days')
		RETURNING id`,
	).Scan(&oldOrderID); err != nil {
		t.Fatalf("insert old order: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, 2, 10, 15000, 150000)`, oldOrderID,
	); err != nil {
		t.Fatalf("insert old order item: %v", err)
	}

	from := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	to := time.Now().Format("2006-01-02")
	matrix, err := menu.ClassifyMenu(ctx, 1, from, to)
	if err != nil {
		t.Fatalf("ClassifyMenu failed: %v", err)
	}

	if len(matrix.Products) != 3 {
		t.Fatalf("expected 3 products in matrix, got %d", len(matrix.Products))
	}

	latte := performanceByName(t, matrix.Products, "Latte")
	if !latte.TotalSales.Equal(decimal.NewFromInt(5)) {
		t.Errorf("latte: expected 5 units sold, got %s", latte.TotalSales)
	}
	if !latte.TotalRevenue.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("latte: expected revenue 100000, got %s", latte.TotalRevenue)
	}
	if !latte.TotalCost.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("latte: expected cost 15000 (5 x 3000), got %s", latte.TotalCost)
	}
	if !latte.ContributionMargin.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("latte: expected margin 85000, got %s", latte.ContributionMargin)
	}
	if latte.Quadrant != core.QuadrantStar {
		t.Errorf("latte: expected STAR, got %s", latte.Quadrant)
	}

	croissant := performanceByName(t, matrix.Products, "Croissant")
	if !croissant.TotalSales.Equal(decimal.NewFromInt(1)) {
		t.Errorf("croissant: expected 1 unit sold (old order excluded), got %s", croissant.TotalSales)
	}
	if croissant.Quadrant != core.QuadrantDog {
		t.Errorf("croissant: expected DOG, got %s", croissant.Quadrant)
	}

	tea := performanceByName(t, matrix.Products, "Tea")
	if !tea.TotalSales.IsZero() || !tea.ContributionMargin.IsZero() {
		t.Errorf("tea: expected zero sales and margin, got %s / %s", tea.TotalSales, tea.ContributionMargin)
	}
	if tea.Quadrant != core.QuadrantDog {
		t.Errorf("tea: expected DOG, got %s", tea.Quadrant)
	}

	// Averages are means over all three products, the unsold one included:
	// popularity (5+1+0)/3 = 2, profitability (85000+15000+0)/3.
	if !matrix.AvgPopularity.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected avg popularity 2, got %s", matrix.AvgPopularity)
	}
	wantProfit := decimal.NewFromInt(100000).Div(decimal.NewFromInt(3))
	if !matrix.AvgProfitability.Equal(wantProfit) {
		t.Errorf("expected avg profitability %s, got %s", wantProfit, matrix.AvgProfitability)
	}
}
