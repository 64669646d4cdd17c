package core_test

import (
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

func TestReporting_SalesSummaryAggregates(t *testing.T) {
	pool, ctx := setupTestDB(t)
	reporting := core.NewReportingService(pool)
	orders := core.NewOrderService(pool, core.NewVoucherService(pool))

	if _, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		Items: []core.OrderItemInput{{ProductID: 1, Quantity: 2}},
	}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if _, err := orders.PlaceOrder(ctx, 1, core.PlaceOrderInput{
		Items: []core.OrderItemInput{{ProductID: 2, Quantity: 3}},
	}); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	today := time.Now().Format("2006-01-02")
	summary, err := reporting.SalesSummary(ctx, 1, today, today)
	if err != nil {
		t.Fatalf("SalesSummary failed: %v", err)
	}
	if summary.OrderCount != 2 {
		t.Errorf("expected 2 orders, got %d", summary.OrderCount)
	}
	if summary.ItemsSold != 5 {
		t.Errorf("expected 5 items sold, got %d", summary.ItemsSold)
	}
	// 2 x 20000 + 3 x 15000 = 85000, no discounts.
	if !summary.GrossRevenue.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("expected gross revenue 85000, got %s", summary.GrossRevenue)
	}
	if !summary.NetRevenue.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("expected net revenue 85000, got %s", summary.NetRevenue)
	}
	if len(summary.Days) != 1 || summary.Days[0].OrderCount != 2 {
		t.Errorf("expected one daily bucket with 2 orders, got %+v", summary.Days)
	}

	sellers, err := reporting.BestSellers(ctx, 1, today, today, 10)
	if err != nil {
		t.Fatalf("BestSellers failed: %v", err)
	}
	if len(sellers) != 2 {
		t.Fatalf("expected 2 best sellers, got %d", len(sellers))
	}
	if sellers[0].Name != "Croissant" || sellers[0].UnitsSold != 3 {
		t.Errorf("expected Croissant (3 units) ranked first, got %+v", sellers[0])
	}
}

// A freshly provisioned database with no schema must render empty reports,
// not errors. The pool here points at an empty search_path schema so every
// reporting query hits an undefined relation.
func TestReporting_MissingTablesDegradeToEmpty(t *testing.T) {
	pool, ctx := setupTestDB(t)

	if _, err := pool.Exec(ctx,
		"DROP SCHEMA IF EXISTS unmigrated CASCADE; CREATE SCHEMA unmigrated",
	); err != nil {
		t.Fatalf("Failed to create empty schema: %v", err)
	}

	cfg, err := pgxpool.ParseConfig(os.Getenv("TEST_DATABASE_URL"))
	if err != nil {
		t.Fatalf("Failed to parse TEST_DATABASE_URL: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = "unmigrated"
	bare, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect with empty search_path: %v", err)
	}
	t.Cleanup(bare.Close)

	reporting := core.NewReportingService(bare)

	summary, err := reporting.SalesSummary(ctx, 1, "2026-01-01", "2026-12-31")
	if err != nil {
		t.Fatalf("expected missing tables to degrade to empty summary, got %v", err)
	}
	if summary.OrderCount != 0 || !summary.GrossRevenue.IsZero() || len(summary.Days) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}

	sellers, err := reporting.BestSellers(ctx, 1, "2026-01-01", "2026-12-31", 10)
	if err != nil {
		t.Fatalf("expected missing tables to degrade to no best sellers, got %v", err)
	}
	if len(sellers) != 0 {
		t.Errorf("expected no best sellers, got %+v", sellers)
	}
}
