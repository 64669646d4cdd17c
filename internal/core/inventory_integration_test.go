package core_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

func materialStock(t *testing.T, levels []core.MaterialStock, materialID int) decimal.Decimal {
	t.Helper()
	for _, ms := range levels {
		if ms.Material.ID == materialID {
			return ms.Stock
		}
	}
	t.Fatalf("material %d not found in stock levels", materialID)
	return decimal.Zero
}

func TestInventory_ReceiveBatchUpdatesCurrentCost(t *testing.T) {
	pool, ctx := setupTestDB(t)
	inv := core.NewInventoryService(pool)

	_, err := inv.ReceiveBatch(ctx, 1, 1, decimal.NewFromInt(10), decimal.NewFromInt(16500), nil)
	if err != nil {
		t.Fatalf("ReceiveBatch failed: %v", err)
	}

	materials, err := inv.GetMaterials(ctx, 1)
	if err != nil {
		t.Fatalf("GetMaterials failed: %v", err)
	}
	for _, m := range materials {
		if m.ID == 1 && !m.CurrentCost.Equal(decimal.NewFromInt(16500)) {
			t.Errorf("expected current_cost 16500 after receipt, got %s", m.CurrentCost)
		}
	}

	levels, err := inv.StockLevels(ctx, 1)
	if err != nil {
		t.Fatalf("StockLevels failed: %v", err)
	}
	if got := materialStock(t, levels, 1); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected stock 10, got %s", got)
	}
}

func TestInventory_ConsumeStockDrainsOldestExpiryFirst(t *testing.T) {
	pool, ctx := setupTestDB(t)
	inv := core.NewInventoryService(pool)

	soon := time.Now().AddDate(0, 0, 2)
	later := time.Now().AddDate(0, 0, 30)

	// Received in reverse expiry order on purpose.
	lateBatch, err := inv.ReceiveBatch(ctx, 1, 1, decimal.NewFromInt(10), decimal.NewFromInt(15000), &later)
	if err != nil {
		t.Fatalf("ReceiveBatch (late) failed: %v", err)
	}
	soonBatch, err := inv.ReceiveBatch(ctx, 1, 1, decimal.NewFromInt(4), decimal.NewFromInt(15000), &soon)
	if err != nil {
		t.Fatalf("ReceiveBatch (soon) failed: %v", err)
	}

	// 6 units: the soon-expiring lot of 4 closes, the later lot is drawn
	// down by 2.
	if err := inv.ConsumeStock(ctx, 1, 1, decimal.NewFromInt(6)); err != nil {
		t.Fatalf("ConsumeStock failed: %v", err)
	}

	var soonUsed bool
	var lateQty decimal.Decimal
	if err := pool.QueryRow(ctx,
		"SELECT is_used FROM material_batches WHERE id = $1", soonBatch.ID,
	).Scan(&soonUsed); err != nil {
		t.Fatalf("fetch soon batch: %v", err)
	}
	if err := pool.QueryRow(ctx,
		"SELECT quantity FROM material_batches WHERE id = $1", lateBatch.ID,
	).Scan(&lateQty); err != nil {
		t.Fatalf("fetch late batch: %v", err)
	}

	if !soonUsed {
		t.Error("expected soon-expiring batch to be fully consumed")
	}
	if !lateQty.Equal(decimal.NewFromInt(8)) {
		t.Errorf("expected late batch drawn down to 8, got %s", lateQty)
	}
}

func TestInventory_ConsumeStockInsufficient(t *testing.T) {
	pool, ctx := setupTestDB(t)
	inv := core.NewInventoryService(pool)

	if _, err := inv.ReceiveBatch(ctx, 1, 1, decimal.NewFromInt(3), decimal.NewFromInt(15000), nil); err != nil {
		t.Fatalf("ReceiveBatch failed: %v", err)
	}

	err := inv.ConsumeStock(ctx, 1, 1, decimal.NewFromInt(5))
	if err == nil {
		t.Fatal("expected error when consuming more than available")
	}
	if !strings.Contains(err.Error(), "insufficient stock") {
		t.Errorf("unexpected error: %v", err)
	}

	// The transaction must roll back: the lot stays untouched.
	levels, err := inv.StockLevels(ctx, 1)
	if err != nil {
		t.Fatalf("StockLevels failed: %v", err)
	}
	if got := materialStock(t, levels, 1); !got.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected stock 3 after failed consume, got %s", got)
	}
}

func TestInventory_ExpiringBatchesWindow(t *testing.T) {
	pool, ctx := setupTestDB(t)
	inv := core.NewInventoryService(pool)

	inWindow := time.Now().AddDate(0, 0, 3)
	outWindow := time.Now().AddDate(0, 0, 60)

	if _, err := inv.ReceiveBatch(ctx, 1, 1, decimal.NewFromInt(5), decimal.NewFromInt(15000), &inWindow); err != nil {
		t.Fatalf("ReceiveBatch failed: %v", err)
	}
	if _, err := inv.ReceiveBatch(ctx, 1, 2, decimal.NewFromInt(2), decimal.NewFromInt(120000), &outWindow); err != nil {
		t.Fatalf("ReceiveBatch failed: %v", err)
	}
	// No expiry date means never listed as expiring.
	if _, err := inv.ReceiveBatch(ctx, 1, 2, decimal.NewFromInt(1), decimal.NewFromInt(120000), nil); err != nil {
		t.Fatalf("ReceiveBatch failed: %v", err)
	}

	batches, err := inv.ExpiringBatches(ctx, 1, time.Now().AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("ExpiringBatches failed: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 expiring batch, got %d", len(batches))
	}
	if batches[0].MaterialID != 1 {
		t.Errorf("expected material 1 expiring, got %d", batches[0].MaterialID)
	}
}
