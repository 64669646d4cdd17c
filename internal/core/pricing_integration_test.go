package core_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

// The nested recipe built here:
//
//	latte = 0.2 liter milk (15000/liter) + 1 portion syrup
//	syrup = 0.05 kg beans (120000/kg)
//
// Ingredient cost: 0.2*15000 + 0.05*120000 = 3000 + 6000 = 9000.
func TestPricing_RecalculateFromNestedRecipe(t *testing.T) {
	pool, ctx := setupTestDB(t)
	recipes := core.NewRecipeService(pool)
	costing := core.NewCostingService(pool)
	pricing := core.NewPricingService(pool, costing)

	syrup, err := recipes.CreateSubRecipe(ctx, 1, "Syrup", "portion")
	if err != nil {
		t.Fatalf("CreateSubRecipe failed: %v", err)
	}
	_, err = recipes.ReplaceLines(ctx, 1, core.OwnerSubRecipe, syrup.ID, []core.RecipeLineInput{
		{MaterialID: intPtr(2), Quantity: decimal.NewFromFloat(0.05)},
	})
	if err != nil {
		t.Fatalf("ReplaceLines (syrup) failed: %v", err)
	}
	_, err = recipes.ReplaceLines(ctx, 1, core.OwnerProduct, 1, []core.RecipeLineInput{
		{MaterialID: intPtr(1), Quantity: decimal.NewFromFloat(0.2)},
		{SubRecipeID: &syrup.ID, Quantity: decimal.NewFromInt(1)},
	})
	if err != nil {
		t.Fatalf("ReplaceLines (latte) failed: %v", err)
	}

	cost, err := costing.ProductIngredientCost(ctx, 1, 1)
	if err != nil {
		t.Fatalf("ProductIngredientCost failed: %v", err)
	}
	if !cost.Equal(decimal.NewFromInt(9000)) {
		t.Fatalf("expected ingredient cost 9000, got %s", cost)
	}

	p, err := pricing.Recalculate(ctx, 1, 1, decimal.NewFromInt(40), nil)
	if err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}

	// 9000 / (1 - 0.40) = 15000; psychological: 15000 -> 14900.
	if !p.SuggestedPrice.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("expected suggested price 15000, got %s", p.SuggestedPrice)
	}
	if !p.PsychologicalPrice.Equal(decimal.NewFromInt(14900)) {
		t.Errorf("expected psychological price 14900, got %s", p.PsychologicalPrice)
	}
	if !p.MinPrice.Equal(decimal.NewFromInt(10800)) {
		t.Errorf("expected min price 10800, got %s", p.MinPrice)
	}
	if !p.MaxPrice.Equal(decimal.NewFromInt(22500)) {
		t.Errorf("expected max price 22500, got %s", p.MaxPrice)
	}

	// Upsert: a second recalculation replaces the row instead of failing.
	p2, err := pricing.Recalculate(ctx, 1, 1, decimal.NewFromInt(50), nil)
	if err != nil {
		t.Fatalf("second Recalculate failed: %v", err)
	}
	if !p2.SuggestedPrice.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("expected suggested price 18000 at 50%% margin, got %s", p2.SuggestedPrice)
	}
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM product_pricing WHERE product_id = 1").Scan(&count); err != nil {
		t.Fatalf("count pricing rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one pricing row after upsert, got %d", count)
	}
}

func TestRecipes_CyclicEditRejected(t *testing.T) {
	pool, ctx := setupTestDB(t)
	recipes := core.NewRecipeService(pool)

	a, err := recipes.CreateSubRecipe(ctx, 1, "Base A", "portion")
	if err != nil {
		t.Fatalf("CreateSubRecipe failed: %v", err)
	}
	b, err := recipes.CreateSubRecipe(ctx, 1, "Base B", "portion")
	if err != nil {
		t.Fatalf("CreateSubRecipe failed: %v", err)
	}

	if _, err := recipes.ReplaceLines(ctx, 1, core.OwnerSubRecipe, a.ID, []core.RecipeLineInput{
		{SubRecipeID: &b.ID, Quantity: decimal.NewFromInt(1)},
	}); err != nil {
		t.Fatalf("ReplaceLines (a -> b) failed: %v", err)
	}

	// Closing the loop b -> a must be refused before anything is written.
	_, err = recipes.ReplaceLines(ctx, 1, core.OwnerSubRecipe, b.ID, []core.RecipeLineInput{
		{SubRecipeID: &a.ID, Quantity: decimal.NewFromInt(1)},
	})
	if !errors.Is(err, core.ErrCircularRecipe) {
		t.Fatalf("expected ErrCircularRecipe, got %v", err)
	}

	lines, err := recipes.GetLines(ctx, 1, core.OwnerSubRecipe, b.ID)
	if err != nil {
		t.Fatalf("GetLines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines persisted for rejected edit, got %d", len(lines))
	}
}

func TestRecipes_DeleteReferencedSubRecipeRefused(t *testing.T) {
	pool, ctx := setupTestDB(t)
	recipes := core.NewRecipeService(pool)

	syrup, err := recipes.CreateSubRecipe(ctx, 1, "Syrup", "portion")
	if err != nil {
		t.Fatalf("CreateSubRecipe failed: %v", err)
	}
	if _, err := recipes.ReplaceLines(ctx, 1, core.OwnerProduct, 1, []core.RecipeLineInput{
		{SubRecipeID: &syrup.ID, Quantity: decimal.NewFromInt(1)},
	}); err != nil {
		t.Fatalf("ReplaceLines failed: %v", err)
	}

	if err := recipes.DeleteSubRecipe(ctx, 1, syrup.ID); err == nil {
		t.Fatal("expected delete of referenced sub-recipe to fail")
	}

	// Detach it, then deletion goes through.
	if _, err := recipes.ReplaceLines(ctx, 1, core.OwnerProduct, 1, nil); err != nil {
		t.Fatalf("ReplaceLines (clear) failed: %v", err)
	}
	if err := recipes.DeleteSubRecipe(ctx, 1, syrup.ID); err != nil {
		t.Fatalf("DeleteSubRecipe after detach failed: %v", err)
	}
}
