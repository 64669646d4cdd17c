package core_test

import (
	"testing"

	"cafe-pos/internal/core"

	"github.com/shopspring/decimal"
)

func perf(id int, name string, sales, margin int64) core.ProductPerformance {
	return core.ProductPerformance{
		ProductID:          id,
		Name:               name,
		TotalSales:         decimal.NewFromInt(sales),
		ContributionMargin: decimal.NewFromInt(margin),
	}
}

func TestClassifyPerformances_Quadrants(t *testing.T) {
	// avg popularity = (10+2+8+4)/4 = 6, avg profitability = (900+100+100+100)/4 = 300
	products := []core.ProductPerformance{
		perf(1, "Latte", 10, 900),    // above both → STAR
		perf(2, "Scone", 2, 100),     // below both → DOG
		perf(3, "Croissant", 8, 100), // popular only → PLOWHORSE
		perf(4, "Affogato", 4, 100),  // below both → DOG
	}

	_, _, classified := core.ClassifyPerformances(products)

	want := map[int]core.Quadrant{
		1: core.QuadrantStar,
		2: core.QuadrantDog,
		3: core.QuadrantPlowhorse,
		4: core.QuadrantDog,
	}
	for _, p := range classified {
		if p.Quadrant != want[p.ProductID] {
			t.Errorf("product %s: expected %s, got %s", p.Name, want[p.ProductID], p.Quadrant)
		}
	}
}

func TestClassifyPerformances_TieBreakIsInclusive(t *testing.T) {
	// P1 sales=10, P2 sales=2 → avg popularity 6; both margins 500 → avg
	// profitability 500. Values exactly at the average count as popular /
	// profitable, so P1 is a STAR and P2 a PUZZLE.
	products := []core.ProductPerformance{
		perf(1, "P1", 10, 500),
		perf(2, "P2", 2, 500),
	}

	avgPop, avgProfit, classified := core.ClassifyPerformances(products)

	if !avgPop.Equal(decimal.NewFromInt(6)) {
		t.Errorf("expected avg popularity 6, got %s", avgPop)
	}
	if !avgProfit.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected avg profitability 500, got %s", avgProfit)
	}
	if classified[0].Quadrant != core.QuadrantStar {
		t.Errorf("P1: expected STAR, got %s", classified[0].Quadrant)
	}
	if classified[1].Quadrant != core.QuadrantPuzzle {
		t.Errorf("P2: expected PUZZLE, got %s", classified[1].Quadrant)
	}
}

func TestClassifyPerformances_PuzzleQuadrant(t *testing.T) {
	products := []core.ProductPerformance{
		perf(1, "Slow premium", 1, 1000),
		perf(2, "Fast cheap", 9, 0),
	}
	_, _, classified := core.ClassifyPerformances(products)

	if classified[0].Quadrant != core.QuadrantPuzzle {
		t.Errorf("expected PUZZLE, got %s", classified[0].Quadrant)
	}
	if classified[1].Quadrant != core.QuadrantPlowhorse {
		t.Errorf("expected PLOWHORSE, got %s", classified[1].Quadrant)
	}
}

func TestClassifyPerformances_EmptySet(t *testing.T) {
	avgPop, avgProfit, classified := core.ClassifyPerformances(nil)
	if !avgPop.IsZero() || !avgProfit.IsZero() {
		t.Errorf("expected zero averages for empty set, got %s / %s", avgPop, avgProfit)
	}
	if len(classified) != 0 {
		t.Errorf("expected empty classification, got %d entries", len(classified))
	}
}

func TestClassifyPerformances_ZeroSalesProductDragsAverage(t *testing.T) {
	// The unsold product participates as zeros, pulling both averages
	// down; the selling product clears them and the unsold one is a DOG.
	products := []core.ProductPerformance{
		perf(1, "Seller", 10, 800),
		perf(2, "Shelf warmer", 0, 0),
	}
	avgPop, _, classified := core.ClassifyPerformances(products)

	if !avgPop.Equal(decimal.NewFromInt(5)) {
		t.Errorf("expected avg popularity 5, got %s", avgPop)
	}
	if classified[0].Quadrant != core.QuadrantStar {
		t.Errorf("Seller: expected STAR, got %s", classified[0].Quadrant)
	}
	if classified[1].Quadrant != core.QuadrantDog {
		t.Errorf("Shelf warmer: expected DOG, got %s", classified[1].Quadrant)
	}
}

func TestQuadrantRecommendations(t *testing.T) {
	tests := []struct {
		quadrant core.Quadrant
		want     string
	}{
		{core.QuadrantStar, "Keep and promote"},
		{core.QuadrantPlowhorse, "Increase price or reduce cost"},
		{core.QuadrantPuzzle, "Promote more"},
		{core.QuadrantDog, "Consider removing or redesigning"},
	}
	for _, tc := range tests {
		if got := tc.quadrant.Recommendation(); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.quadrant, tc.want, got)
		}
	}
}
