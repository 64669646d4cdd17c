package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// RecipeGraph is an in-memory snapshot of one cafe's bill-of-materials
// data: material costs plus every recipe line, keyed by owner. Cost
// resolution walks this snapshot instead of issuing per-node queries, so
// dashboard aggregations that price the whole catalog load it once.
//
// Resolution policy (deliberate, not accidental):
//   - a component with no recipe lines costs 0;
//   - a line whose referenced material or sub-recipe no longer exists
//     contributes 0 rather than failing the whole calculation, keeping
//     the back office usable over partially configured recipes;
//   - a reference cycle yields ErrCircularRecipe instead of recursing
//     forever. The save path already rejects cycles, this guard covers
//     data that arrived by other routes.
type RecipeGraph struct {
	materialCost map[int]decimal.Decimal
	productLines map[int][]RecipeLine
	subLines     map[int][]RecipeLine
	memo         map[int]decimal.Decimal // resolved sub-recipe costs
}

// NewRecipeGraph returns an empty graph. Production code loads graphs via
// LoadRecipeGraph; building one directly is for tests and tooling.
func NewRecipeGraph() *RecipeGraph {
	return &RecipeGraph{
		materialCost: make(map[int]decimal.Decimal),
		productLines: make(map[int][]RecipeLine),
		subLines:     make(map[int][]RecipeLine),
		memo:         make(map[int]decimal.Decimal),
	}
}

// SetMaterialCost registers a raw material's current unit cost.
func (g *RecipeGraph) SetMaterialCost(materialID int, cost decimal.Decimal) {
	g.materialCost[materialID] = cost
}

// AddLine registers one bill-of-materials line under its owner.
func (g *RecipeGraph) AddLine(l RecipeLine) {
	switch l.OwnerType {
	case OwnerProduct:
		g.productLines[l.OwnerID] = append(g.productLines[l.OwnerID], l)
	case OwnerSubRecipe:
		g.subLines[l.OwnerID] = append(g.subLines[l.OwnerID], l)
	}
}

// ProductCost resolves the ingredient cost of a product: the sum over its
// recipe lines of quantity × component cost.
func (g *RecipeGraph) ProductCost(productID int) (decimal.Decimal, error) {
	return g.sumLines(g.productLines[productID], make(map[int]bool))
}

// SubRecipeCost resolves the cost of one yield unit of a sub-recipe,
// recursing through nested sub-recipes.
func (g *RecipeGraph) SubRecipeCost(subRecipeID int) (decimal.Decimal, error) {
	return g.resolveSub(subRecipeID, make(map[int]bool))
}

func (g *RecipeGraph) resolveSub(id int, visiting map[int]bool) (decimal.Decimal, error) {
	if cost, ok := g.memo[id]; ok {
		return cost, nil
	}
	if visiting[id] {
		return decimal.Zero, fmt.Errorf("sub-recipe %d: %w", id, ErrCircularRecipe)
	}
	visiting[id] = true
	defer delete(visiting, id)

	cost, err := g.sumLines(g.subLines[id], visiting)
	if err != nil {
		return decimal.Zero, err
	}
	g.memo[id] = cost
	return cost, nil
}

func (g *RecipeGraph) sumLines(lines []RecipeLine, visiting map[int]bool) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range lines {
		switch {
		case l.MaterialID != nil:
			// Unknown material id reads as zero cost by design.
			total = total.Add(l.Quantity.Mul(g.materialCost[*l.MaterialID]))
		case l.SubRecipeID != nil:
			sub, err := g.resolveSub(*l.SubRecipeID, visiting)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(l.Quantity.Mul(sub))
		}
	}
	return total, nil
}

// CostingService resolves ingredient costs against the live database.
type CostingService interface {
	// LoadGraph snapshots the cafe's materials and recipe lines.
	LoadGraph(ctx context.Context, cafeID int) (*RecipeGraph, error)

	// ProductIngredientCost resolves one product's ingredient cost.
	ProductIngredientCost(ctx context.Context, cafeID, productID int) (decimal.Decimal, error)

	// SubRecipeCost resolves one sub-recipe's cost per yield unit.
	SubRecipeCost(ctx context.Context, cafeID, subRecipeID int) (decimal.Decimal, error)
}

type costingService struct {
	pool *pgxpool.Pool
}

func NewCostingService(pool *pgxpool.Pool) CostingService {
	return &costingService{pool: pool}
}

func (s *costingService) LoadGraph(ctx context.Context, cafeID int) (*RecipeGraph, error) {
	g := NewRecipeGraph()

	rows, err := s.pool.Query(ctx,
		"SELECT id, current_cost FROM raw_materials WHERE cafe_id = $1", cafeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query material costs: %w", err)
	}
	for rows.Next() {
		var id int
		var cost decimal.Decimal
		if err := rows.Scan(&id, &cost); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan material cost: %w", err)
		}
		g.SetMaterialCost(id, cost)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("material cost iteration error: %w", err)
	}

	rows, err = s.pool.Query(ctx, `
		SELECT owner_type, owner_id, material_id, sub_recipe_id, quantity
		FROM recipe_lines
		WHERE cafe_id = $1`,
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l RecipeLine
		if err := rows.Scan(&l.OwnerType, &l.OwnerID, &l.MaterialID, &l.SubRecipeID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan recipe line: %w", err)
		}
		g.AddLine(l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recipe line iteration error: %w", err)
	}
	return g, nil
}

func (s *costingService) ProductIngredientCost(ctx context.Context, cafeID, productID int) (decimal.Decimal, error) {
	g, err := s.LoadGraph(ctx, cafeID)
	if err != nil {
		return decimal.Zero, err
	}
	return g.ProductCost(productID)
}

func (s *costingService) SubRecipeCost(ctx context.Context, cafeID, subRecipeID int) (decimal.Decimal, error) {
	g, err := s.LoadGraph(ctx, cafeID)
	if err != nil {
		return decimal.Zero, err
	}
	return g.SubRecipeCost(subRecipeID)
}
