package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrInvalidMargin is returned when a desired margin of 100% or more is
// requested; the price-basis formula divides by (1 − margin/100).
var ErrInvalidMargin = errors.New("desired margin must be below 100 percent")

// Pricing policy constants. Amounts are Indonesian Rupiah.
var (
	// MinNominalCost replaces a zero or negative ingredient cost before
	// price derivation, so an unconfigured recipe never suggests a free
	// product. 100 IDR is the smallest coin in circulation.
	MinNominalCost = decimal.NewFromInt(100)

	// MinPriceFactor and MaxPriceFactor bound the advisory price band:
	// a 20% floor and a 150% ceiling over ingredient cost.
	MinPriceFactor = decimal.NewFromFloat(1.2)
	MaxPriceFactor = decimal.NewFromFloat(2.5)

	// RoundIncrement and EndingOffset drive psychological rounding: round
	// up to the nearest increment, then drop by the offset to land on a
	// customary ...900 ending.
	RoundIncrement = decimal.NewFromInt(1000)
	EndingOffset   = decimal.NewFromInt(100)
)

var hundred = decimal.NewFromInt(100)

// SuggestPrice derives a selling price from ingredient cost and a desired
// margin expressed as a fraction of the selling price:
//
//	price = cost / (1 − margin/100)
//
// A margin at or above 100 is rejected. A cost at or below zero is
// replaced by MinNominalCost before derivation.
func SuggestPrice(ingredientCost, desiredMarginPct decimal.Decimal) (decimal.Decimal, error) {
	if desiredMarginPct.GreaterThanOrEqual(hundred) {
		return decimal.Zero, fmt.Errorf("margin %s%%: %w", desiredMarginPct, ErrInvalidMargin)
	}
	if desiredMarginPct.IsNegative() {
		return decimal.Zero, fmt.Errorf("desired margin cannot be negative, got %s%%", desiredMarginPct)
	}
	cost := ingredientCost
	if cost.LessThanOrEqual(decimal.Zero) {
		cost = MinNominalCost
	}
	denom := decimal.NewFromInt(1).Sub(desiredMarginPct.Div(hundred))
	return cost.Div(denom), nil
}

// PriceBand returns the advisory minimum and maximum price for a cost.
// The multipliers are policy constants independent of the desired margin.
func PriceBand(ingredientCost decimal.Decimal) (min, max decimal.Decimal) {
	return ingredientCost.Mul(MinPriceFactor), ingredientCost.Mul(MaxPriceFactor)
}

// ApplyPsychologicalPricing nudges a raw suggested price to a customary
// price point: round up to RoundIncrement, subtract EndingOffset, then
// step back up by whole increments if that fell below the ingredient
// cost. The result is never less than ingredientCost.
func ApplyPsychologicalPricing(price, ingredientCost decimal.Decimal) decimal.Decimal {
	rounded := price.Div(RoundIncrement).Ceil().Mul(RoundIncrement)
	p := rounded.Sub(EndingOffset)
	for p.LessThan(ingredientCost) {
		p = p.Add(RoundIncrement)
	}
	return p
}

// DisplayMargin is the cost-basis margin used in reporting:
//
//	((sellingPrice − ingredientCost) / ingredientCost) × 100
//
// It is the inverse of the price-basis formula SuggestPrice derives from;
// both definitions are intentional and used in different contexts.
// A cost at or below zero yields 0 rather than a division error.
func DisplayMargin(sellingPrice, ingredientCost decimal.Decimal) decimal.Decimal {
	if ingredientCost.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return sellingPrice.Sub(ingredientCost).Div(ingredientCost).Mul(hundred)
}

// ProductPricing is the persisted pricing record, one per product,
// created lazily on first recalculation.
type ProductPricing struct {
	ProductID          int              `json:"product_id"`
	CafeID             int              `json:"cafe_id"`
	IngredientCost     decimal.Decimal  `json:"ingredient_cost"`
	DesiredMargin      decimal.Decimal  `json:"desired_margin"`
	SuggestedPrice     decimal.Decimal  `json:"suggested_price"`
	MinPrice           decimal.Decimal  `json:"min_price"`
	MaxPrice           decimal.Decimal  `json:"max_price"`
	PsychologicalPrice decimal.Decimal  `json:"psychological_price"`
	CompetitorPrice    *decimal.Decimal `json:"competitor_price,omitempty"`
	CurrentPrice       decimal.Decimal  `json:"current_price"`  // joined from products
	CurrentMargin      decimal.Decimal  `json:"current_margin"` // cost-basis, derived
	LastCalculatedAt   time.Time        `json:"last_calculated_at"`
}

// PricingService computes and persists pricing records. Recalculation is
// always an explicit caller action (recipe edit, margin edit, or a manual
// refresh) — nothing recomputes in the background.
type PricingService interface {
	// Recalculate resolves the product's ingredient cost, derives the full
	// pricing record, and upserts it atomically.
	Recalculate(ctx context.Context, cafeID, productID int, desiredMargin decimal.Decimal, competitorPrice *decimal.Decimal) (*ProductPricing, error)

	// GetPricing returns the stored record, or nil when none exists yet.
	GetPricing(ctx context.Context, cafeID, productID int) (*ProductPricing, error)

	// ListPricing returns pricing records for every active product that
	// has one, with current price and cost-basis margin attached.
	ListPricing(ctx context.Context, cafeID int) ([]ProductPricing, error)
}

type pricingService struct {
	pool    *pgxpool.Pool
	costing CostingService
}

func NewPricingService(pool *pgxpool.Pool, costing CostingService) PricingService {
	return &pricingService{pool: pool, costing: costing}
}

func (s *pricingService) Recalculate(ctx context.Context, cafeID, productID int, desiredMargin decimal.Decimal, competitorPrice *decimal.Decimal) (*ProductPricing, error) {
	var currentPrice decimal.Decimal
	err := s.pool.QueryRow(ctx,
		"SELECT price FROM products WHERE cafe_id = $1 AND id = $2", cafeID, productID,
	).Scan(&currentPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	cost, err := s.costing.ProductIngredientCost(ctx, cafeID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ingredient cost: %w", err)
	}

	suggested, err := SuggestPrice(cost, desiredMargin)
	if err != nil {
		return nil, err
	}
	minPrice, maxPrice := PriceBand(cost)
	psych := ApplyPsychologicalPricing(suggested, cost)

	p := &ProductPricing{
		ProductID:          productID,
		CafeID:             cafeID,
		IngredientCost:     cost,
		DesiredMargin:      desiredMargin,
		SuggestedPrice:     suggested.Round(2),
		MinPrice:           minPrice.Round(2),
		MaxPrice:           maxPrice.Round(2),
		PsychologicalPrice: psych,
		CompetitorPrice:    competitorPrice,
		CurrentPrice:       currentPrice,
		CurrentMargin:      DisplayMargin(currentPrice, cost).Round(2),
	}

	// Single-statement upsert: the only concurrency control pricing needs.
	err = s.pool.QueryRow(ctx, `
		INSERT INTO product_pricing
			(product_id, cafe_id, ingredient_cost, desired_margin, suggested_price,
			 min_price, max_price, psychological_price, competitor_price, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (product_id) DO UPDATE SET
			ingredient_cost     = EXCLUDED.ingredient_cost,
			desired_margin      = EXCLUDED.desired_margin,
			suggested_price     = EXCLUDED.suggested_price,
			min_price           = EXCLUDED.min_price,
			max_price           = EXCLUDED.max_price,
			psychological_price = EXCLUDED.psychological_price,
			competitor_price    = EXCLUDED.competitor_price,
			last_calculated_at  = NOW()
		RETURNING last_calculated_at`,
		productID, cafeID, p.IngredientCost, p.DesiredMargin, p.SuggestedPrice,
		p.MinPrice, p.MaxPrice, p.PsychologicalPrice, p.CompetitorPrice,
	).Scan(&p.LastCalculatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pricing: %w", err)
	}
	return p, nil
}

func (s *pricingService) GetPricing(ctx context.Context, cafeID, productID int) (*ProductPricing, error) {
	p := &ProductPricing{}
	err := s.pool.QueryRow(ctx, `
		SELECT pp.product_id, pp.cafe_id, pp.ingredient_cost, pp.desired_margin,
		       pp.suggested_price, pp.min_price, pp.max_price, pp.psychological_price,
		       pp.competitor_price, pp.last_calculated_at, pr.price
		FROM product_pricing pp
		JOIN products pr ON pr.id = pp.product_id
		WHERE pp.cafe_id = $1 AND pp.product_id = $2`,
		cafeID, productID,
	).Scan(&p.ProductID, &p.CafeID, &p.IngredientCost, &p.DesiredMargin,
		&p.SuggestedPrice, &p.MinPrice, &p.MaxPrice, &p.PsychologicalPrice,
		&p.CompetitorPrice, &p.LastCalculatedAt, &p.CurrentPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // lazily created; absence is not an error
		}
		return nil, fmt.Errorf("failed to fetch pricing: %w", err)
	}
	p.CurrentMargin = DisplayMargin(p.CurrentPrice, p.IngredientCost).Round(2)
	return p, nil
}

func (s *pricingService) ListPricing(ctx context.Context, cafeID int) ([]ProductPricing, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pp.product_id, pp.cafe_id, pp.ingredient_cost, pp.desired_margin,
		       pp.suggested_price, pp.min_price, pp.max_price, pp.psychological_price,
		       pp.competitor_price, pp.last_calculated_at, pr.price
		FROM product_pricing pp
		JOIN products pr ON pr.id = pp.product_id
		WHERE pp.cafe_id = $1 AND pr.is_active = true
		ORDER BY pr.name`,
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing records: %w", err)
	}
	defer rows.Close()

	var records []ProductPricing
	for rows.Next() {
		var p ProductPricing
		if err := rows.Scan(&p.ProductID, &p.CafeID, &p.IngredientCost, &p.DesiredMargin,
			&p.SuggestedPrice, &p.MinPrice, &p.MaxPrice, &p.PsychologicalPrice,
			&p.CompetitorPrice, &p.LastCalculatedAt, &p.CurrentPrice); err != nil {
			return nil, fmt.Errorf("failed to scan pricing record: %w", err)
		}
		p.CurrentMargin = DisplayMargin(p.CurrentPrice, p.IngredientCost).Round(2)
		records = append(records, p)
	}
	return records, rows.Err()
}
