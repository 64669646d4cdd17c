package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Menu-engineering quadrants: popularity × profitability relative to the
// catalog average over the requested window.
type Quadrant string

const (
	QuadrantStar      Quadrant = "STAR"      // popular and profitable
	QuadrantPlowhorse Quadrant = "PLOWHORSE" // popular, not profitable
	QuadrantPuzzle    Quadrant = "PUZZLE"    // profitable, not popular
	QuadrantDog       Quadrant = "DOG"       // neither
)

// Recommendation returns the fixed advice string for a quadrant.
func (q Quadrant) Recommendation() string {
	switch q {
	case QuadrantStar:
		return "Keep and promote"
	case QuadrantPlowhorse:
		return "Increase price or reduce cost"
	case QuadrantPuzzle:
		return "Promote more"
	default:
		return "Consider removing or redesigning"
	}
}

// ProductPerformance is one product's aggregated sales within the window
// plus its classification.
type ProductPerformance struct {
	ProductID          int             `json:"product_id"`
	Name               string          `json:"name"`
	TotalSales         decimal.Decimal `json:"total_sales"` // units sold
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	ContributionMargin decimal.Decimal `json:"contribution_margin"`
	IsPopular          bool            `json:"is_popular"`
	IsProfitable       bool            `json:"is_profitable"`
	Quadrant           Quadrant        `json:"quadrant"`
	Recommendation     string          `json:"recommendation"`
}

// MenuMatrix is the full classification result for a date range.
type MenuMatrix struct {
	From             string               `json:"from"`
	To               string               `json:"to"`
	AvgPopularity    decimal.Decimal      `json:"avg_popularity"`
	AvgProfitability decimal.Decimal      `json:"avg_profitability"`
	Products         []ProductPerformance `json:"products"`
}

// ClassifyPerformances fills in the popularity/profitability flags and
// quadrants for a set of aggregated products. Averages are means over all
// entries, zero-sales products included; a value exactly at the average
// counts as popular/profitable (>=, a deliberate threshold-inclusion
// choice for boundary products). An empty input yields zero averages and
// no classifications.
func ClassifyPerformances(products []ProductPerformance) (avgPopularity, avgProfitability decimal.Decimal, classified []ProductPerformance) {
	if len(products) == 0 {
		return decimal.Zero, decimal.Zero, nil
	}

	n := decimal.NewFromInt(int64(len(products)))
	var totalSales, totalMargin decimal.Decimal
	for _, p := range products {
		totalSales = totalSales.Add(p.TotalSales)
		totalMargin = totalMargin.Add(p.ContributionMargin)
	}
	avgPopularity = totalSales.Div(n)
	avgProfitability = totalMargin.Div(n)

	classified = make([]ProductPerformance, len(products))
	for i, p := range products {
		p.IsPopular = p.TotalSales.GreaterThanOrEqual(avgPopularity)
		p.IsProfitable = p.ContributionMargin.GreaterThanOrEqual(avgProfitability)
		switch {
		case p.IsPopular && p.IsProfitable:
			p.Quadrant = QuadrantStar
		case p.IsPopular:
			p.Quadrant = QuadrantPlowhorse
		case p.IsProfitable:
			p.Quadrant = QuadrantPuzzle
		default:
			p.Quadrant = QuadrantDog
		}
		p.Recommendation = p.Quadrant.Recommendation()
		classified[i] = p
	}
	return avgPopularity, avgProfitability, classified
}

// MenuEngineeringService builds the popularity/profitability matrix from
// order history.
type MenuEngineeringService interface {
	// ClassifyMenu aggregates each active product's sales between from and
	// to (inclusive dates, YYYY-MM-DD) and classifies it against the
	// catalog averages. Cost uses each product's *current* ingredient cost;
	// historical cost snapshots are not retained, so contribution margins
	// are approximations under cost drift. Products with no sales in the
	// window participate in the averages as zeros.
	ClassifyMenu(ctx context.Context, cafeID int, from, to string) (*MenuMatrix, error)
}

type menuEngineeringService struct {
	pool    *pgxpool.Pool
	costing CostingService
}

func NewMenuEngineeringService(pool *pgxpool.Pool, costing CostingService) MenuEngineeringService {
	return &menuEngineeringService{pool: pool, costing: costing}
}

func (s *menuEngineeringService) ClassifyMenu(ctx context.Context, cafeID int, from, to string) (*MenuMatrix, error) {
	// LEFT JOIN keeps zero-sales products in the result set so they drag
	// the averages down as zeros.
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name,
		       COALESCE(s.total_sales, 0)   AS total_sales,
		       COALESCE(s.total_revenue, 0) AS total_revenue
		FROM products p
		LEFT JOIN (
		    SELECT oi.product_id,
		           SUM(oi.quantity) AS total_sales,
		           SUM(oi.subtotal) AS total_revenue
		    FROM order_items oi
		    JOIN orders o ON o.id = oi.order_id
		    WHERE o.cafe_id = $1
		      AND o.placed_at >= $2::date
		      AND o.placed_at < ($3::date + INTERVAL '1 day')
		    GROUP BY oi.product_id
		) s ON s.product_id = p.id
		WHERE p.cafe_id = $1 AND p.is_active = true
		ORDER BY p.name`,
		cafeID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate menu sales: %w", err)
	}
	defer rows.Close()

	var products []ProductPerformance
	for rows.Next() {
		var p ProductPerformance
		if err := rows.Scan(&p.ProductID, &p.Name, &p.TotalSales, &p.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan menu aggregate: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("menu aggregate iteration error: %w", err)
	}

	// One graph load prices the whole catalog.
	graph, err := s.costing.LoadGraph(ctx, cafeID)
	if err != nil {
		return nil, err
	}
	for i := range products {
		cost, err := graph.ProductCost(products[i].ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to cost product %d: %w", products[i].ProductID, err)
		}
		products[i].TotalCost = products[i].TotalSales.Mul(cost)
		products[i].ContributionMargin = products[i].TotalRevenue.Sub(products[i].TotalCost)
	}

	avgPop, avgProfit, classified := ClassifyPerformances(products)
	return &MenuMatrix{
		From:             from,
		To:               to,
		AvgPopularity:    avgPop,
		AvgProfitability: avgProfit,
		Products:         classified,
	}, nil
}
