package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DailySales is one day's totals within a sales summary.
type DailySales struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// SalesSummary aggregates a cafe's orders over an inclusive date range.
type SalesSummary struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	OrderCount    int             `json:"order_count"`
	ItemsSold     int             `json:"items_sold"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	Days          []DailySales    `json:"days"`
}

// BestSeller is one product ranked by units sold in a window.
type BestSeller struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ReportingService provides read-only sales reporting.
//
// Query failures caused by a missing table (a schema that has not been
// migrated yet) are treated as "no data" rather than fatal, so a freshly
// provisioned back office renders empty dashboards instead of errors.
type ReportingService interface {
	SalesSummary(ctx context.Context, cafeID int, from, to string) (*SalesSummary, error)
	BestSellers(ctx context.Context, cafeID int, from, to string, limit int) ([]BestSeller, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

// isUndefinedTable reports whether err is PostgreSQL 42P01 (relation does
// not exist).
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

func (s *reportingService) SalesSummary(ctx context.Context, cafeID int, from, to string) (*SalesSummary, error) {
	summary := &SalesSummary{From: from, To: to}

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(o.id),
		       COALESCE(SUM(o.subtotal), 0),
		       COALESCE(SUM(o.discount), 0),
		       COALESCE(SUM(o.total), 0),
		       COALESCE((SELECT SUM(oi.quantity)
		                 FROM order_items oi
		                 JOIN orders o2 ON o2.id = oi.order_id
		                 WHERE o2.cafe_id = $1
		                   AND o2.placed_at >= $2::date
		                   AND o2.placed_at < ($3::date + INTERVAL '1 day')), 0)
		FROM orders o
		WHERE o.cafe_id = $1
		  AND o.placed_at >= $2::date
		  AND o.placed_at < ($3::date + INTERVAL '1 day')`,
		cafeID, from, to,
	).Scan(&summary.OrderCount, &summary.GrossRevenue, &summary.TotalDiscount,
		&summary.NetRevenue, &summary.ItemsSold)
	if err != nil {
		if isUndefinedTable(err) {
			return summary, nil
		}
		return nil, fmt.Errorf("failed to aggregate sales summary: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT placed_at::date::text, COUNT(id), COALESCE(SUM(total), 0)
		FROM orders
		WHERE cafe_id = $1
		  AND placed_at >= $2::date
		  AND placed_at < ($3::date + INTERVAL '1 day')
		GROUP BY placed_at::date
		ORDER BY placed_at::date`,
		cafeID, from, to,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return summary, nil
		}
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d DailySales
		if err := rows.Scan(&d.Date, &d.OrderCount, &d.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan daily sales: %w", err)
		}
		summary.Days = append(summary.Days, d)
	}
	return summary, rows.Err()
}

func (s *reportingService) BestSellers(ctx context.Context, cafeID int, from, to string, limit int) ([]BestSeller, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, SUM(oi.quantity)::int, SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o   ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.cafe_id = $1
		  AND o.placed_at >= $2::date
		  AND o.placed_at < ($3::date + INTERVAL '1 day')
		GROUP BY p.id, p.name
		ORDER BY SUM(oi.quantity) DESC, p.name
		LIMIT $4`,
		cafeID, from, to, limit,
	)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query best sellers: %w", err)
	}
	defer rows.Close()

	var sellers []BestSeller
	for rows.Next() {
		var b BestSeller
		if err := rows.Scan(&b.ProductID, &b.Name, &b.UnitsSold, &b.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan best seller: %w", err)
		}
		sellers = append(sellers, b)
	}
	return sellers, rows.Err()
}
