package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrInsufficientStock is returned when an ordered quantity exceeds the
// product's remaining stock.
var ErrInsufficientStock = errors.New("insufficient product stock")

// OrderService places and reads orders. Placement is a single transaction
// covering price snapshots, voucher redemption, stock decrement, and the
// payment record.
type OrderService interface {
	PlaceOrder(ctx context.Context, cafeID int, input PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, cafeID, orderID int) (*Order, error)
	// ListOrders returns orders within the inclusive date range, newest
	// first. Empty bounds mean no bound on that side.
	ListOrders(ctx context.Context, cafeID int, from, to string) ([]Order, error)
}

type orderService struct {
	pool     *pgxpool.Pool
	vouchers VoucherService
}

func NewOrderService(pool *pgxpool.Pool, vouchers VoucherService) OrderService {
	return &orderService{pool: pool, vouchers: vouchers}
}

func (s *orderService) PlaceOrder(ctx context.Context, cafeID int, input PlaceOrderInput) (*Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	for i, it := range input.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("item %d quantity must be positive, got %d", i+1, it.Quantity)
		}
	}
	orderType := input.OrderType
	if orderType == "" {
		orderType = OrderTypeCounter
	}
	if orderType != OrderTypeCounter && orderType != OrderTypeOnline {
		return nil, fmt.Errorf("invalid order type %q", orderType)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Price and decrement each line. The conditional UPDATE doubles as the
	// stock check: zero rows affected means not enough left.
	var items []OrderItem
	subtotal := decimal.Zero
	for _, it := range input.Items {
		var name string
		var basePrice decimal.Decimal
		err := tx.QueryRow(ctx,
			"SELECT name, price FROM products WHERE cafe_id = $1 AND id = $2 AND is_active = true",
			cafeID, it.ProductID,
		).Scan(&name, &basePrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("product %d not found", it.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch product %d: %w", it.ProductID, err)
		}

		unitPrice := basePrice
		if it.VariationID != nil {
			var delta decimal.Decimal
			err := tx.QueryRow(ctx,
				"SELECT price_delta FROM product_variations WHERE id = $1 AND product_id = $2",
				*it.VariationID, it.ProductID,
			).Scan(&delta)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, fmt.Errorf("variation %d not found for product %d", *it.VariationID, it.ProductID)
				}
				return nil, fmt.Errorf("failed to fetch variation: %w", err)
			}
			unitPrice = unitPrice.Add(delta)
		}
		for _, addonID := range it.AddonIDs {
			var price decimal.Decimal
			err := tx.QueryRow(ctx,
				"SELECT price FROM product_addons WHERE id = $1 AND product_id = $2",
				addonID, it.ProductID,
			).Scan(&price)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, fmt.Errorf("addon %d not found for product %d", addonID, it.ProductID)
				}
				return nil, fmt.Errorf("failed to fetch addon: %w", err)
			}
			unitPrice = unitPrice.Add(price)
		}

		tag, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock - $1 WHERE cafe_id = $2 AND id = $3 AND stock >= $1",
			it.Quantity, cafeID, it.ProductID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", it.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("product %q: %w", name, ErrInsufficientStock)
		}

		lineSubtotal := unitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, OrderItem{
			ProductID:   it.ProductID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   unitPrice,
			Subtotal:    lineSubtotal,
			Notes:       it.Notes,
		})
	}

	// Voucher redemption happens inside the same transaction so the code
	// is burned only if the order commits.
	discount := decimal.Zero
	if input.VoucherCode != nil && *input.VoucherCode != "" {
		discount, err = s.vouchers.RedeemInTx(ctx, tx, cafeID, *input.VoucherCode, subtotal)
		if err != nil {
			return nil, err
		}
	}
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	orderNumber := fmt.Sprintf("ORD-%s-%s",
		time.Now().Format("20060102"),
		strings.ToUpper(uuid.NewString()[:8]),
	)

	order := &Order{
		CafeID:       cafeID,
		OrderNumber:  orderNumber,
		CustomerName: input.CustomerName,
		OrderType:    orderType,
		Status:       "PAID",
		Subtotal:     subtotal,
		Discount:     discount,
		Total:        total,
		VoucherCode:  input.VoucherCode,
		CashierID:    input.CashierID,
		Items:        items,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (cafe_id, order_number, customer_name, order_type, status,
		                    subtotal, discount, total, voucher_code, cashier_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, placed_at`,
		cafeID, orderNumber, input.CustomerName, orderType, order.Status,
		subtotal, discount, total, input.VoucherCode, input.CashierID,
	).Scan(&order.ID, &order.PlacedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		it := &order.Items[i]
		it.OrderID = order.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			order.ID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal, it.Notes,
		).Scan(&it.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	method := input.PaymentMethod
	if method == "" {
		method = "cash"
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO payments (order_id, method, amount) VALUES ($1, $2, $3)",
		order.ID, method, total,
	); err != nil {
		return nil, fmt.Errorf("failed to insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, cafeID, orderID int) (*Order, error) {
	o := &Order{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, cafe_id, order_number, customer_name, order_type, status,
		       subtotal, discount, total, voucher_code, cashier_id, placed_at
		FROM orders
		WHERE cafe_id = $1 AND id = $2`,
		cafeID, orderID,
	).Scan(&o.ID, &o.CafeID, &o.OrderNumber, &o.CustomerName, &o.OrderType, &o.Status,
		&o.Subtotal, &o.Discount, &o.Total, &o.VoucherCode, &o.CashierID, &o.PlacedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	items, err := s.fetchItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, cafeID int, from, to string) ([]Order, error) {
	q := `
		SELECT id, cafe_id, order_number, customer_name, order_type, status,
		       subtotal, discount, total, voucher_code, cashier_id, placed_at
		FROM orders
		WHERE cafe_id = $1`
	args := []any{cafeID}
	if from != "" {
		args = append(args, from)
		q += fmt.Sprintf(" AND placed_at >= $%d::date", len(args))
	}
	if to != "" {
		args = append(args, to)
		q += fmt.Sprintf(" AND placed_at < ($%d::date + INTERVAL '1 day')", len(args))
	}
	q += " ORDER BY placed_at DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CafeID, &o.OrderNumber, &o.CustomerName, &o.OrderType,
			&o.Status, &o.Subtotal, &o.Discount, &o.Total, &o.VoucherCode, &o.CashierID,
			&o.PlacedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *orderService) fetchItems(ctx context.Context, orderID int) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity,
		       oi.unit_price, oi.subtotal, oi.notes
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.Subtotal, &it.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
