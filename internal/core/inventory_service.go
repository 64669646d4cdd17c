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

// InventoryService manages raw materials and their expiry-tracked batches.
type InventoryService interface {
	CreateMaterial(ctx context.Context, cafeID int, name, category, unit string, cost decimal.Decimal) (*RawMaterial, error)
	GetMaterials(ctx context.Context, cafeID int) ([]RawMaterial, error)
	DeactivateMaterial(ctx context.Context, cafeID, materialID int) error

	// ReceiveBatch records a new stock lot and updates the material's
	// current cost to the batch unit cost in the same transaction.
	ReceiveBatch(ctx context.Context, cafeID, materialID int, qty, unitCost decimal.Decimal, expiresOn *time.Time) (*MaterialBatch, error)

	// StockLevels returns each active material with its unused-batch sum.
	StockLevels(ctx context.Context, cafeID int) ([]MaterialStock, error)

	// ExpiringBatches lists unused batches expiring on or before the cutoff.
	ExpiringBatches(ctx context.Context, cafeID int, cutoff time.Time) ([]MaterialBatch, error)

	// ConsumeStock marks batches used oldest-expiry-first until qty is
	// covered. Partially consumed lots stay open with a reduced quantity.
	ConsumeStock(ctx context.Context, cafeID, materialID int, qty decimal.Decimal) error
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

func (s *inventoryService) CreateMaterial(ctx context.Context, cafeID int, name, category, unit string, cost decimal.Decimal) (*RawMaterial, error) {
	if name == "" {
		return nil, fmt.Errorf("material name must not be empty")
	}
	if cost.IsNegative() {
		return nil, fmt.Errorf("material cost cannot be negative, got %s", cost)
	}
	m := &RawMaterial{
		CafeID:      cafeID,
		Name:        name,
		Category:    category,
		Unit:        unit,
		CurrentCost: cost,
		IsActive:    true,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO raw_materials (cafe_id, name, category, unit, current_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		cafeID, name, category, unit, cost,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return m, nil
}

func (s *inventoryService) GetMaterials(ctx context.Context, cafeID int) ([]RawMaterial, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cafe_id, name, category, unit, current_cost, is_active, created_at
		FROM raw_materials
		WHERE cafe_id = $1 AND is_active = true
		ORDER BY category, name`,
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []RawMaterial
	for rows.Next() {
		var m RawMaterial
		if err := rows.Scan(&m.ID, &m.CafeID, &m.Name, &m.Category, &m.Unit,
			&m.CurrentCost, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

func (s *inventoryService) DeactivateMaterial(ctx context.Context, cafeID, materialID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE raw_materials SET is_active = false WHERE cafe_id = $1 AND id = $2",
		cafeID, materialID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("material %d not found", materialID)
	}
	return nil
}

// ReceiveBatch inserts the batch and moves the material's current_cost to
// the new batch cost atomically, so recipe costing always prices at the
// latest purchase cost.
func (s *inventoryService) ReceiveBatch(ctx context.Context, cafeID, materialID int, qty, unitCost decimal.Decimal, expiresOn *time.Time) (*MaterialBatch, error) {
	if qty.IsNegative() || qty.IsZero() {
		return nil, fmt.Errorf("batch quantity must be positive, got %s", qty)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("batch unit cost cannot be negative, got %s", unitCost)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the material row so concurrent receipts serialize on cost update.
	var id int
	err = tx.QueryRow(ctx,
		"SELECT id FROM raw_materials WHERE cafe_id = $1 AND id = $2 AND is_active = true FOR UPDATE",
		cafeID, materialID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("material %d not found", materialID)
		}
		return nil, fmt.Errorf("failed to lock material: %w", err)
	}

	b := &MaterialBatch{MaterialID: materialID, Quantity: qty, UnitCost: unitCost, ExpiresOn: expiresOn}
	err = tx.QueryRow(ctx, `
		INSERT INTO material_batches (material_id, quantity, unit_cost, expires_on)
		VALUES ($1, $2, $3, $4)
		RETURNING id, received_at`,
		materialID, qty, unitCost, expiresOn,
	).Scan(&b.ID, &b.ReceivedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert batch: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE raw_materials SET current_cost = $1 WHERE id = $2",
		unitCost, materialID,
	); err != nil {
		return nil, fmt.Errorf("failed to update material cost: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit batch receipt: %w", err)
	}
	return b, nil
}

func (s *inventoryService) StockLevels(ctx context.Context, cafeID int) ([]MaterialStock, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.cafe_id, m.name, m.category, m.unit, m.current_cost,
		       m.is_active, m.created_at,
		       COALESCE(SUM(b.quantity) FILTER (WHERE NOT b.is_used), 0) AS stock
		FROM raw_materials m
		LEFT JOIN material_batches b ON b.material_id = m.id
		WHERE m.cafe_id = $1 AND m.is_active = true
		GROUP BY m.id
		ORDER BY m.category, m.name`,
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []MaterialStock
	for rows.Next() {
		var ms MaterialStock
		if err := rows.Scan(&ms.Material.ID, &ms.Material.CafeID, &ms.Material.Name,
			&ms.Material.Category, &ms.Material.Unit, &ms.Material.CurrentCost,
			&ms.Material.IsActive, &ms.Material.CreatedAt, &ms.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, ms)
	}
	return levels, rows.Err()
}

func (s *inventoryService) ExpiringBatches(ctx context.Context, cafeID int, cutoff time.Time) ([]MaterialBatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.id, b.material_id, b.quantity, b.unit_cost, b.expires_on, b.is_used, b.received_at
		FROM material_batches b
		JOIN raw_materials m ON m.id = b.material_id
		WHERE m.cafe_id = $1
		  AND NOT b.is_used
		  AND b.expires_on IS NOT NULL
		  AND b.expires_on <= $2::date
		ORDER BY b.expires_on`,
		cafeID, cutoff.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring batches: %w", err)
	}
	defer rows.Close()

	var batches []MaterialBatch
	for rows.Next() {
		var b MaterialBatch
		if err := rows.Scan(&b.ID, &b.MaterialID, &b.Quantity, &b.UnitCost,
			&b.ExpiresOn, &b.IsUsed, &b.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// ConsumeStock drains unused batches in expiry order (nil expiry last,
// then oldest receipt first) until qty is covered.
func (s *inventoryService) ConsumeStock(ctx context.Context, cafeID, materialID int, qty decimal.Decimal) error {
	if qty.IsNegative() || qty.IsZero() {
		return fmt.Errorf("consume quantity must be positive, got %s", qty)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT b.id, b.quantity
		FROM material_batches b
		JOIN raw_materials m ON m.id = b.material_id
		WHERE m.cafe_id = $1 AND b.material_id = $2 AND NOT b.is_used
		ORDER BY b.expires_on NULLS LAST, b.received_at
		FOR UPDATE OF b`,
		cafeID, materialID,
	)
	if err != nil {
		return fmt.Errorf("failed to lock batches: %w", err)
	}

	type lot struct {
		id  int
		qty decimal.Decimal
	}
	var lots []lot
	for rows.Next() {
		var l lot
		if err := rows.Scan(&l.id, &l.qty); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan batch: %w", err)
		}
		lots = append(lots, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("batch row iteration error: %w", err)
	}

	remaining := qty
	for _, l := range lots {
		if remaining.IsZero() {
			break
		}
		if l.qty.LessThanOrEqual(remaining) {
			if _, err := tx.Exec(ctx,
				"UPDATE material_batches SET is_used = true WHERE id = $1", l.id); err != nil {
				return fmt.Errorf("failed to close batch %d: %w", l.id, err)
			}
			remaining = remaining.Sub(l.qty)
		} else {
			if _, err := tx.Exec(ctx,
				"UPDATE material_batches SET quantity = quantity - $1 WHERE id = $2",
				remaining, l.id); err != nil {
				return fmt.Errorf("failed to draw down batch %d: %w", l.id, err)
			}
			remaining = decimal.Zero
		}
	}
	if !remaining.IsZero() {
		return fmt.Errorf("insufficient stock for material %d: short by %s", materialID, remaining)
	}

	return tx.Commit(ctx)
}
