package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial is a purchasable ingredient. CurrentCost tracks the unit
// cost of the most recently received batch and is what the cost resolver
// reads; it is never recomputed from history.
type RawMaterial struct {
	ID          int             `json:"id"`
	CafeID      int             `json:"cafe_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Unit        string          `json:"unit"`
	CurrentCost decimal.Decimal `json:"current_cost"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MaterialBatch is one received stock lot of a material. Current stock of
// a material is the sum of its unused batch quantities. ExpiresOn is nil
// for non-perishables.
type MaterialBatch struct {
	ID         int             `json:"id"`
	MaterialID int             `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ExpiresOn  *time.Time      `json:"expires_on,omitempty"`
	IsUsed     bool            `json:"is_used"`
	ReceivedAt time.Time       `json:"received_at"`
}

// MaterialStock pairs a material with its computed stock level.
type MaterialStock struct {
	Material RawMaterial     `json:"material"`
	Stock    decimal.Decimal `json:"stock"`
}
