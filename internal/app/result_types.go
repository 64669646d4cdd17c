package app

import (
	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

// Session is what a successful login returns to the adapter.
type Session struct {
	UserID   int    `json:"user_id"`
	CafeID   int    `json:"cafe_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// MenuResult is the public menu view of a cafe: products grouped with
// their options, plus review aggregates.
type MenuResult struct {
	Cafe          *core.Cafe      `json:"cafe,omitempty"`
	Products      []core.Product  `json:"products"`
	AverageRating decimal.Decimal `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}

// StockResult pairs material stock levels with soon-to-expire batches.
type StockResult struct {
	Levels   []core.MaterialStock `json:"levels"`
	Expiring []core.MaterialBatch `json:"expiring"`
}

// ReviewListResult is the review listing with its aggregate rating.
type ReviewListResult struct {
	Reviews       []core.Review   `json:"reviews"`
	AverageRating decimal.Decimal `json:"average_rating"`
}

// VoucherCodesResult wraps generated or listed codes.
type VoucherCodesResult struct {
	VoucherID int                `json:"voucher_id"`
	Codes     []core.VoucherCode `json:"codes"`
}
