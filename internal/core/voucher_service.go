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
	qrcode "github.com/skip2/go-qrcode"
)

// Voucher discount kinds.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Voucher validation failures surfaced to the order path.
var (
	ErrVoucherNotFound = errors.New("voucher code not found")
	ErrVoucherUsed     = errors.New("voucher code already used")
	ErrVoucherExpired  = errors.New("voucher is outside its validity window")
)

// Voucher is a discount campaign; redemption happens through its unique
// single-use codes.
type Voucher struct {
	ID            int             `json:"id"`
	CafeID        int             `json:"cafe_id"`
	Name          string          `json:"name"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ValidFrom     time.Time       `json:"valid_from"`
	ValidUntil    time.Time       `json:"valid_until"`
	IsActive      bool            `json:"is_active"`
	CodeCount     int             `json:"code_count"`
	UsedCount     int             `json:"used_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// VoucherCode is one single-use code belonging to a voucher.
type VoucherCode struct {
	ID        int        `json:"id"`
	VoucherID int        `json:"voucher_id"`
	Code      string     `json:"code"`
	IsUsed    bool       `json:"is_used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// VoucherService manages discount vouchers and their codes.
type VoucherService interface {
	CreateVoucher(ctx context.Context, cafeID int, name, discountType string, discountValue decimal.Decimal, validFrom, validUntil time.Time) (*Voucher, error)
	GetVouchers(ctx context.Context, cafeID int) ([]Voucher, error)
	DeactivateVoucher(ctx context.Context, cafeID, voucherID int) error

	// GenerateCodes mints n unique single-use codes for a voucher.
	GenerateCodes(ctx context.Context, cafeID, voucherID, n int) ([]VoucherCode, error)
	GetCodes(ctx context.Context, cafeID, voucherID int) ([]VoucherCode, error)

	// CodeQR renders a voucher code as a PNG QR image.
	CodeQR(ctx context.Context, cafeID int, code string, size int) ([]byte, error)

	// RedeemInTx validates and burns a code within the caller's order
	// transaction, returning the discount amount for the given subtotal.
	RedeemInTx(ctx context.Context, tx pgx.Tx, cafeID int, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

type voucherService struct {
	pool *pgxpool.Pool
}

func NewVoucherService(pool *pgxpool.Pool) VoucherService {
	return &voucherService{pool: pool}
}

func (s *voucherService) CreateVoucher(ctx context.Context, cafeID int, name, discountType string, discountValue decimal.Decimal, validFrom, validUntil time.Time) (*Voucher, error) {
	if name == "" {
		return nil, fmt.Errorf("voucher name must not be empty")
	}
	if discountType != DiscountPercent && discountType != DiscountFixed {
		return nil, fmt.Errorf("invalid discount type %q", discountType)
	}
	if !discountValue.IsPositive() {
		return nil, fmt.Errorf("discount value must be positive, got %s", discountValue)
	}
	if discountType == DiscountPercent && discountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("percent discount cannot exceed 100, got %s", discountValue)
	}
	if validUntil.Before(validFrom) {
		return nil, fmt.Errorf("voucher validity window ends before it starts")
	}

	v := &Voucher{
		CafeID:        cafeID,
		Name:          name,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		ValidFrom:     validFrom,
		ValidUntil:    validUntil,
		IsActive:      true,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO vouchers (cafe_id, name, discount_type, discount_value, valid_from, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		cafeID, name, discountType, discountValue,
		validFrom.Format("2006-01-02"), validUntil.Format("2006-01-02"),
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create voucher: %w", err)
	}
	return v, nil
}

func (s *voucherService) GetVouchers(ctx context.Context, cafeID int) ([]Voucher, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.cafe_id, v.name, v.discount_type, v.discount_value,
		       v.valid_from, v.valid_until, v.is_active, v.created_at,
		       COUNT(c.id), COUNT(c.id) FILTER (WHERE c.is_used)
		FROM vouchers v
		LEFT JOIN voucher_codes c ON c.voucher_id = v.id
		WHERE v.cafe_id = $1
		GROUP BY v.id
		ORDER BY v.created_at DESC`,
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []Voucher
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(&v.ID, &v.CafeID, &v.Name, &v.DiscountType, &v.DiscountValue,
			&v.ValidFrom, &v.ValidUntil, &v.IsActive, &v.CreatedAt,
			&v.CodeCount, &v.UsedCount); err != nil {
			return nil, fmt.Errorf("failed to scan voucher: %w", err)
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (s *voucherService) DeactivateVoucher(ctx context.Context, cafeID, voucherID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE vouchers SET is_active = false WHERE cafe_id = $1 AND id = $2",
		cafeID, voucherID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("voucher %d not found", voucherID)
	}
	return nil
}

func (s *voucherService) GenerateCodes(ctx context.Context, cafeID, voucherID, n int) ([]VoucherCode, error) {
	if n <= 0 || n > 1000 {
		return nil, fmt.Errorf("code count must be between 1 and 1000, got %d", n)
	}

	var exists int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM vouchers WHERE cafe_id = $1 AND id = $2 AND is_active = true",
		cafeID, voucherID,
	).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("voucher %d not found", voucherID)
		}
		return nil, fmt.Errorf("failed to verify voucher: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	codes := make([]VoucherCode, 0, n)
	for i := 0; i < n; i++ {
		c := VoucherCode{
			VoucherID: voucherID,
			Code:      newVoucherCode(),
		}
		err := tx.QueryRow(ctx,
			"INSERT INTO voucher_codes (voucher_id, code) VALUES ($1, $2) RETURNING id",
			voucherID, c.Code,
		).Scan(&c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert voucher code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit voucher codes: %w", err)
	}
	return codes, nil
}

// newVoucherCode derives a short uppercase code from a fresh UUID. 12 hex
// characters keep collisions out of practical reach; the unique index on
// voucher_codes.code backstops the rest.
func newVoucherCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "CAFE-" + strings.ToUpper(raw[:12])
}

func (s *voucherService) GetCodes(ctx context.Context, cafeID, voucherID int) ([]VoucherCode, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.voucher_id, c.code, c.is_used, c.used_at
		FROM voucher_codes c
		JOIN vouchers v ON v.id = c.voucher_id
		WHERE v.cafe_id = $1 AND c.voucher_id = $2
		ORDER BY c.id`,
		cafeID, voucherID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query voucher codes: %w", err)
	}
	defer rows.Close()

	var codes []VoucherCode
	for rows.Next() {
		var c VoucherCode
		if err := rows.Scan(&c.ID, &c.VoucherID, &c.Code, &c.IsUsed, &c.UsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voucher code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (s *voucherService) CodeQR(ctx context.Context, cafeID int, code string, size int) ([]byte, error) {
	var id int
	err := s.pool.QueryRow(ctx, `
		SELECT c.id
		FROM voucher_codes c
		JOIN vouchers v ON v.id = c.voucher_id
		WHERE v.cafe_id = $1 AND c.code = $2`,
		cafeID, code,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("failed to look up voucher code: %w", err)
	}

	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// RedeemInTx locks the code row, validates it, computes the discount, and
// marks it used — all inside the caller's order transaction so the code
// is burned only when the order commits.
func (s *voucherService) RedeemInTx(ctx context.Context, tx pgx.Tx, cafeID int, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	var codeID int
	var isUsed, isActive, inWindow bool
	var discountType string
	var discountValue decimal.Decimal
	// The window check runs on the database clock: valid_from/valid_until
	// are dates, and CURRENT_DATE evaluates them in the server timezone
	// instead of whatever UTC day the app process happens to be in.
	err := tx.QueryRow(ctx, `
		SELECT c.id, c.is_used, v.is_active,
		       CURRENT_DATE BETWEEN v.valid_from AND v.valid_until,
		       v.discount_type, v.discount_value
		FROM voucher_codes c
		JOIN vouchers v ON v.id = c.voucher_id
		WHERE v.cafe_id = $1 AND c.code = $2
		FOR UPDATE OF c`,
		cafeID, code,
	).Scan(&codeID, &isUsed, &isActive, &inWindow, &discountType, &discountValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("code %q: %w", code, ErrVoucherNotFound)
		}
		return decimal.Zero, fmt.Errorf("failed to lock voucher code: %w", err)
	}

	if isUsed {
		return decimal.Zero, fmt.Errorf("code %q: %w", code, ErrVoucherUsed)
	}
	if !isActive || !inWindow {
		return decimal.Zero, fmt.Errorf("code %q: %w", code, ErrVoucherExpired)
	}

	var discount decimal.Decimal
	if discountType == DiscountPercent {
		discount = subtotal.Mul(discountValue).Div(decimal.NewFromInt(100))
	} else {
		discount = discountValue
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	if _, err := tx.Exec(ctx,
		"UPDATE voucher_codes SET is_used = true, used_at = NOW() WHERE id = $1",
		codeID,
	); err != nil {
		return decimal.Zero, fmt.Errorf("failed to mark voucher code used: %w", err)
	}
	return discount, nil
}
