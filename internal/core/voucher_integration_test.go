package core_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cafe-pos/internal/core"
)

// Validity windows are evaluated against the database's CURRENT_DATE, so
// the boundary days hold regardless of the app process timezone. Windows
// here are seeded relative to that same clock.
func TestVoucher_WindowBoundariesUseDatabaseDate(t *testing.T) {
	pool, ctx := setupTestDB(t)
	vouchers := core.NewVoucherService(pool)

	_, err := pool.Exec(ctx, `
		INSERT INTO vouchers (id, cafe_id, name, discount_type, discount_value, valid_from, valid_until) VALUES
		(1, 1, 'Last Day',     'fixed', 1000, CURRENT_DATE - 7, CURRENT_DATE),
		(2, 1, 'Starts Today', 'fixed', 1000, CURRENT_DATE,     CURRENT_DATE + 7),
		(3, 1, 'Expired',      'fixed', 1000, CURRENT_DATE - 7, CURRENT_DATE - 1),
		(4, 1, 'Not Yet',      'fixed', 1000, CURRENT_DATE + 1, CURRENT_DATE + 7);

		INSERT INTO voucher_codes (voucher_id, code) VALUES
		(1, 'CAFE-LASTDAY00'), (2, 'CAFE-STARTS000'), (3, 'CAFE-EXPIRED00'), (4, 'CAFE-NOTYET000');

		SELECT setval('vouchers_id_seq', 4);
	`)
	if err != nil {
		t.Fatalf("Failed to seed vouchers: %v", err)
	}

	// Each attempt rolls back so the codes stay unused between cases.
	redeem := func(code string) error {
		tx, err := pool.Begin(ctx)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer tx.Rollback(ctx)
		_, err = vouchers.RedeemInTx(ctx, tx, 1, code, decimal.NewFromInt(10000))
		return err
	}

	if err := redeem("CAFE-LASTDAY00"); err != nil {
		t.Errorf("expected redemption on valid_until day to succeed, got %v", err)
	}
	if err := redeem("CAFE-STARTS000"); err != nil {
		t.Errorf("expected redemption on valid_from day to succeed, got %v", err)
	}
	if err := redeem("CAFE-EXPIRED00"); !errors.Is(err, core.ErrVoucherExpired) {
		t.Errorf("expected ErrVoucherExpired for past window, got %v", err)
	}
	if err := redeem("CAFE-NOTYET000"); !errors.Is(err, core.ErrVoucherExpired) {
		t.Errorf("expected ErrVoucherExpired for future window, got %v", err)
	}
}
