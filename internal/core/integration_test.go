package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// setupTestDB connects to the throwaway test database, wipes it, and seeds
// one cafe with a small catalog and two raw materials.
// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
func setupTestDB(t *testing.T) (*pgxpool.Pool, context.Context) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE payments, order_items, orders, voucher_codes, vouchers,
			reviews, product_pricing, recipe_lines, sub_recipes, material_batches,
			raw_materials, product_addons, product_variations, products, categories,
			users, cafes CASCADE;

		INSERT INTO cafes (id, name, address, phone)
		VALUES (1, 'Test Cafe', 'Jl. Test 1', '0800000000');

		INSERT INTO categories (id, cafe_id, name) VALUES (1, 1, 'Coffee');

		INSERT INTO products (id, cafe_id, category_id, name, price, stock) VALUES
		(1, 1, 1, 'Latte',     20000, 10),
		(2, 1, 1, 'Croissant', 15000, 5);

		INSERT INTO product_variations (id, product_id, name, price_delta)
		VALUES (1, 1, 'Large', 5000);

		INSERT INTO product_addons (id, product_id, name, price)
		VALUES (1, 1, 'Extra Shot', 4000);

		INSERT INTO raw_materials (id, cafe_id, name, category, unit, current_cost) VALUES
		(1, 1, 'Milk',  'dairy', 'liter', 15000),
		(2, 1, 'Beans', 'dry',   'kg',    120000);

		SELECT setval('cafes_id_seq', 1);
		SELECT setval('categories_id_seq', 1);
		SELECT setval('products_id_seq', 2);
		SELECT setval('product_variations_id_seq', 1);
		SELECT setval('product_addons_id_seq', 1);
		SELECT setval('raw_materials_id_seq', 2);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test data: %v", err)
	}

	return pool, ctx
}
