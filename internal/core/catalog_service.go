package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogService manages a cafe's menu: categories, products, variations,
// and add-ons. All reads and writes are scoped by cafe id.
type CatalogService interface {
	CreateCategory(ctx context.Context, cafeID int, name string) (*Category, error)
	GetCategories(ctx context.Context, cafeID int) ([]Category, error)
	DeleteCategory(ctx context.Context, cafeID, categoryID int) error

	CreateProduct(ctx context.Context, cafeID int, categoryID *int, name, description string, price decimal.Decimal, stock int) (*Product, error)
	UpdateProduct(ctx context.Context, cafeID, productID int, categoryID *int, name, description string, price decimal.Decimal, stock int) (*Product, error)
	DeactivateProduct(ctx context.Context, cafeID, productID int) error
	GetProduct(ctx context.Context, cafeID, productID int) (*Product, error)
	// GetProducts lists active products with variations and add-ons attached.
	GetProducts(ctx context.Context, cafeID int) ([]Product, error)

	AddVariation(ctx context.Context, cafeID, productID int, name string, priceDelta decimal.Decimal) (*Variation, error)
	AddAddon(ctx context.Context, cafeID, productID int, name string, price decimal.Decimal) (*Addon, error)
	RemoveVariation(ctx context.Context, cafeID, variationID int) error
	RemoveAddon(ctx context.Context, cafeID, addonID int) error
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

func (s *catalogService) CreateCategory(ctx context.Context, cafeID int, name string) (*Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name must not be empty")
	}
	c := &Category{CafeID: cafeID, Name: name}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO categories (cafe_id, name) VALUES ($1, $2) RETURNING id",
		cafeID, name,
	).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return c, nil
}

func (s *catalogService) GetCategories(ctx context.Context, cafeID int) ([]Category, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, cafe_id, name FROM categories WHERE cafe_id = $1 ORDER BY name", cafeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.CafeID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *catalogService) DeleteCategory(ctx context.Context, cafeID, categoryID int) error {
	// Products keep their row; their category reference is detached first.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"UPDATE products SET category_id = NULL WHERE cafe_id = $1 AND category_id = $2",
		cafeID, categoryID,
	); err != nil {
		return fmt.Errorf("failed to detach products from category: %w", err)
	}
	tag, err := tx.Exec(ctx,
		"DELETE FROM categories WHERE cafe_id = $1 AND id = $2", cafeID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %d not found", categoryID)
	}
	return tx.Commit(ctx)
}

func (s *catalogService) CreateProduct(ctx context.Context, cafeID int, categoryID *int, name, description string, price decimal.Decimal, stock int) (*Product, error) {
	if name == "" {
		return nil, fmt.Errorf("product name must not be empty")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative, got %s", price)
	}
	if stock < 0 {
		return nil, fmt.Errorf("product stock cannot be negative, got %d", stock)
	}

	p := &Product{
		CafeID:      cafeID,
		CategoryID:  categoryID,
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Status:      availability(stock),
		IsActive:    true,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (cafe_id, category_id, name, description, price, stock)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		cafeID, categoryID, name, description, price, stock,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, cafeID, productID int, categoryID *int, name, description string, price decimal.Decimal, stock int) (*Product, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative, got %s", price)
	}
	if stock < 0 {
		return nil, fmt.Errorf("product stock cannot be negative, got %d", stock)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, stock = $5
		WHERE cafe_id = $6 AND id = $7`,
		categoryID, name, description, price, stock, cafeID, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %d not found", productID)
	}
	return s.GetProduct(ctx, cafeID, productID)
}

func (s *catalogService) DeactivateProduct(ctx context.Context, cafeID, productID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE products SET is_active = false WHERE cafe_id = $1 AND id = $2",
		cafeID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d not found", productID)
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, cafeID, productID int) (*Product, error) {
	p := &Product{}
	var category *string
	err := s.pool.QueryRow(ctx, `
		SELECT p.id, p.cafe_id, p.category_id, c.name, p.name, p.description,
		       p.price, p.stock, p.is_active, p.created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.cafe_id = $1 AND p.id = $2`,
		cafeID, productID,
	).Scan(&p.ID, &p.CafeID, &p.CategoryID, &category, &p.Name, &p.Description,
		&p.Price, &p.Stock, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	if category != nil {
		p.Category = *category
	}
	p.Status = availability(p.Stock)

	if err := s.attachOptions(ctx, []*Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) GetProducts(ctx context.Context, cafeID int) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.cafe_id, p.category_id, c.name, p.name, p.description,
		       p.price, p.stock, p.is_active, p.created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.cafe_id = $1 AND p.is_active = true
		ORDER BY c.name NULLS LAST, p.name`,
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		var category *string
		if err := rows.Scan(&p.ID, &p.CafeID, &p.CategoryID, &category, &p.Name,
			&p.Description, &p.Price, &p.Stock, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if category != nil {
			p.Category = *category
		}
		p.Status = availability(p.Stock)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product row iteration error: %w", err)
	}

	refs := make([]*Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := s.attachOptions(ctx, refs); err != nil {
		return nil, err
	}
	return products, nil
}

// attachOptions loads variations and add-ons for the given products in two
// queries and distributes them by product id.
func (s *catalogService) attachOptions(ctx context.Context, products []*Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int, len(products))
	byID := make(map[int]*Product, len(products))
	for i, p := range products {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := s.pool.Query(ctx,
		"SELECT id, product_id, name, price_delta FROM product_variations WHERE product_id = ANY($1) ORDER BY id", ids)
	if err != nil {
		return fmt.Errorf("failed to query variations: %w", err)
	}
	for rows.Next() {
		var v Variation
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.PriceDelta); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan variation: %w", err)
		}
		byID[v.ProductID].Variations = append(byID[v.ProductID].Variations, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("variation row iteration error: %w", err)
	}

	rows, err = s.pool.Query(ctx,
		"SELECT id, product_id, name, price FROM product_addons WHERE product_id = ANY($1) ORDER BY id", ids)
	if err != nil {
		return fmt.Errorf("failed to query addons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a Addon
		if err := rows.Scan(&a.ID, &a.ProductID, &a.Name, &a.Price); err != nil {
			return fmt.Errorf("failed to scan addon: %w", err)
		}
		byID[a.ProductID].Addons = append(byID[a.ProductID].Addons, a)
	}
	return rows.Err()
}

func (s *catalogService) AddVariation(ctx context.Context, cafeID, productID int, name string, priceDelta decimal.Decimal) (*Variation, error) {
	if err := s.checkProductOwnership(ctx, cafeID, productID); err != nil {
		return nil, err
	}
	v := &Variation{ProductID: productID, Name: name, PriceDelta: priceDelta}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO product_variations (product_id, name, price_delta) VALUES ($1, $2, $3) RETURNING id",
		productID, name, priceDelta,
	).Scan(&v.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add variation: %w", err)
	}
	return v, nil
}

func (s *catalogService) AddAddon(ctx context.Context, cafeID, productID int, name string, price decimal.Decimal) (*Addon, error) {
	if err := s.checkProductOwnership(ctx, cafeID, productID); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("addon price cannot be negative, got %s", price)
	}
	a := &Addon{ProductID: productID, Name: name, Price: price}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO product_addons (product_id, name, price) VALUES ($1, $2, $3) RETURNING id",
		productID, name, price,
	).Scan(&a.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add addon: %w", err)
	}
	return a, nil
}

func (s *catalogService) RemoveVariation(ctx context.Context, cafeID, variationID int) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM product_variations v
		USING products p
		WHERE v.id = $1 AND p.id = v.product_id AND p.cafe_id = $2`,
		variationID, cafeID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove variation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variation %d not found", variationID)
	}
	return nil
}

func (s *catalogService) RemoveAddon(ctx context.Context, cafeID, addonID int) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM product_addons a
		USING products p
		WHERE a.id = $1 AND p.id = a.product_id AND p.cafe_id = $2`,
		addonID, cafeID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove addon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("addon %d not found", addonID)
	}
	return nil
}

// checkProductOwnership verifies the product exists and belongs to the cafe.
func (s *catalogService) checkProductOwnership(ctx context.Context, cafeID, productID int) error {
	var id int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM products WHERE cafe_id = $1 AND id = $2", cafeID, productID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("product %d not found", productID)
		}
		return fmt.Errorf("failed to verify product: %w", err)
	}
	return nil
}
