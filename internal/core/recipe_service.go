package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrCircularRecipe is returned when a sub-recipe edit would close a
// reference cycle, or when cost resolution runs into one that slipped
// past the save-time check (e.g. via direct DB edits).
var ErrCircularRecipe = errors.New("circular sub-recipe reference")

// RecipeService manages sub-recipes and the bill-of-materials lines of
// both products and sub-recipes.
type RecipeService interface {
	CreateSubRecipe(ctx context.Context, cafeID int, name, yieldUnit string) (*SubRecipe, error)
	GetSubRecipes(ctx context.Context, cafeID int) ([]SubRecipe, error)
	GetSubRecipe(ctx context.Context, cafeID, subRecipeID int) (*SubRecipe, error)
	DeleteSubRecipe(ctx context.Context, cafeID, subRecipeID int) error

	// ReplaceLines swaps the full bill of materials of a product or
	// sub-recipe. Each line must reference exactly one component and carry
	// a positive quantity; for sub-recipe owners the resulting reference
	// graph is checked for cycles before anything is written.
	ReplaceLines(ctx context.Context, cafeID int, ownerType string, ownerID int, lines []RecipeLineInput) ([]RecipeLine, error)

	// GetLines returns the bill of materials of a product or sub-recipe
	// with component names joined in.
	GetLines(ctx context.Context, cafeID int, ownerType string, ownerID int) ([]RecipeLine, error)
}

type recipeService struct {
	pool *pgxpool.Pool
}

func NewRecipeService(pool *pgxpool.Pool) RecipeService {
	return &recipeService{pool: pool}
}

func (s *recipeService) CreateSubRecipe(ctx context.Context, cafeID int, name, yieldUnit string) (*SubRecipe, error) {
	if name == "" {
		return nil, fmt.Errorf("sub-recipe name must not be empty")
	}
	if yieldUnit == "" {
		yieldUnit = "portion"
	}
	sr := &SubRecipe{CafeID: cafeID, Name: name, YieldUnit: yieldUnit}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO sub_recipes (cafe_id, name, yield_unit) VALUES ($1, $2, $3) RETURNING id, created_at",
		cafeID, name, yieldUnit,
	).Scan(&sr.ID, &sr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create sub-recipe: %w", err)
	}
	return sr, nil
}

func (s *recipeService) GetSubRecipes(ctx context.Context, cafeID int) ([]SubRecipe, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, cafe_id, name, yield_unit, created_at FROM sub_recipes WHERE cafe_id = $1 ORDER BY name",
		cafeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-recipes: %w", err)
	}
	defer rows.Close()

	var recipes []SubRecipe
	for rows.Next() {
		var sr SubRecipe
		if err := rows.Scan(&sr.ID, &sr.CafeID, &sr.Name, &sr.YieldUnit, &sr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sub-recipe: %w", err)
		}
		recipes = append(recipes, sr)
	}
	return recipes, rows.Err()
}

func (s *recipeService) GetSubRecipe(ctx context.Context, cafeID, subRecipeID int) (*SubRecipe, error) {
	sr := &SubRecipe{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, cafe_id, name, yield_unit, created_at FROM sub_recipes WHERE cafe_id = $1 AND id = $2",
		cafeID, subRecipeID,
	).Scan(&sr.ID, &sr.CafeID, &sr.Name, &sr.YieldUnit, &sr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("sub-recipe %d not found", subRecipeID)
		}
		return nil, fmt.Errorf("failed to fetch sub-recipe: %w", err)
	}
	lines, err := s.GetLines(ctx, cafeID, OwnerSubRecipe, subRecipeID)
	if err != nil {
		return nil, err
	}
	sr.Lines = lines
	return sr, nil
}

func (s *recipeService) DeleteSubRecipe(ctx context.Context, cafeID, subRecipeID int) error {
	// Refuse while other recipes still reference it.
	var refs int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM recipe_lines WHERE cafe_id = $1 AND sub_recipe_id = $2",
		cafeID, subRecipeID,
	).Scan(&refs); err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("sub-recipe %d is used by %d recipe line(s)", subRecipeID, refs)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM recipe_lines WHERE cafe_id = $1 AND owner_type = $2 AND owner_id = $3",
		cafeID, OwnerSubRecipe, subRecipeID,
	); err != nil {
		return fmt.Errorf("failed to delete sub-recipe lines: %w", err)
	}
	tag, err := tx.Exec(ctx,
		"DELETE FROM sub_recipes WHERE cafe_id = $1 AND id = $2", cafeID, subRecipeID)
	if err != nil {
		return fmt.Errorf("failed to delete sub-recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sub-recipe %d not found", subRecipeID)
	}
	return tx.Commit(ctx)
}

func (s *recipeService) ReplaceLines(ctx context.Context, cafeID int, ownerType string, ownerID int, lines []RecipeLineInput) ([]RecipeLine, error) {
	if ownerType != OwnerProduct && ownerType != OwnerSubRecipe {
		return nil, fmt.Errorf("invalid recipe owner type %q", ownerType)
	}
	for i, l := range lines {
		if (l.MaterialID == nil) == (l.SubRecipeID == nil) {
			return nil, fmt.Errorf("line %d must reference exactly one of material or sub-recipe", i+1)
		}
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("line %d quantity must be positive, got %s", i+1, l.Quantity)
		}
		if l.SubRecipeID != nil && ownerType == OwnerSubRecipe && *l.SubRecipeID == ownerID {
			return nil, fmt.Errorf("sub-recipe %d cannot contain itself: %w", ownerID, ErrCircularRecipe)
		}
	}

	// Cycle precheck only matters when a sub-recipe gains sub-recipe edges;
	// product recipes are never referenced by anything.
	if ownerType == OwnerSubRecipe {
		edges, err := s.subRecipeEdges(ctx, cafeID)
		if err != nil {
			return nil, err
		}
		var next []int
		for _, l := range lines {
			if l.SubRecipeID != nil {
				next = append(next, *l.SubRecipeID)
			}
		}
		edges[ownerID] = next
		if hasCycleFrom(edges, ownerID) {
			return nil, fmt.Errorf("saving these lines for sub-recipe %d: %w", ownerID, ErrCircularRecipe)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		"DELETE FROM recipe_lines WHERE cafe_id = $1 AND owner_type = $2 AND owner_id = $3",
		cafeID, ownerType, ownerID,
	); err != nil {
		return nil, fmt.Errorf("failed to clear recipe lines: %w", err)
	}
	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO recipe_lines (cafe_id, owner_type, owner_id, material_id, sub_recipe_id, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			cafeID, ownerType, ownerID, l.MaterialID, l.SubRecipeID, l.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to insert recipe line: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recipe lines: %w", err)
	}

	return s.GetLines(ctx, cafeID, ownerType, ownerID)
}

func (s *recipeService) GetLines(ctx context.Context, cafeID int, ownerType string, ownerID int) ([]RecipeLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT rl.id, rl.cafe_id, rl.owner_type, rl.owner_id,
		       rl.material_id, rl.sub_recipe_id,
		       COALESCE(m.name, sr.name, ''), rl.quantity
		FROM recipe_lines rl
		LEFT JOIN raw_materials m ON m.id = rl.material_id
		LEFT JOIN sub_recipes sr  ON sr.id = rl.sub_recipe_id
		WHERE rl.cafe_id = $1 AND rl.owner_type = $2 AND rl.owner_id = $3
		ORDER BY rl.id`,
		cafeID, ownerType, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe lines: %w", err)
	}
	defer rows.Close()

	var lines []RecipeLine
	for rows.Next() {
		var l RecipeLine
		if err := rows.Scan(&l.ID, &l.CafeID, &l.OwnerType, &l.OwnerID,
			&l.MaterialID, &l.SubRecipeID, &l.Component, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan recipe line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// subRecipeEdges loads the sub-recipe → sub-recipe reference graph for a cafe.
func (s *recipeService) subRecipeEdges(ctx context.Context, cafeID int) (map[int][]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT owner_id, sub_recipe_id
		FROM recipe_lines
		WHERE cafe_id = $1 AND owner_type = $2 AND sub_recipe_id IS NOT NULL`,
		cafeID, OwnerSubRecipe,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-recipe graph: %w", err)
	}
	defer rows.Close()

	edges := make(map[int][]int)
	for rows.Next() {
		var from, to int
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan sub-recipe edge: %w", err)
		}
		edges[from] = append(edges[from], to)
	}
	return edges, rows.Err()
}

// hasCycleFrom reports whether any path starting at root returns to a node
// already on the current DFS path.
func hasCycleFrom(edges map[int][]int, root int) bool {
	onPath := make(map[int]bool)
	done := make(map[int]bool)

	var visit func(n int) bool
	visit = func(n int) bool {
		if onPath[n] {
			return true
		}
		if done[n] {
			return false
		}
		onPath[n] = true
		for _, next := range edges[n] {
			if visit(next) {
				return true
			}
		}
		onPath[n] = false
		done[n] = true
		return false
	}
	return visit(root)
}
