package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe line owner kinds. A line belongs to a product's recipe or to a
// sub-recipe's own bill of materials.
const (
	OwnerProduct   = "product"
	OwnerSubRecipe = "sub_recipe"
)

// SubRecipe is a reusable preparation (e.g. "espresso base", "caramel
// sauce") with its own bill of materials. Sub-recipes may nest other
// sub-recipes; the reference graph must stay acyclic.
type SubRecipe struct {
	ID        int          `json:"id"`
	CafeID    int          `json:"cafe_id"`
	Name      string       `json:"name"`
	YieldUnit string       `json:"yield_unit"`
	Lines     []RecipeLine `json:"lines,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// RecipeLine is one bill-of-materials entry. Exactly one of MaterialID
// and SubRecipeID is set; Quantity is in the component's unit.
type RecipeLine struct {
	ID          int             `json:"id"`
	CafeID      int             `json:"cafe_id"`
	OwnerType   string          `json:"owner_type"`
	OwnerID     int             `json:"owner_id"`
	MaterialID  *int            `json:"material_id,omitempty"`
	SubRecipeID *int            `json:"sub_recipe_id,omitempty"`
	Component   string          `json:"component,omitempty"` // joined name
	Quantity    decimal.Decimal `json:"quantity"`
}

// RecipeLineInput is the write shape for ReplaceLines.
type RecipeLineInput struct {
	MaterialID  *int
	SubRecipeID *int
	Quantity    decimal.Decimal
}
