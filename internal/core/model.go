package core

import "time"

// Cafe is a tenant. Every catalog, inventory, and order row belongs to
// exactly one cafe, and every query in this package is scoped by cafe id.
type Cafe struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Role values for users. Owners manage the back office; cashiers may only
// place counter orders and view the catalog.
const (
	RoleOwner   = "owner"
	RoleCashier = "cashier"
)

// User is an owner or cashier account scoped to a cafe.
type User struct {
	ID           int       `json:"id"`
	CafeID       int       `json:"cafe_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
