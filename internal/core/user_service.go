package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for unknown usernames and wrong passwords
// alike, so login failures stay indistinguishable to the caller.
var ErrBadCredentials = errors.New("invalid username or password")

// UserService manages owner and cashier accounts.
type UserService interface {
	// Authenticate verifies a username/password pair against the stored
	// bcrypt hash and returns the active account.
	Authenticate(ctx context.Context, username, password string) (*User, error)

	GetByID(ctx context.Context, userID int) (*User, error)

	// CreateCashier adds a cashier account under the owner's cafe.
	CreateCashier(ctx context.Context, cafeID int, username, email, password string) (*User, error)
	GetCashiers(ctx context.Context, cafeID int) ([]User, error)
	DeactivateCashier(ctx context.Context, cafeID, userID int) error
}

type userService struct {
	pool *pgxpool.Pool
}

func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, cafe_id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE username = $1 AND is_active = true`,
		username,
	).Scan(&u.ID, &u.CafeID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, cafe_id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.CafeID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

func (s *userService) CreateCashier(ctx context.Context, cafeID int, username, email, password string) (*User, error) {
	if username == "" {
		return nil, fmt.Errorf("username must not be empty")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{CafeID: cafeID, Username: username, Email: email, Role: RoleCashier, IsActive: true}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO users (cafe_id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		cafeID, username, email, string(hash), RoleCashier,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cashier: %w", err)
	}
	return u, nil
}

func (s *userService) GetCashiers(ctx context.Context, cafeID int) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cafe_id, username, email, password_hash, role, is_active, created_at
		FROM users
		WHERE cafe_id = $1 AND role = $2
		ORDER BY username`,
		cafeID, RoleCashier,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cashiers: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.CafeID, &u.Username, &u.Email, &u.PasswordHash,
			&u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cashier: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *userService) DeactivateCashier(ctx context.Context, cafeID, userID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_active = false WHERE cafe_id = $1 AND id = $2 AND role = $3",
		cafeID, userID, RoleCashier,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate cashier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("cashier %d not found", userID)
	}
	return nil
}
