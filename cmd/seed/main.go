// seed is a one-shot tool that provisions a cafe tenant with an owner
// account, for local development and demos.
//
// Usage: go run ./cmd/seed -cafe "Kopi Senja" -username owner -password secret123
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"cafe-pos/internal/db"
)

func main() {
	cafeName := flag.String("cafe", "Demo Cafe", "cafe name")
	address := flag.String("address", "", "cafe address")
	phone := flag.String("phone", "", "cafe phone")
	username := flag.String("username", "owner", "owner username")
	email := flag.String("email", "owner@example.com", "owner email")
	password := flag.String("password", "", "owner password (required)")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}
	if len(*password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}

	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	var cafeID int
	err = tx.QueryRow(ctx,
		`INSERT INTO cafes (name, address, phone) VALUES ($1, $2, $3) RETURNING id`,
		*cafeName, *address, *phone,
	).Scan(&cafeID)
	if err != nil {
		log.Fatalf("create cafe: %v", err)
	}

	var userID int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (cafe_id, username, email, password_hash, role, is_active)
		 VALUES ($1, $2, $3, $4, 'owner', TRUE) RETURNING id`,
		cafeID, *username, *email, string(hash),
	).Scan(&userID)
	if err != nil {
		log.Fatalf("create owner: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}
	log.Printf("created cafe %d (%s) with owner %s (user %d)", cafeID, *cafeName, *username, userID)
}
