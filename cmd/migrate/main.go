package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"cafe-pos/internal/db"
)

// Applies pending schema migrations and exits. The server runs the same
// migrations at startup; this command exists for deploy pipelines that
// migrate before rolling instances.
func main() {
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
	log.Println("migrations applied")
}
