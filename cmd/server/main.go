package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	webAdapter "cafe-pos/internal/adapters/web"
	"cafe-pos/internal/app"
	"cafe-pos/internal/core"
	"cafe-pos/internal/db"
)

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

	userService := core.NewUserService(pool)
	catalogService := core.NewCatalogService(pool)
	inventoryService := core.NewInventoryService(pool)
	recipeService := core.NewRecipeService(pool)
	costingService := core.NewCostingService(pool)
	pricingService := core.NewPricingService(pool, costingService)
	menuEngService := core.NewMenuEngineeringService(pool, costingService)
	voucherService := core.NewVoucherService(pool)
	orderService := core.NewOrderService(pool, voucherService)
	reviewService := core.NewReviewService(pool)
	reportingService := core.NewReportingService(pool)

	svc := app.NewAppService(
		pool,
		userService,
		catalogService,
		inventoryService,
		recipeService,
		pricingService,
		menuEngService,
		voucherService,
		orderService,
		reviewService,
		reportingService,
	)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
