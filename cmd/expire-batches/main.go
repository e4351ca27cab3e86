package main

import (
	"log"

	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/pkg/database"

	"github.com/joho/godotenv"
)

// Expiry sweep utility, meant to run from cron once a day.
func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, replying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Run the sweep
	batchRepo := repository.NewBatchRepo(db)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	batchService := service.NewBatchService(db, batchRepo, productRepo, movementRepo)

	count, err := batchService.ExpireBatches("system")
	if err != nil {
		log.Fatalf("❌ Failed to expire batches: %v", err)
	}

	log.Printf("✅ Done. Expired batches: %d", count)
}
