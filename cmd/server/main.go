package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mannaalive/import-api/internal/api"
	"github.com/mannaalive/import-api/internal/db"
	"github.com/mannaalive/import-api/internal/eval"
)

func main() {
	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	cfg, err := eval.LoadConfig(os.Getenv("EVAL_CONFIG"))
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	srv := api.NewServer(pool, eval.NewEngine(cfg))
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
