package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/pliro-dev/pliro/db"
	"github.com/pliro-dev/pliro/internal/auth"
	"github.com/pliro-dev/pliro/internal/cache"
	"github.com/pliro-dev/pliro/internal/config"
	"github.com/pliro-dev/pliro/internal/handlers"
	"github.com/pliro-dev/pliro/internal/inference"
	"github.com/pliro-dev/pliro/internal/router"
	"github.com/pliro-dev/pliro/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	cache.Init(cfg.RedisURL)

	if err := storage.Init(cfg); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	inference.Init(cfg)

	if err := auth.Init(cfg.JWTSecret); err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}

	handlers.Init(cfg)

	r := router.NewRouter(cfg)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
