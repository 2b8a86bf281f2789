package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	_ "github.com/potluck-app/potluck/docs"
	"github.com/potluck-app/potluck/internal/api"
	"github.com/potluck-app/potluck/internal/config"
	"github.com/potluck-app/potluck/internal/database"
	"github.com/potluck-app/potluck/internal/realtime"
)

// @title           Potluck API
// @version         1.0
// @description     Potluck dinner coordination: hosts create a dinner, share a link, guests RSVP and claim menu items.
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database connection and run migrations
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("Connected to database successfully")

	// Realtime change-notification hub
	hub := realtime.NewHub()

	r := api.NewRouter(db, hub)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
