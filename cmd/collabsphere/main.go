package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/collabsphere-dev/collabsphere/db"
	"github.com/collabsphere-dev/collabsphere/internal/auth"
	"github.com/collabsphere-dev/collabsphere/internal/chat"
	"github.com/collabsphere-dev/collabsphere/internal/logger"
	"github.com/collabsphere-dev/collabsphere/internal/router"
)

func main() {
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file loaded", "error", err)
	}

	if err := auth.InitJWTSecret(); err != nil {
		logger.Fatal("Failed to initialize JWT secret", "error", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	hub := chat.NewHub(chat.NewGormStore(db.DB))

	r := router.NewRouter(hub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		logger.Info("PORT not set, defaulting to 3000")
	}

	logger.Info("Starting server", "port", port)

	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", "error", err)
	}
}
