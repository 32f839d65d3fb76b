package main

import (
	"log"

	"prodify/config"
	"prodify/db"
	"prodify/media"
	"prodify/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// Open database
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close(database)

	// Media store for uploaded images
	store, err := media.New(cfg.UploadDir)
	if err != nil {
		log.Fatal("Failed to create upload directory: ", err)
	}

	// Create Fiber app; the default 4 MB body limit is below the 5 MB
	// per-image ceiling, and a product upload carries up to 10 images.
	app := fiber.New(fiber.Config{
		BodyLimit: 64 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Serve static files
	app.Static(media.URLPrefix, store.Dir())

	// Setup routes
	routes.SetupRoutes(app, database, store, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.Port))
}
