package main

import (
	"log"
	"project/backend/ai"
	"project/backend/config"
	"project/backend/middleware"
	"project/backend/routes"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Redis; the app runs without caching if it is unreachable
	rdb, err := utils.InitRedis(cfg)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err.Error())
		rdb = nil
	}

	// Initialize the AI provider
	provider, err := ai.NewOpenAIProvider(cfg)
	if err != nil {
		log.Fatalf("Error initializing AI provider: %v", err)
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, rdb, provider, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
