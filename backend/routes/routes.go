package routes

import (
	"project/backend/ai"
	"project/backend/config"
	"project/backend/controllers"
	"project/backend/middleware"
	"project/backend/services"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, provider ai.Provider, cfg *config.Config) {
	store := services.NewGormProfileStore(db)
	progressService := services.NewProgressService(store)
	subscriptionService := services.NewSubscriptionService(store, services.AutoApprover{})

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg, progressService)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Lesson routes
	lessonController := controllers.NewLessonController(db, cfg, rdb, provider, progressService)
	lessons := app.Group("/api/lessons", authMiddleware)
	lessons.Post("/", lessonController.GenerateLesson)
	lessons.Get("/", lessonController.ListLessons)
	lessons.Get("/:id", lessonController.GetLesson)
	lessons.Post("/:id/complete", lessonController.CompleteLesson)

	// Tutor routes
	chatController := controllers.NewChatController(db, cfg, provider, progressService)
	tutor := app.Group("/api/tutor", authMiddleware)
	tutor.Post("/ask", chatController.AskTutor)
	tutor.Get("/history/:sessionKey", chatController.GetHistory)

	// Speech routes
	speechController := controllers.NewSpeechController(cfg, rdb, provider)
	app.Post("/api/speech", authMiddleware, speechController.Synthesize)

	// Document routes
	documentController := controllers.NewDocumentController(db, cfg, provider)
	documents := app.Group("/api/documents", authMiddleware)
	documents.Post("/", documentController.AnalyzeDocument)
	documents.Get("/", documentController.ListDocuments)

	// Subscription routes
	subscriptionController := controllers.NewSubscriptionController(db, cfg, subscriptionService, progressService)
	subscription := app.Group("/api/subscription", authMiddleware)
	subscription.Get("/", subscriptionController.GetSubscription)
	subscription.Post("/upgrade", subscriptionController.Upgrade)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg)
	app.Get("/api/progress", authMiddleware, progressController.GetProgress)
	app.Get("/api/progress/overview", authMiddleware, progressController.GetProgressOverview)
}
