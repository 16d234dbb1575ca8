package FiberConfig

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"AgentTask/Controllers"
	"AgentTask/TaskImages"
	"AgentTask/middleware"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Agent accounts
	api.Post("/agents/register", Controllers.RegisterAgent)
	api.Get("/agents", Controllers.GetAllAgents)
	api.Patch("/agents/:agent_id/status", Controllers.UpdateAgentStatus)
	api.Delete("/agents/:agent_id", Controllers.DeleteAgent)

	// Agent session flow
	api.Post("/agents/login", Controllers.Login)
	api.Get("/agents/validate-token", Controllers.ValidateToken)
	api.Post("/agents/:agent_id/logout", middleware.VerifyAgent(), Controllers.Logout)

	// Task flow
	api.Get("/agents/:agent_id/current-task", middleware.VerifyAgent(), Controllers.GetCurrentTask)
	api.Post("/agents/:agent_id/submit", middleware.VerifyAgent(), Controllers.SubmitTask)

	// Admin console
	admin := api.Group("/admin")
	admin.Get("/agent-password/:agent_id", Controllers.GetAgentPassword)
	admin.Post("/reset-password/:agent_id", Controllers.ResetAgentPassword)
	admin.Post("/force-logout/:agent_id", Controllers.ForceLogout)
	admin.Get("/session-report", Controllers.SessionReport)
	admin.Get("/statistics", Controllers.GetStatistics)
	admin.Post("/upload-tasks", Controllers.UploadTasks)
	admin.Get("/export-excel", Controllers.ExportExcel)

	// Request log viewer
	admin.Get("/logs", Controllers.GetLogs)
	admin.Get("/logs/stats", Controllers.GetLogStats)
}

// NewApp assembles the Fiber app with the middleware stack and route table.
// Split out from FiberConfig so tests can drive the real app.
func NewApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "database": "connected"})
	})

	// Task images, partitioned by agent folder
	app.Static("/static/task_images", TaskImages.Root, fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	SetupRoutes(app)
	return app
}

func FiberConfig() {
	log.Println("Server Up...")
	app := NewApp()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Fatal(app.Listen(":" + port))
}
