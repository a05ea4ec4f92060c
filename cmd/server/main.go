package main

import (
	"backend-clinic/internal/config"
	"backend-clinic/internal/http/handler"
	"backend-clinic/internal/http/middleware"
	"log"
	"os"
	"runtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: true,
	})

	config.LoadEnv()
	config.InitRedis()
	config.InitDB()
	defer config.CloseDB()

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Clinic queue API running",
		})
	})

	app.Post("/api/login", handler.Login)

	// Public live board (polled ~3s, no auth)
	app.Get("/api/doctors/live", handler.GetDoctorsLive)
	app.Get("/api/doctors/:doctorId/now", handler.GetDoctorNow)
	app.Get("/api/doctors/:id", handler.GetDoctorByID)

	// Base API (login required)
	api := app.Group("/api", middleware.JWTAuth())

	// Auth
	api.Post("/logout", handler.Logout)

	// Queue reads + intake (any logged-in role)
	api.Post("/queue/take", handler.TakeToken)
	api.Get("/queue/stats", middleware.RoleAuth("doctor"), handler.GetQueueStats)
	api.Get("/queue/:doctorId", handler.GetQueue)

	// ===== DOCTOR ROUTES =====
	api.Put("/queue/call-next", middleware.RoleAuth("doctor"), handler.CallNextQueue)
	api.Put("/queue/status", middleware.RoleAuth("doctor"), handler.UpdateQueueStatus)
	api.Put("/queue/priority", middleware.RoleAuth("doctor"), handler.TogglePriority)
	api.Put("/queue/control", middleware.RoleAuth("doctor"), handler.QueueControl)
	api.Post("/doctors/profile", middleware.RoleAuth("doctor"), handler.UpsertDoctorProfile)

	addr := os.Getenv("APP_HOST") + ":" + os.Getenv("APP_PORT")
	log.Println("Server listening on", addr)
	log.Fatal(app.Listen(addr))
}
