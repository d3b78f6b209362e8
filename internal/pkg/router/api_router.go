package router

import (
	"github.com/revenuefox/revenuefox/app/controllers"
	"github.com/revenuefox/revenuefox/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	v1 := api.Group("/v1", middleware.RequireAPISessionAuth)
	v1.Get("/integrations/status", controllers.HandleAPIIntegrationStatus)
	v1.Get("/integrations/:provider", controllers.HandleAPIIntegrationRevenue)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
