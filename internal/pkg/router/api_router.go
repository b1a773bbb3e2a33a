package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/renolink/RenoLink/internal/api/v1"
	"github.com/renolink/RenoLink/internal/pkg/middleware"
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
	v1 := api.Group("/v1")
	apiServer := apiv1.NewAPIServer()

	v1.Get("/ping", apiServer.GetPing)
	v1.Get("/stats", apiServer.GetStats)

	// Session-authenticated routes
	v1.Get("/me", middleware.RequireAPISessionAuth, apiServer.GetUserProfile)
	v1.Get("/entitlements", middleware.RequireAPISessionAuth, apiServer.GetEntitlements)
	v1.Post("/leads", middleware.RequireAPISessionAuth, apiServer.PostLead)
	v1.Get("/leads", middleware.RequireAPISessionAuth, apiServer.GetLeads)
	v1.Get("/leads/mine", middleware.RequireAPISessionAuth, apiServer.GetMyLeads)
	v1.Get("/notifications", middleware.RequireAPISessionAuth, apiServer.GetNotifications)
	v1.Post("/notifications/:id/read", middleware.RequireAPISessionAuth, apiServer.PostNotificationRead)
	v1.Post("/notifications/read-all", middleware.RequireAPISessionAuth, apiServer.PostNotificationsReadAll)

	// API key authenticated variant for integrations
	keyed := v1.Group("/key", middleware.APIKeyAuthMiddleware())
	keyed.Get("/me", apiServer.GetUserProfile)
	keyed.Get("/entitlements", apiServer.GetEntitlements)
	keyed.Get("/leads", apiServer.GetLeads)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
