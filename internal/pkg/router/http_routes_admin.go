package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/renolink/RenoLink/app/controllers"
	"github.com/renolink/RenoLink/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/users", controllers.HandleAdminUserList)
	adminGroup.Get("/users/:id/entitlements", controllers.HandleAdminUserEntitlements)
	adminGroup.Post("/grants", controllers.HandleAdminGrantCreate)
}
