package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/renolink/RenoLink/app/controllers"
)

// Pong is the health check response body
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the versioned API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetStats returns the public platform statistics.
func (s *APIServer) GetStats(c *fiber.Ctx) error {
	return controllers.HandleStats(c)
}

// GetUserProfile returns account information for the authenticated user.
// Security is enforced via session or API key middleware attached in the router.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

// GetEntitlements returns the caller's resolved capability set.
func (s *APIServer) GetEntitlements(c *fiber.Ctx) error {
	return controllers.HandleGetEntitlements(c)
}

// PostLead accepts a homeowner project request submission.
func (s *APIServer) PostLead(c *fiber.Ctx) error {
	return controllers.HandleLeadSubmit(c)
}

// GetLeads returns the open lead listing.
func (s *APIServer) GetLeads(c *fiber.Ctx) error {
	return controllers.HandleLeadList(c)
}

// GetMyLeads returns the caller's own submissions.
func (s *APIServer) GetMyLeads(c *fiber.Ctx) error {
	return controllers.HandleMyLeads(c)
}

// GetNotifications returns the caller's notification feed.
func (s *APIServer) GetNotifications(c *fiber.Ctx) error {
	return controllers.HandleNotificationList(c)
}

// PostNotificationRead marks one notification as read.
func (s *APIServer) PostNotificationRead(c *fiber.Ctx) error {
	return controllers.HandleNotificationMarkRead(c)
}

// PostNotificationsReadAll marks all notifications as read.
func (s *APIServer) PostNotificationsReadAll(c *fiber.Ctx) error {
	return controllers.HandleNotificationMarkAllRead(c)
}
