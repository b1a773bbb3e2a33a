package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/renolink/RenoLink/internal/pkg/statistics"
)

// HandleStats returns the public platform numbers. Values come from the
// Redis cache and are refreshed at most every five minutes.
func HandleStats(c *fiber.Ctx) error {
	stats := statistics.GetStatisticsData()

	return c.JSON(fiber.Map{
		"totalUsers": stats.TotalUsers,
		"totalLeads": stats.TotalLeads,
		"openLeads":  stats.OpenLeads,
		"todayLeads": stats.TodayLeads,
	})
}
