package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/renolink/RenoLink/app/repository"
	"github.com/renolink/RenoLink/internal/pkg/usercontext"
)

// HandleNotificationList returns the caller's notifications, newest first.
func HandleNotificationList(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 50

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	notifications, err := repo.GetByUserID(userCtx.UserID, (page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "notification_list_failed"})
	}
	unread, _ := repo.CountUnreadByUserID(userCtx.UserID)

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread":        unread,
		"page":          page,
	})
}

// HandleNotificationMarkRead marks a single notification as read. Ownership
// is enforced in the query, a foreign id yields not found.
func HandleNotificationMarkRead(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_notification_id"})
	}

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkAsRead(uint(id), userCtx.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "mark_read_failed"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleNotificationMarkAllRead marks every unread notification as read.
func HandleNotificationMarkAllRead(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	repo := repository.GetGlobalFactory().GetNotificationRepository()
	if err := repo.MarkAllAsRead(userCtx.UserID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "mark_read_failed"})
	}

	return c.JSON(fiber.Map{"success": true})
}
