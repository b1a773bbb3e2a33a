package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/app/repository"
	"github.com/renolink/RenoLink/internal/pkg/billing"
	"github.com/renolink/RenoLink/internal/pkg/database"
	"github.com/renolink/RenoLink/internal/pkg/entitlements"
	"github.com/renolink/RenoLink/internal/pkg/usercontext"
)

// HandleGetUserAccount returns account information for the authenticated user.
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ent, err := billing.NewServiceFromDB(database.GetDB()).ResolveEntitlements(ctx, account.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to resolve entitlements"})
	}

	unread, _ := repository.GetGlobalFactory().GetNotificationRepository().CountUnreadByUserID(account.ID)

	return c.JSON(fiber.Map{
		"id":                   account.ID,
		"name":                 account.Name,
		"email":                account.Email,
		"role":                 account.Role,
		"status":               account.Status,
		"is_admin":             account.Role == models.ROLE_ADMIN,
		"created_at":           account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at":        formatTimePtr(account.LastLoginAt),
		"unread_notifications": unread,
		"entitlements":         entitlementsPayload(ent),
	})
}

// HandleGetEntitlements returns the caller's resolved capability set.
func HandleGetEntitlements(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ent, err := billing.NewServiceFromDB(database.GetDB()).ResolveEntitlements(ctx, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to resolve entitlements"})
	}

	return c.JSON(entitlementsPayload(ent))
}

// entitlementsPayload renders the capability set for API consumers. The
// unlimited sentinel is always rendered as the word, never the number.
func entitlementsPayload(ent entitlements.Entitlements) fiber.Map {
	return fiber.Map{
		"tier":                ent.Tier,
		"is_pro":              ent.IsPro,
		"category_limit":      entitlements.FormatCategoryLimit(ent.CategoryLimit),
		"selected_categories": ent.SelectedCategories,
		"can_browse_jobs":     ent.CanBrowseJobs,
		"can_accept_jobs":     ent.CanAcceptJobs,
		"can_pick_categories": ent.CanPickCategories,
		"can_view_all_leads":  ent.CanViewAllLeads,
		"features":            ent.Features,
	}
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
