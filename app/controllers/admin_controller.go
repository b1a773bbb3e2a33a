package controllers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/app/repository"
	"github.com/renolink/RenoLink/internal/pkg/billing"
	"github.com/renolink/RenoLink/internal/pkg/database"
	"github.com/renolink/RenoLink/internal/pkg/usercontext"
)

// requireAdminGrant resolves the caller and checks operator capability. It
// returns the caller's user id and false when access was denied and a
// response already written.
func requireAdminGrant(c *fiber.Ctx) (uint, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		_ = c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		return 0, false
	}
	if !models.HasAdminGrant(database.GetDB(), userCtx.UserID) {
		_ = c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
		return 0, false
	}
	return userCtx.UserID, true
}

// HandleAdminUserList returns a paginated user listing with an optional
// search query.
func HandleAdminUserList(c *fiber.Ctx) error {
	if _, ok := requireAdminGrant(c); !ok {
		return nil
	}

	repo := repository.GetGlobalFactory().GetUserRepository()

	if query := c.Query("q"); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user_search_failed"})
		}
		return c.JSON(fiber.Map{"users": users})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 50
	users, err := repo.List((page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user_list_failed"})
	}
	total, _ := repo.Count()

	return c.JSON(fiber.Map{"users": users, "page": page, "total": total})
}

// HandleAdminUserEntitlements is the support diagnostics view: the resolved
// capability set for any user plus the raw subscription state it came from.
func HandleAdminUserEntitlements(c *fiber.Ctx) error {
	if _, ok := requireAdminGrant(c); !ok {
		return nil
	}

	userID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_user_id"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := billing.NewServiceFromDB(database.GetDB())
	state, err := svc.SubscriberStateForUser(ctx, uint(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "state_lookup_failed"})
	}
	ent, err := svc.ResolveEntitlements(ctx, uint(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "entitlement_resolve_failed"})
	}

	return c.JSON(fiber.Map{
		"user_id": userID,
		"state": fiber.Map{
			"kind":        state.Kind,
			"tier":        state.Tier,
			"status":      state.Status,
			"categories":  state.Categories,
			"comp_access": state.CompAccess,
		},
		"entitlements": entitlementsPayload(ent),
	})
}

// HandleAdminGrantCreate grants operator capability to another user.
func HandleAdminGrantCreate(c *fiber.Ctx) error {
	grantedBy, ok := requireAdminGrant(c)
	if !ok {
		return nil
	}

	var req struct {
		UserID uint   `json:"user_id"`
		Note   string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}

	db := database.GetDB()
	grant := models.AdminGrant{UserID: req.UserID, GrantedBy: grantedBy, Note: req.Note}
	if err := db.Create(&grant).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "grant_failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "grant_id": grant.ID})
}
