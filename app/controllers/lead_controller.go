package controllers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/renolink/RenoLink/app/repository"
	"github.com/renolink/RenoLink/internal/pkg/cache"
	"github.com/renolink/RenoLink/internal/pkg/database"
	"github.com/renolink/RenoLink/internal/pkg/env"
	"github.com/renolink/RenoLink/internal/pkg/hcaptcha"
	"github.com/renolink/RenoLink/internal/pkg/jobqueue"
	"github.com/renolink/RenoLink/internal/pkg/leadintake"
	"github.com/renolink/RenoLink/internal/pkg/usercontext"
)

var (
	leadIntakeOnce sync.Once
	leadIntakeSvc  *leadintake.Service
)

// getLeadIntakeService builds the shared intake service. The rate limit
// window lives in Redis so counting survives restarts and multiple instances.
func getLeadIntakeService() *leadintake.Service {
	leadIntakeOnce.Do(func() {
		store := leadintake.NewRedisWindowStore(cache.GetClient())
		leadIntakeSvc = leadintake.NewService(leadintake.NewRepository(database.GetDB()), store)
		if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
			leadIntakeSvc.SetCaptchaVerifier(hcaptcha.Verify)
		}
	})
	return leadIntakeSvc
}

type leadSubmitRequest struct {
	PostalCode    string `json:"postalCode" form:"postalCode"`
	ProjectType   string `json:"projectType" form:"projectType"`
	Title         string `json:"title" form:"title"`
	Description   string `json:"description" form:"description"`
	Budget        string `json:"budget" form:"budget"`
	PhotosJSON    string `json:"photos" form:"photos"`
	Website       string `json:"website" form:"website"`
	CaptchaToken  string `json:"captchaToken" form:"h-captcha-response"`
	AffiliateCode string `json:"affiliateCode" form:"affiliateCode"`
}

// HandleLeadSubmit accepts a homeowner project request. The caller must be
// authenticated; the guardrail pipeline decides everything after that.
func HandleLeadSubmit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "authentication required",
		})
	}

	var req leadSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "account not found, please sign in again",
		})
	}

	ipv4, ipv6 := GetClientIP(c)
	sourceID := ipv4
	if sourceID == "" {
		sourceID = ipv6
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := getLeadIntakeService().Submit(ctx, leadintake.SubmitInput{
		PostalCode:    req.PostalCode,
		ProjectType:   req.ProjectType,
		Title:         req.Title,
		Description:   req.Description,
		Budget:        req.Budget,
		PhotosJSON:    req.PhotosJSON,
		Website:       req.Website,
		CaptchaToken:  req.CaptchaToken,
		AffiliateCode: req.AffiliateCode,
	}, leadintake.Identity{
		Email: user.Email,
		Name:  user.Name,
		Phone: user.Phone,
	}, sourceID)
	if err != nil {
		var blocked *leadintake.BlockedError
		if errors.As(err, &blocked) {
			return c.Status(blockedStatusCode(blocked.Reason)).JSON(blockedResponse(blocked))
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	// Fan the lead out to matching contractors in the background
	matchPayload := jobqueue.LeadMatchJobPayload{
		LeadID:     result.Lead.ID,
		Category:   result.Lead.Category,
		PostalCode: result.Lead.PostalCode,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeLeadMatch, matchPayload.ToMap()); err != nil {
		log.Printf("[LeadIntake] Failed to enqueue lead match job for lead %d: %v", result.Lead.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"leadId":   result.Lead.ID,
		"estimate": result.Estimate,
	})
}

func blockedStatusCode(reason string) int {
	switch reason {
	case leadintake.BlockRateLimit:
		return fiber.StatusTooManyRequests
	case leadintake.BlockInvalidRole:
		return fiber.StatusForbidden
	default:
		return fiber.StatusBadRequest
	}
}

func blockedResponse(blocked *leadintake.BlockedError) fiber.Map {
	resp := fiber.Map{
		"success": false,
		"blocked": true,
		"reason":  blocked.Reason,
	}
	if len(blocked.FieldErrors) > 0 {
		resp["fieldErrors"] = blocked.FieldErrors
	}
	return resp
}

// HandleLeadList returns open leads for the browse view. Contractors on a
// category plan only see their categories.
func HandleLeadList(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 25

	repo := repository.GetGlobalFactory().GetLeadRepository()
	leads, err := repo.GetOpenLeads((page-1)*perPage, perPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lead_list_failed"})
	}
	total, _ := repo.CountOpen()

	return c.JSON(fiber.Map{
		"leads": leads,
		"page":  page,
		"total": total,
	})
}

// HandleMyLeads returns the authenticated homeowner's own submissions.
func HandleMyLeads(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}

	leads, err := repository.GetGlobalFactory().GetLeadRepository().GetByHomeownerID(userCtx.UserID, 0, 100)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lead_list_failed"})
	}
	return c.JSON(fiber.Map{"leads": leads})
}
