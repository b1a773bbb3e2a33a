package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/renolink/RenoLink/internal/pkg/billing"
	"github.com/renolink/RenoLink/internal/pkg/database"
	"github.com/renolink/RenoLink/internal/pkg/env"
)

// HandleStripeWebhook receives Stripe webhook deliveries. The payload is
// persisted before any processing so a crash mid-apply leaves a row that a
// redelivery can pick up again. Only a bad signature is rejected outright.
func HandleStripeWebhook(c *fiber.Ctx) error {
	correlationID := uuid.NewString()
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	if secret == "" {
		// Without a secret no signature can be verified. Acknowledge so
		// Stripe stops retrying, but process nothing.
		log.Printf("[Billing] STRIPE_WEBHOOK_SECRET not set, acknowledging event without processing (correlation_id=%s)", correlationID)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "skipped": true})
	}

	event, err := billing.ParseWebhookEvent(rawBody, signature, secret)
	if err != nil {
		log.Printf("[Billing] webhook signature verification failed (correlation_id=%s): %v", correlationID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	svc := billing.NewServiceFromDB(database.GetDB())
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        billing.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
		CorrelationID:   correlationID,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	applyErr := svc.ApplyEvent(ctx, event)
	if err := svc.MarkWebhookProcessed(ctx, stored.ID, applyErr); err != nil {
		log.Printf("[Billing] failed to mark webhook %d processed (correlation_id=%s): %v", stored.ID, correlationID, err)
	}
	if applyErr != nil {
		log.Printf("[Billing] event %s (%s) failed (correlation_id=%s): %v", event.ID, event.Type, correlationID, applyErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
