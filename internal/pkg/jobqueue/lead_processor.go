package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/internal/pkg/billing"
	"github.com/renolink/RenoLink/internal/pkg/database"
)

// processLeadMatchJob fans a freshly created lead out to contractors whose
// entitlements cover the lead's category. Each match gets an in-app
// notification plus a follow-up email job.
func (q *Queue) processLeadMatchJob(job *Job) error {
	payload, err := LeadMatchJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid lead match payload: %w", err)
	}

	db := database.GetDB()

	var lead models.Lead
	if err := db.First(&lead, payload.LeadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Warnf("[JobQueue] Lead %d no longer exists, skipping match", payload.LeadID)
			return nil
		}
		return fmt.Errorf("failed to load lead %d: %w", payload.LeadID, err)
	}
	if lead.Status != models.LeadStatusOpen || !lead.Published {
		log.Debugf("[JobQueue] Lead %d is not open/published anymore, skipping match", lead.ID)
		return nil
	}

	candidateIDs, err := matchCandidateContractors(db, lead.Category)
	if err != nil {
		return fmt.Errorf("failed to find contractors for lead %d: %w", lead.ID, err)
	}
	if len(candidateIDs) == 0 {
		log.Infof("[JobQueue] No contractor candidates for lead %d (category %s)", lead.ID, lead.Category)
		return nil
	}

	svc := billing.NewServiceFromDB(db)
	ctx := context.Background()
	notified := 0

	for _, userID := range candidateIDs {
		ent, err := svc.ResolveEntitlements(ctx, userID)
		if err != nil {
			log.Errorf("[JobQueue] Failed to resolve entitlements for user %d: %v", userID, err)
			continue
		}
		if !ent.CanBrowseJobs {
			continue
		}
		if !ent.CanViewAllLeads && !containsCategory(ent.SelectedCategories, lead.Category) {
			continue
		}

		title := fmt.Sprintf("New lead: %s", lead.Title)
		message := fmt.Sprintf("A new %s project in %s matches your subscription.", lead.Category, lead.PostalCode)
		notification := models.Notification{
			UserID:        userID,
			Type:          models.NotificationTypeLead,
			Title:         title,
			Message:       message,
			ReferenceType: "lead",
			ReferenceID:   fmt.Sprintf("%d", lead.ID),
		}
		if err := db.Create(&notification).Error; err != nil {
			log.Errorf("[JobQueue] Failed to create lead notification for user %d: %v", userID, err)
			continue
		}

		emailPayload := NotificationEmailJobPayload{
			NotificationID: notification.ID,
			UserID:         userID,
			Subject:        title,
			Body:           fmt.Sprintf("<p>%s</p><p>Log in to view the full request and get in touch with the homeowner.</p>", message),
		}
		if _, err := q.EnqueueJob(JobTypeNotificationEmail, emailPayload.ToMap()); err != nil {
			log.Errorf("[JobQueue] Failed to enqueue email job for user %d: %v", userID, err)
		}
		notified++
	}

	log.Infof("[JobQueue] Lead %d matched to %d contractors", lead.ID, notified)
	return nil
}

// matchCandidateContractors returns the distinct user IDs with any paying
// relationship that could cover the category: tier subscribers plus legacy
// per-category subscribers. Entitlement resolution filters the final set.
func matchCandidateContractors(db *gorm.DB, category string) ([]uint, error) {
	statuses := []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing, models.SubscriptionStatusPastDue}

	var tierUserIDs []uint
	if err := db.Model(&models.ContractorSubscription{}).
		Where("status IN ? AND tier <> ?", statuses, models.TierNone).
		Distinct().Pluck("user_id", &tierUserIDs).Error; err != nil {
		return nil, err
	}

	var categoryUserIDs []uint
	if err := db.Model(&models.CategorySubscription{}).
		Where("category = ? AND status IN ?", category, statuses).
		Distinct().Pluck("user_id", &categoryUserIDs).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(tierUserIDs)+len(categoryUserIDs))
	result := make([]uint, 0, len(tierUserIDs)+len(categoryUserIDs))
	for _, ids := range [][]uint{tierUserIDs, categoryUserIDs} {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}
	return result, nil
}

func containsCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}
