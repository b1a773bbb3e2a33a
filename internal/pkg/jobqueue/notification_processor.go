package jobqueue

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/renolink/RenoLink/app/models"
	"github.com/renolink/RenoLink/internal/pkg/database"
	"github.com/renolink/RenoLink/internal/pkg/mail"
)

// processNotificationEmailJob delivers a single notification email. The
// in-app notification row already exists when this job runs; the email is
// best-effort and respects the user's email preference.
func (q *Queue) processNotificationEmailJob(job *Job) error {
	payload, err := NotificationEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notification email payload: %w", err)
	}

	db := database.GetDB()

	var user models.User
	if err := db.First(&user, payload.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// User deleted since the job was enqueued; nothing to deliver
			log.Warnf("[JobQueue] Skipping email for missing user %d", payload.UserID)
			return nil
		}
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}


	settings, err := models.GetOrCreateUserSettings(db, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load settings for user %d: %w", user.ID, err)
	}
	if !settings.EmailNotifications {
		log.Debugf("[JobQueue] Email notifications disabled for user %d, skipping", user.ID)
		return nil
	}

	to := payload.Email
	if to == "" {
		to = user.Email
	}
	if to == "" {
		log.Warnf("[JobQueue] No email address for user %d, skipping", user.ID)
		return nil
	}

	if err := mail.SendMail(to, payload.Subject, payload.Body); err != nil {
		return fmt.Errorf("failed to send notification email to user %d: %w", user.ID, err)
	}

	return nil
}
