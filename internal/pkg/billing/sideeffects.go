package billing

import (
	"log"

	"github.com/renolink/RenoLink/app/models"
)

// EmailSender delivers a billing email. Wired to the SMTP mailer at startup;
// nil disables email delivery.
type EmailSender func(userID uint, subject, body string) error

// Dispatcher fires post-reconciliation side effects: notifications, emails,
// counters. Side effects are best-effort by contract; a failure here is
// logged and swallowed so the provider delivery is still acknowledged and
// never retried because a notification insert hiccuped.
type Dispatcher struct {
	repo      Repository
	sendEmail EmailSender
}

// NewDispatcher creates a dispatcher writing notifications through the repo.
func NewDispatcher(repo Repository) *Dispatcher {
	return &Dispatcher{repo: repo}
}

// SetEmailSender attaches an email delivery hook.
func (d *Dispatcher) SetEmailSender(sender EmailSender) {
	d.sendEmail = sender
}

// Notify creates an in-app notification. Never returns an error.
func (d *Dispatcher) Notify(userID uint, notificationType, title, message, referenceType, referenceID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Billing] notification side effect panicked: %v", r)
		}
	}()

	if userID == 0 {
		return
	}
	notification := &models.Notification{
		UserID:        userID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
	}
	if err := d.repo.CreateNotification(notification); err != nil {
		log.Printf("[Billing] failed to create notification for user %d: %v", userID, err)
	}
}

// Email sends a billing email in the background. Never blocks, never fails
// the caller.
func (d *Dispatcher) Email(userID uint, subject, body string) {
	if d.sendEmail == nil {
		return
	}
	d.RunAsync("email:"+subject, func() error {
		return d.sendEmail(userID, subject, body)
	})
}

// RunAsync runs a named side effect in a goroutine with panic isolation.
func (d *Dispatcher) RunAsync(name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Billing] side effect %s panicked: %v", name, r)
			}
		}()
		if err := fn(); err != nil {
			log.Printf("[Billing] side effect %s failed: %v", name, err)
		}
	}()
}
