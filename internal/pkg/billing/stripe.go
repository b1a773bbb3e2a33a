package billing

import (
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ErrSignatureInvalid is returned when the Stripe-Signature header does not
// match the payload. The caller must answer 400 without touching any state.
var ErrSignatureInvalid = errors.New("webhook signature verification failed")

// ParseWebhookEvent verifies the provider signature and deserializes the raw
// payload into a typed event envelope. Pure validation and parsing, no side
// effects; the provider's own retry policy covers rejected deliveries.
func ParseWebhookEvent(payload []byte, signatureHeader, webhookSecret string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		return stripe.Event{}, ErrSignatureInvalid
	}
	return event, nil
}
