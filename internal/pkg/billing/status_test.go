package billing

import (
	"testing"

	"github.com/renolink/RenoLink/app/models"
	"github.com/stripe/stripe-go/v76"
)

func TestMapStripeStatus(t *testing.T) {
	tests := []struct {
		in   stripe.SubscriptionStatus
		want string
	}{
		{in: stripe.SubscriptionStatusActive, want: models.SubscriptionStatusActive},
		{in: stripe.SubscriptionStatusTrialing, want: models.SubscriptionStatusTrialing},
		{in: stripe.SubscriptionStatusPastDue, want: models.SubscriptionStatusPastDue},
		{in: stripe.SubscriptionStatusUnpaid, want: models.SubscriptionStatusPastDue},
		{in: stripe.SubscriptionStatusCanceled, want: models.SubscriptionStatusCanceled},
		{in: stripe.SubscriptionStatusIncompleteExpired, want: models.SubscriptionStatusCanceled},
		{in: stripe.SubscriptionStatus("something_new"), want: models.SubscriptionStatusPastDue},
	}

	for _, tt := range tests {
		if got := MapStripeStatus(tt.in); got != tt.want {
			t.Fatalf("MapStripeStatus(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	if !isEntitlingStatus("active") || !isEntitlingStatus(" Trialing ") {
		t.Fatalf("active and trialing must entitle")
	}
	if isEntitlingStatus("past_due") || isEntitlingStatus("canceled") || isEntitlingStatus("") {
		t.Fatalf("non-live statuses must not entitle")
	}
}

func TestNormalizeInterval(t *testing.T) {
	if got := normalizeInterval("MONTH"); got != models.BillingIntervalMonth {
		t.Fatalf("normalizeInterval(MONTH) = %s", got)
	}
	if got := normalizeInterval("weekly"); got != models.BillingIntervalUnknown {
		t.Fatalf("unexpected interval must normalize to unknown, got %s", got)
	}
}
