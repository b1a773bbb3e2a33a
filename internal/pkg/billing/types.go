package billing

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	CorrelationID   string
}

// Provider identifiers stored on webhook events and subscriptions.
const (
	ProviderStripe = "stripe"
)

// Stripe event types consumed by the state machine. Unknown types are
// acknowledged and logged, never rejected.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventInvoiceFailed       = "invoice.payment_failed"
	EventTrialWillEnd        = "customer.subscription.trial_will_end"
)
