package models

import "time"

const (
	TierNone       = "none"
	TierHandyman   = "handyman"
	TierRenovation = "renovation"
	TierGeneral    = "general"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

const (
	BillingIntervalMonth   = "month"
	BillingIntervalYear    = "year"
	BillingIntervalUnknown = "unknown"
)

// ContractorSubscription mirrors the provider's tier-level subscription for a
// contractor. Each provider subscription id is a distinct logical
// subscription; a new checkout after cancellation creates a new row rather
// than reviving the canceled one. Rows are never hard-deleted, status carries
// the soft state.
type ContractorSubscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	Tier                 string     `gorm:"type:varchar(50);not null;default:'none';index" json:"tier"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	StripeCustomerID     string     `gorm:"type:varchar(191);index" json:"stripe_customer_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_contractor_subscriptions_stripe_subid" json:"stripe_subscription_id"`
	BillingInterval      string     `gorm:"type:varchar(16);not null;default:'unknown'" json:"billing_interval"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CanceledAt           *time.Time `gorm:"type:timestamp;default:null" json:"canceled_at,omitempty"`
	LeadsThisMonth       int        `gorm:"not null;default:0" json:"leads_this_month"`
	CanClaimLeads        bool       `gorm:"default:true" json:"can_claim_leads"`
	CanViewLeads         bool       `gorm:"default:true" json:"can_view_leads"`
	CompAccess           bool       `gorm:"default:false" json:"comp_access"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsCanceled reports whether the subscription reached its terminal state.
func (s *ContractorSubscription) IsCanceled() bool {
	return s.Status == SubscriptionStatusCanceled
}
