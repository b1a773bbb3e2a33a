package models

import "time"

// CategorySubscription is the legacy per-category entitlement model: one row
// per (contractor, trade category) billed separately. Newer accounts use a
// single tier-level ContractorSubscription instead; the entitlement resolver
// reconciles whichever representation is present.
type CategorySubscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index:idx_category_subscriptions_user_category,priority:1" json:"user_id"`
	Category             string     `gorm:"type:varchar(100);not null;index:idx_category_subscriptions_user_category,priority:2" json:"category"`
	MonthlyPrice         float64    `gorm:"not null;default:0" json:"monthly_price"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_category_subscriptions_stripe_subid" json:"stripe_subscription_id"`
	CurrentPeriodStart   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	NextBillingDate      *time.Time `gorm:"type:timestamp;default:null" json:"next_billing_date,omitempty"`
	LeadsThisMonth       int        `gorm:"not null;default:0" json:"leads_this_month"`
	CanClaimLeads        bool       `gorm:"default:true" json:"can_claim_leads"`
	CanViewLeads         bool       `gorm:"default:true" json:"can_view_leads"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
