package models

import "time"

const (
	TransactionTypeSubscription = "subscription_payment"

	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is an immutable financial record created as a side effect of
// invoice events. The unique index on (stripe_invoice_id, status) is the
// redelivery guard: a second invoice.payment_succeeded for the same invoice
// cannot insert a second completed row. Never mutated after creation.
type Transaction struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"not null;index" json:"user_id"`
	Type                  string     `gorm:"type:varchar(50);not null;default:'subscription_payment'" json:"type"`
	Amount                float64    `gorm:"not null" json:"amount"`
	Currency              string     `gorm:"type:varchar(3);not null;default:'cad'" json:"currency"`
	Status                string     `gorm:"type:varchar(20);not null;index:ux_transactions_invoice_status,unique,priority:2" json:"status"`
	Category              string     `gorm:"type:varchar(100)" json:"category"`
	PeriodStart           *time.Time `gorm:"type:timestamp;default:null" json:"period_start,omitempty"`
	PeriodEnd             *time.Time `gorm:"type:timestamp;default:null" json:"period_end,omitempty"`
	StripeInvoiceID       string     `gorm:"type:varchar(191);not null;index:ux_transactions_invoice_status,unique,priority:1" json:"stripe_invoice_id"`
	StripeSubscriptionID  string     `gorm:"type:varchar(191);index" json:"stripe_subscription_id"`
	StripePaymentIntentID string     `gorm:"type:varchar(191)" json:"stripe_payment_intent_id"`
	CreatedAt             time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}
