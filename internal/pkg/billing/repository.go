package billing

import (
	"time"

	"github.com/renolink/RenoLink/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	UpsertContractorSubscription(sub *models.ContractorSubscription) error
	GetContractorSubscriptionByStripeID(stripeSubscriptionID string) (*models.ContractorSubscription, error)
	ListContractorSubscriptionsByUser(userID uint) ([]models.ContractorSubscription, error)
	SaveContractorSubscription(sub *models.ContractorSubscription) error
	GetCategorySubscriptionByStripeID(stripeSubscriptionID string) (*models.CategorySubscription, error)
	ListCategorySubscriptionsByUser(userID uint) ([]models.CategorySubscription, error)
	SaveCategorySubscription(sub *models.CategorySubscription) error
	GetUserByID(userID uint) (*models.User, error)
	GetUserByStripeCustomerID(stripeCustomerID string) (*models.User, error)
	TransactionExists(stripeInvoiceID, status string) (bool, error)
	CreateTransaction(txn *models.Transaction) error
	CreateNotification(notification *models.Notification) error
	ListActiveTierQuotas() ([]models.TierQuota, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) UpsertContractorSubscription(sub *models.ContractorSubscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "stripe_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"tier",
			"status",
			"stripe_customer_id",
			"billing_interval",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"canceled_at",
			"can_claim_leads",
			"can_view_leads",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).
		First(sub).Error
}

func (r *gormRepository) GetContractorSubscriptionByStripeID(stripeSubscriptionID string) (*models.ContractorSubscription, error) {
	var sub models.ContractorSubscription
	err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListContractorSubscriptionsByUser(userID uint) ([]models.ContractorSubscription, error) {
	var subs []models.ContractorSubscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (r *gormRepository) SaveContractorSubscription(sub *models.ContractorSubscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) GetCategorySubscriptionByStripeID(stripeSubscriptionID string) (*models.CategorySubscription, error) {
	var sub models.CategorySubscription
	err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) ListCategorySubscriptionsByUser(userID uint) ([]models.CategorySubscription, error) {
	var subs []models.CategorySubscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (r *gormRepository) SaveCategorySubscription(sub *models.CategorySubscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) GetUserByStripeCustomerID(stripeCustomerID string) (*models.User, error) {
	var sub models.ContractorSubscription
	err := r.db.Where("stripe_customer_id = ?", stripeCustomerID).
		Order("updated_at DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return r.GetUserByID(sub.UserID)
}

func (r *gormRepository) TransactionExists(stripeInvoiceID, status string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("stripe_invoice_id = ? AND status = ?", stripeInvoiceID, status).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) CreateTransaction(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

func (r *gormRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *gormRepository) ListActiveTierQuotas() ([]models.TierQuota, error) {
	var quotas []models.TierQuota
	err := r.db.Where("is_active = ?", true).Find(&quotas).Error
	return quotas, err
}
