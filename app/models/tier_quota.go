package models

import (
	"time"

	"gorm.io/gorm"
)

// TierQuota is the data-driven tier configuration: category quota, price and
// feature list per subscription tier. The numbers live here instead of in
// code so product can change them without a redeploy.
type TierQuota struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Tier          string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"tier"`
	CategoryLimit int       `gorm:"not null;default:0" json:"category_limit"`
	MonthlyPrice  float64   `gorm:"not null;default:0" json:"monthly_price"`
	FeaturesJSON  string    `gorm:"type:text" json:"features_json"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SeedDefaultTierQuotas inserts the default quota table if no rows exist yet.
func SeedDefaultTierQuotas(db *gorm.DB) error {
	var count int64
	if err := db.Model(&TierQuota{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []TierQuota{
		{Tier: TierNone, CategoryLimit: 0, MonthlyPrice: 0, FeaturesJSON: `[]`},
		{Tier: TierHandyman, CategoryLimit: 5, MonthlyPrice: 49, FeaturesJSON: `["browse_jobs","accept_jobs"]`},
		{Tier: TierRenovation, CategoryLimit: 10, MonthlyPrice: 99, FeaturesJSON: `["browse_jobs","accept_jobs","priority_support"]`},
		{Tier: TierGeneral, CategoryLimit: 20, MonthlyPrice: 199, FeaturesJSON: `["browse_jobs","accept_jobs","priority_support","featured_profile"]`},
	}
	return db.Create(&defaults).Error
}
