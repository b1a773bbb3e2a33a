package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	LeadStatusOpen     = "open"
	LeadStatusAssigned = "assigned"
	LeadStatusClosed   = "closed"
)

// Lead is a homeowner's project request. Created only after the intake
// guardrail passes; claim/assignment flows mutate status downstream.
type Lead struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	HomeownerID   uint           `gorm:"not null;index" json:"homeowner_id"`
	Homeowner     User           `gorm:"foreignKey:HomeownerID" json:"homeowner,omitempty"`
	PostalCode    string         `gorm:"type:varchar(10);not null;index" json:"postal_code"`
	Category      string         `gorm:"type:varchar(100);not null;index" json:"category"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Budget        string         `gorm:"type:varchar(50)" json:"budget"`
	Status        string         `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Published     bool           `gorm:"default:true;index" json:"published"`
	PhotosJSON    string         `gorm:"type:longtext" json:"photos_json"`
	Estimate      string         `gorm:"type:varchar(50)" json:"estimate"`
	AffiliateCode string         `gorm:"type:varchar(100)" json:"affiliate_code"`
	ContractorID  *uint          `gorm:"default:null;index" json:"contractor_id,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
