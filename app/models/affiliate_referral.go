package models

import "time"

// AffiliateReferral links a submitted lead to the affiliate code it came in
// with. Created best-effort after lead persistence; a failed insert is logged
// and never undoes the lead.
type AffiliateReferral struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LeadID    uint      `gorm:"not null;index" json:"lead_id"`
	Code      string    `gorm:"type:varchar(100);not null;index" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
