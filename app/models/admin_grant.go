package models

import (
	"time"

	"gorm.io/gorm"
)

// AdminGrant is the data-driven operator capability table. It replaces a
// hardcoded admin email allowlist so grants can be managed and audited at
// runtime.
type AdminGrant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	GrantedBy uint      `gorm:"not null" json:"granted_by"`
	Note      string    `gorm:"type:varchar(255)" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// HasAdminGrant reports whether a user holds operator capabilities, either
// through the admin role or an explicit grant row.
func HasAdminGrant(db *gorm.DB, userID uint) bool {
	var user User
	if err := db.First(&user, userID).Error; err == nil && user.Role == ROLE_ADMIN {
		return true
	}

	var count int64
	if err := db.Model(&AdminGrant{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
