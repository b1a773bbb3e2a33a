package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NotificationTypeSubscription = "subscription"
	NotificationTypePayment      = "payment"
	NotificationTypeLead         = "lead"
	NotificationTypeSystem       = "system"
)

type Notification struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index" json:"user_id"`
	User          User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type          string         `gorm:"type:varchar(50)" json:"type" validate:"oneof=subscription payment lead system"`
	Title         string         `gorm:"type:varchar(200)" json:"title"`
	Message       string         `gorm:"type:text" json:"message"`
	IsRead        bool           `gorm:"default:false" json:"is_read"`
	ReferenceType string         `gorm:"type:varchar(50)" json:"reference_type"`
	ReferenceID   string         `gorm:"type:varchar(191)" json:"reference_id"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead marks a notification as read. The read flag is the only field
// ever mutated after creation.
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}

// CreateNotification creates a new notification for a user
func CreateNotification(db *gorm.DB, userID uint, notificationType, title, message, referenceType, referenceID string) error {
	notification := Notification{
		UserID:        userID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		IsRead:        false,
	}

	return db.Create(&notification).Error
}
