package repository

import (
	"github.com/renolink/RenoLink/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
}

// LeadRepository defines the interface for lead-related database operations
type LeadRepository interface {
	Create(lead *models.Lead) error
	GetByID(id uint) (*models.Lead, error)
	GetOpenLeads(offset, limit int) ([]models.Lead, error)
	GetOpenLeadsByCategories(categories []string, offset, limit int) ([]models.Lead, error)
	GetByHomeownerID(homeownerID uint, offset, limit int) ([]models.Lead, error)
	GetByContractorID(contractorID uint, offset, limit int) ([]models.Lead, error)
	AssignContractor(leadID, contractorID uint) error
	Update(lead *models.Lead) error
	Count() (int64, error)
	CountOpen() (int64, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Notification, error)
	CountUnreadByUserID(userID uint) (int64, error)
	MarkAsRead(id, userID uint) error
	MarkAllAsRead(userID uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Lead         LeadRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Lead:         NewLeadRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
