package leadintake

import (
	"errors"
	"strings"

	"github.com/renolink/RenoLink/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the lead intake service.
type Repository interface {
	FindOrCreateHomeowner(email, name, phone string) (*models.User, error)
	CreateLead(lead *models.Lead) error
	CreateAffiliateReferral(ref *models.AffiliateReferral) error
	CreateNotification(notification *models.Notification) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a lead intake repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindOrCreateHomeowner(email, name, phone string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user = models.User{
		Name:   name,
		Email:  email,
		Phone:  strings.TrimSpace(phone),
		Role:   models.ROLE_HOMEOWNER,
		Status: models.STATUS_ACTIVE,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormRepository) CreateLead(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

func (r *gormRepository) CreateAffiliateReferral(ref *models.AffiliateReferral) error {
	return r.db.Create(ref).Error
}

func (r *gormRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}
