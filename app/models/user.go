package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_HOMEOWNER  = "homeowner"
	ROLE_CONTRACTOR = "contractor"
	ROLE_ADMIN      = "admin"

	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
	STATUS_DISABLED = "disabled"
)

type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email          string         `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	Password       string         `gorm:"type:text" json:"-"`
	Role           string         `gorm:"type:varchar(50);default:'homeowner';index" json:"role" validate:"oneof=homeowner contractor admin"`
	Status         string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active inactive disabled"`
	Provider       string         `gorm:"type:varchar(50);default:null" json:"-"`
	ProviderUserID string         `gorm:"type:varchar(191);default:null;index" json:"-"`
	Phone          string         `gorm:"type:varchar(30);default:null" json:"phone" validate:"max=30"`
	CompanyName    string         `gorm:"type:varchar(200);default:null" json:"company_name" validate:"max=200"`
	IPv4           string         `gorm:"type:varchar(15);default:null" json:"-"`
	LastLoginAt    *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func CreateUser(name string, email string, password string, role string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     role,
		Status:   STATUS_ACTIVE,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

// FindOrCreateFromProvider lazily creates a local profile for an identity
// returned by the external auth provider. Existing profiles are matched by
// provider user id first, then by email.
func FindOrCreateFromProvider(db *gorm.DB, provider, providerUserID, email, name string) (*User, error) {
	var user User
	err := db.Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&user).Error
	if err == nil {
		return &user, nil
	}

	err = db.Where("email = ?", email).First(&user).Error
	if err == nil {
		user.Provider = provider
		user.ProviderUserID = providerUserID
		if saveErr := db.Save(&user).Error; saveErr != nil {
			return nil, saveErr
		}
		return &user, nil
	}

	user = User{
		Name:           name,
		Email:          email,
		Role:           ROLE_HOMEOWNER,
		Status:         STATUS_ACTIVE,
		Provider:       provider,
		ProviderUserID: providerUserID,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// IsHomeowner reports whether the user can submit leads
func (u *User) IsHomeowner() bool {
	return u.Role == ROLE_HOMEOWNER
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
