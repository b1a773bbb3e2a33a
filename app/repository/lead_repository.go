package repository

import (
	"github.com/renolink/RenoLink/app/models"
	"gorm.io/gorm"
)

// leadRepository implements the LeadRepository interface
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository instance
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// Create creates a new lead in the database
func (r *leadRepository) Create(lead *models.Lead) error {
	return r.db.Create(lead).Error
}

// GetByID retrieves a lead by its ID
func (r *leadRepository) GetByID(id uint) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetOpenLeads retrieves published open leads, newest first
func (r *leadRepository) GetOpenLeads(offset, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Where("status = ? AND published = ?", models.LeadStatusOpen, true).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, err
}

// GetOpenLeadsByCategories retrieves open leads restricted to the given categories
func (r *leadRepository) GetOpenLeadsByCategories(categories []string, offset, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Where("status = ? AND published = ? AND category IN ?", models.LeadStatusOpen, true, categories).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, err
}

// GetByHomeownerID retrieves a homeowner's leads, newest first
func (r *leadRepository) GetByHomeownerID(homeownerID uint, offset, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Where("homeowner_id = ?", homeownerID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, err
}

// GetByContractorID retrieves leads claimed by a contractor
func (r *leadRepository) GetByContractorID(contractorID uint, offset, limit int) ([]models.Lead, error) {
	var leads []models.Lead
	err := r.db.Where("contractor_id = ?", contractorID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&leads).Error
	return leads, err
}

// AssignContractor claims an open lead for a contractor. The status guard in
// the WHERE clause makes concurrent claims lose cleanly.
func (r *leadRepository) AssignContractor(leadID, contractorID uint) error {
	result := r.db.Model(&models.Lead{}).
		Where("id = ? AND status = ?", leadID, models.LeadStatusOpen).
		Updates(map[string]interface{}{
			"contractor_id": contractorID,
			"status":        models.LeadStatusAssigned,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Update updates an existing lead
func (r *leadRepository) Update(lead *models.Lead) error {
	return r.db.Save(lead).Error
}

// Count returns the total number of leads
func (r *leadRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Lead{}).Count(&count).Error
	return count, err
}

// CountOpen returns the number of open published leads
func (r *leadRepository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&models.Lead{}).
		Where("status = ? AND published = ?", models.LeadStatusOpen, true).Count(&count).Error
	return count, err
}
