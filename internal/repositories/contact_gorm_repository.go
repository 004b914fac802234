package repositories

import (
	"errors"
	"fmt"

	"retailorders/internal/models"

	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

// ListByUser returns the contacts of a user.
func (r *GORMContactRepository) ListByUser(userID uint) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts of user %d: %w", userID, err)
	}
	return contacts, nil
}

// Create stores a new contact.
func (r *GORMContactRepository) Create(contact *models.Contact) error {
	if err := r.db.Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetForUser returns a contact only if it belongs to userID.
func (r *GORMContactRepository) GetForUser(id, userID uint) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact %d of user %d: %w", id, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get contact %d: %w", id, err)
	}
	return &contact, nil
}

// Update saves every field of an existing contact.
func (r *GORMContactRepository) Update(contact *models.Contact) error {
	res := r.db.Model(contact).
		Where("user_id = ?", contact.UserID).
		Select("City", "Street", "House", "Structure", "Building", "Apartment", "Phone").
		Updates(contact)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact %d: %w", contact.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact %d: %w", contact.ID, ErrNotFound)
	}
	return nil
}

// DeleteForUser deletes the listed contacts that belong to userID and
// returns how many rows were removed.
func (r *GORMContactRepository) DeleteForUser(userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Contact{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete contacts of user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
