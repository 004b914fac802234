package repositories

import "retailorders/internal/models"

// ContactRepository defines data access for delivery contacts. Every method
// is scoped to the owning user.
type ContactRepository interface {
	ListByUser(userID uint) ([]models.Contact, error)
	Create(contact *models.Contact) error
	GetForUser(id, userID uint) (*models.Contact, error)
	Update(contact *models.Contact) error
	DeleteForUser(userID uint, ids []uint) (int64, error)
}
