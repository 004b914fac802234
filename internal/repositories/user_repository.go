package repositories

import "retailorders/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	CreateWithConfirmToken(user *models.User, token *models.ConfirmEmailToken) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetWithContacts(id uint) (*models.User, error)
	EmailTaken(email string, excludeID uint) (bool, error)
	UpdateFields(id uint, fields map[string]interface{}) error
}
