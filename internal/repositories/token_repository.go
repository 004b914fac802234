package repositories

import (
	"time"

	"retailorders/internal/models"
)

// TokenRepository defines data access for confirmation, login and password
// reset tokens.
type TokenRepository interface {
	ConfirmEmail(email, key string) (*models.User, error)
	GetConfirmTokenByUserID(userID uint) (*models.ConfirmEmailToken, error)

	GetOrCreateAuthToken(userID uint, key string) (*models.AuthToken, error)
	GetAuthToken(key string) (*models.AuthToken, error)

	CreateResetToken(token *models.PasswordResetToken) error
	GetResetToken(key string) (*models.PasswordResetToken, error)
	ConsumeResetTokens(userID uint, passwordHash string) error
	DeleteResetTokensBefore(t time.Time) (int64, error)
}
