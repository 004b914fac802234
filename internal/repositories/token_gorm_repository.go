package repositories

import (
	"errors"
	"fmt"
	"time"

	"retailorders/internal/models"

	"gorm.io/gorm"
)

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{db: db}
}

// ConfirmEmail activates the user owning email if key matches one of their
// confirmation tokens, and deletes that token.
func (r *GORMTokenRepository) ConfirmEmail(email, key string) (*models.User, error) {
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var token models.ConfirmEmailToken
		err := tx.Joins("JOIN users ON users.id = confirm_email_tokens.user_id").
			Where("confirm_email_tokens.key = ? AND users.email = ?", key, email).
			First(&token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("confirmation token for %s: %w", email, ErrNotFound)
			}
			return fmt.Errorf("failed to find confirmation token: %w", err)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", token.UserID).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to activate user %d: %w", token.UserID, err)
		}
		if err := tx.Delete(&models.ConfirmEmailToken{}, token.ID).Error; err != nil {
			return fmt.Errorf("failed to delete confirmation token: %w", err)
		}
		if err := tx.First(&user, token.UserID).Error; err != nil {
			return fmt.Errorf("failed to reload user %d: %w", token.UserID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetConfirmTokenByUserID returns the newest confirmation token of a user.
func (r *GORMTokenRepository) GetConfirmTokenByUserID(userID uint) (*models.ConfirmEmailToken, error) {
	var token models.ConfirmEmailToken
	if err := r.db.Preload("User").Where("user_id = ?", userID).Order("id desc").First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("confirmation token for user %d: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get confirmation token for user %d: %w", userID, err)
	}
	return &token, nil
}

// GetOrCreateAuthToken returns the user's login token, creating it with key
// when none exists yet.
func (r *GORMTokenRepository) GetOrCreateAuthToken(userID uint, key string) (*models.AuthToken, error) {
	token := models.AuthToken{}
	err := r.db.Where(models.AuthToken{UserID: userID}).
		Attrs(models.AuthToken{Key: key}).
		FirstOrCreate(&token).Error
	if err != nil {
		// a concurrent login may have created it first
		if lookupErr := r.db.Where("user_id = ?", userID).First(&token).Error; lookupErr == nil {
			return &token, nil
		}
		return nil, fmt.Errorf("failed to get or create auth token for user %d: %w", userID, err)
	}
	return &token, nil
}

// GetAuthToken returns a login token with its user.
func (r *GORMTokenRepository) GetAuthToken(key string) (*models.AuthToken, error) {
	var token models.AuthToken
	if err := r.db.Preload("User").First(&token, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("auth token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get auth token: %w", err)
	}
	return &token, nil
}

// CreateResetToken stores a password reset token.
func (r *GORMTokenRepository) CreateResetToken(token *models.PasswordResetToken) error {
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}
	return nil
}

// GetResetToken returns a password reset token with its user.
func (r *GORMTokenRepository) GetResetToken(key string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	if err := r.db.Preload("User").First(&token, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reset token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}
	return &token, nil
}

// ConsumeResetTokens sets the new password hash and removes every reset
// token of the user.
func (r *GORMTokenRepository) ConsumeResetTokens(userID uint, passwordHash string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("password", passwordHash).Error; err != nil {
			return fmt.Errorf("failed to update password of user %d: %w", userID, err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete reset tokens of user %d: %w", userID, err)
		}
		return nil
	})
}

// DeleteResetTokensBefore removes reset tokens created before t.
func (r *GORMTokenRepository) DeleteResetTokensBefore(t time.Time) (int64, error) {
	res := r.db.Where("created_at < ?", t).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge reset tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
