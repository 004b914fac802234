package models

import "time"

// ConfirmEmailToken proves ownership of the email address given at
// registration. It is deleted once consumed.
type ConfirmEmailToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	User      *User  `gorm:"constraint:OnDelete:CASCADE"`
	Key       string `gorm:"uniqueIndex;type:varchar(64)"`
	CreatedAt time.Time
}

// AuthToken is the per-user login token. Logging in again reuses it.
type AuthToken struct {
	Key       string `gorm:"primaryKey;type:varchar(64)"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	User      *User  `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// PasswordResetToken authorises a single password change.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	Key       string    `gorm:"uniqueIndex;type:varchar(64)"`
	CreatedAt time.Time `gorm:"index"`
}
