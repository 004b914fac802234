package models

import "time"

// UserType distinguishes buyers from partner shops.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeShop     UserType = "shop"
)

// User represents a registered account. Accounts stay inactive until the
// email address is confirmed.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Email           string    `json:"email" gorm:"uniqueIndex;type:varchar(254)" validate:"required,email,max=254"`
	Password        string    `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	FirstName       string    `json:"first_name" gorm:"type:varchar(150)" validate:"max=150"`
	LastName        string    `json:"last_name" gorm:"type:varchar(150)" validate:"max=150"`
	Company         string    `json:"company" gorm:"type:varchar(40)" validate:"max=40"`
	Position        string    `json:"position" gorm:"type:varchar(40)" validate:"max=40"`
	Type            UserType  `json:"type" gorm:"type:varchar(10)" validate:"omitempty,oneof=customer shop"`
	IsActive        bool      `json:"is_active" gorm:"default:false"`
	Avatar          string    `json:"avatar" gorm:"type:varchar(255)"`
	AvatarThumbnail string    `json:"avatar_thumbnail" gorm:"type:varchar(255)"`
	Contacts        []Contact `json:"contacts" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// IsShop reports whether the user is a partner shop.
func (u *User) IsShop() bool {
	return u.Type == UserTypeShop
}

// Contact is a delivery address owned by a user.
type Contact struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserID    uint   `json:"-" gorm:"index;not null"`
	City      string `json:"city" gorm:"type:varchar(50)" validate:"required,max=50"`
	Street    string `json:"street" gorm:"type:varchar(100)" validate:"required,max=100"`
	House     string `json:"house" gorm:"type:varchar(15)" validate:"max=15"`
	Structure string `json:"structure" gorm:"type:varchar(15)" validate:"max=15"`
	Building  string `json:"building" gorm:"type:varchar(15)" validate:"max=15"`
	Apartment string `json:"apartment" gorm:"type:varchar(15)" validate:"max=15"`
	Phone     string `json:"phone" gorm:"type:varchar(20)" validate:"required,max=20"`
}
