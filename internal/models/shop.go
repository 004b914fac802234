package models

// Shop is a partner storefront. Each shop-type user owns at most one.
type Shop struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"uniqueIndex;type:varchar(50)"`
	URL    string `json:"url,omitempty" gorm:"type:varchar(255)"`
	UserID *uint  `json:"-" gorm:"uniqueIndex"`
	State  bool   `json:"state" gorm:"default:true"`
}

// Category groups products. Its id comes from the partner feed.
type Category struct {
	ID    uint   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name  string `json:"name" gorm:"type:varchar(40)"`
	Shops []Shop `json:"-" gorm:"many2many:category_shops;"`
}
