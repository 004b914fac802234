package models

// Product is the shop-independent catalog entry.
type Product struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"type:varchar(80);uniqueIndex:idx_product_name_category"`
	CategoryID uint      `json:"-" gorm:"uniqueIndex:idx_product_name_category"`
	Category   *Category `json:"category,omitempty"`
}

// ProductInfo holds a shop's price and stock for a product.
type ProductInfo struct {
	ID                uint               `json:"id" gorm:"primaryKey"`
	ProductID         uint               `json:"-" gorm:"uniqueIndex:idx_product_info_unique"`
	Product           *Product           `json:"product,omitempty"`
	ShopID            uint               `json:"-" gorm:"uniqueIndex:idx_product_info_unique"`
	Shop              *Shop              `json:"shop,omitempty"`
	ExternalID        uint               `json:"external_id" gorm:"uniqueIndex:idx_product_info_unique"`
	Model             string             `json:"model" gorm:"type:varchar(80)"`
	Quantity          uint               `json:"quantity"`
	Price             uint               `json:"price"`
	PriceRRC          uint               `json:"price_rrc"`
	ProductParameters []ProductParameter `json:"product_parameters" gorm:"constraint:OnDelete:CASCADE"`
}

// Parameter is a named product characteristic, e.g. "Цвет".
type Parameter struct {
	ID   uint   `json:"-" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;type:varchar(40)"`
}

// ProductParameter is the value of a parameter for one ProductInfo.
type ProductParameter struct {
	ID            uint       `json:"-" gorm:"primaryKey"`
	ProductInfoID uint       `json:"-" gorm:"uniqueIndex:idx_product_parameter_unique"`
	ParameterID   uint       `json:"-" gorm:"uniqueIndex:idx_product_parameter_unique"`
	Parameter     *Parameter `json:"parameter,omitempty"`
	Value         string     `json:"value" gorm:"type:varchar(100)"`
}
