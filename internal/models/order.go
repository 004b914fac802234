package models

import "time"

// OrderState is the lifecycle position of an order.
type OrderState string

const (
	OrderStateBasket    OrderState = "basket"
	OrderStateNew       OrderState = "new"
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateAssembled OrderState = "assembled"
	OrderStateSent      OrderState = "sent"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCanceled  OrderState = "canceled"
)

// Order is a customer order. A user has at most one order in the basket
// state; it becomes "new" when placed.
type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserID       uint        `json:"-" gorm:"index;not null"`
	State        OrderState  `json:"state" gorm:"type:varchar(15);index"`
	ContactID    *uint       `json:"-"`
	Contact      *Contact    `json:"contact,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	OrderedItems []OrderItem `json:"ordered_items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalSum     uint        `json:"total_sum" gorm:"-"`
	CreatedAt    time.Time   `json:"dt"`
}

// OrderItem is a line of an order.
type OrderItem struct {
	ID            uint         `json:"id" gorm:"primaryKey"`
	OrderID       uint         `json:"-" gorm:"uniqueIndex:idx_order_item_unique"`
	ProductInfoID uint         `json:"product_info_id" gorm:"uniqueIndex:idx_order_item_unique"`
	ProductInfo   *ProductInfo `json:"product_info,omitempty"`
	Quantity      uint         `json:"quantity"`
	Sum           uint         `json:"sum" gorm:"-"`
}

// CalculateTotals fills Sum on every item and TotalSum on the order.
// Items must have ProductInfo loaded to contribute.
func (o *Order) CalculateTotals() {
	var total uint
	for i := range o.OrderedItems {
		item := &o.OrderedItems[i]
		item.Sum = 0
		if item.ProductInfo != nil {
			item.Sum = item.Quantity * item.ProductInfo.Price
		}
		total += item.Sum
	}
	o.TotalSum = total
}
