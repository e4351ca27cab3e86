package model

import "github.com/google/uuid"

type CartStatus string

const (
	CartOpen   CartStatus = "open"
	CartHeld   CartStatus = "held"
	CartClosed CartStatus = "closed"
	CartVoided CartStatus = "voided"
)

// Cart groups the line items of a checkout. A held cart is a parked
// order: no sale exists and no stock has moved yet. Held carts must be
// completed or voided before the cashier's shift can close.
type Cart struct {
	BaseModel
	CashierID    *string    `gorm:"type:varchar(255);index" json:"cashier_id,omitempty"`
	Cashier      *User      `gorm:"foreignKey:CashierID;references:ID" json:"cashier,omitempty"`
	CustomerName string     `gorm:"type:varchar(200)" json:"customer_name"`
	Status       CartStatus `gorm:"type:varchar(10);default:'open'" json:"status"`
	VoidReason   string     `gorm:"type:text" json:"void_reason,omitempty"`

	Items []CartItem `json:"items,omitempty"`
}

type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	Product   *Product  `json:"product,omitempty" validate:"-"`
	Quantity  int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice int64     `gorm:"not null" json:"unit_price" validate:"gte=0"`
	Discount  int64     `gorm:"default:0" json:"discount"`
}
