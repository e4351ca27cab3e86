package model

import (
	"time"

	"github.com/google/uuid"
)

type SaleType string

const (
	SaleRetail    SaleType = "retail"
	SaleWholesale SaleType = "wholesale"
)

// Sale is the durable record of a completed checkout. Voiding never
// deletes the row: the flag flips, the reversal is expressed through new
// stock movements and shift adjustments, and the items stay untouched
// for audit.
type Sale struct {
	BaseModel
	CartID       uuid.UUID  `gorm:"type:uuid;not null" json:"cart_id"`
	Cart         *Cart      `json:"cart,omitempty"`
	ShiftID      *uuid.UUID `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	Shift        *Shift     `json:"shift,omitempty"`
	CustomerName string     `gorm:"type:varchar(200)" json:"customer_name"`
	SaleType     SaleType   `gorm:"type:varchar(10);default:'retail'" json:"sale_type"`

	// Amounts in cents
	TotalAmount    int64 `gorm:"not null" json:"total_amount"` // subtotal before tax/discount
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"`
	FinalAmount    int64 `gorm:"not null" json:"final_amount"`

	ReceiptNumber string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"receipt_number"`
	SaleDate      time.Time `gorm:"not null" json:"sale_date"`

	Voided         bool       `gorm:"default:false" json:"voided"`
	VoidReason     string     `gorm:"type:text" json:"void_reason,omitempty"`
	VoidedAt       *time.Time `json:"voided_at,omitempty"`
	VoidedByUserID *string    `gorm:"type:varchar(255)" json:"voided_by_user_id,omitempty"`
	VoidedByUser   *User      `gorm:"foreignKey:VoidedByUserID;references:ID" json:"voided_by_user,omitempty"`

	Items []SaleItem `json:"items,omitempty"`
}

// SaleItem is an immutable snapshot of one sold line. Voids do not touch
// these rows.
type SaleItem struct {
	BaseModel
	SaleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Discount  int64     `gorm:"default:0" json:"discount"`
}
