package model

import (
	"time"

	"github.com/google/uuid"
)

type BatchStatus string

const (
	BatchOrdered  BatchStatus = "ordered"
	BatchReceived BatchStatus = "received"
	BatchExpired  BatchStatus = "expired"
)

// Batch is one received lot of a product with its own quantity, cost
// basis and expiry date. Sales deplete batches oldest-expiry-first.
type Batch struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product     *Product  `json:"product,omitempty" validate:"-"`
	BatchNumber string    `gorm:"type:varchar(50);not null" json:"batch_number" validate:"required"`
	Quantity    int       `gorm:"not null" json:"quantity" validate:"gte=0"`

	// Cost price per unit in cents. Nil when the receiving workflow did
	// not record one; sales from such a batch still carry its cost basis
	// as nil in history.
	CostPrice *int64 `json:"cost_price,omitempty"`

	ExpiryDate   *time.Time  `gorm:"type:date;index" json:"expiry_date,omitempty"`
	PurchaseDate time.Time   `gorm:"type:date;not null" json:"purchase_date"`
	ReceivedDate *time.Time  `gorm:"type:date" json:"received_date,omitempty"`
	Status       BatchStatus `gorm:"type:varchar(20);default:'ordered'" json:"status"`

	SupplierName string `gorm:"type:varchar(200)" json:"supplier_name"`
}

// EligibleAt reports whether the batch may be depleted on the given day:
// received, stock remaining, and not past its expiry date. Expiry is
// checked against the date even when the status sweep has not run yet.
func (b *Batch) EligibleAt(today time.Time) bool {
	if b.Status != BatchReceived || b.Quantity <= 0 {
		return false
	}
	if b.ExpiryDate == nil {
		return true
	}
	return !b.ExpiryDate.Before(today)
}
