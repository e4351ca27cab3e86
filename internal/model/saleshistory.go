package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesHistory records one batch-level deduction of a sale: quantity,
// selling price, and the cost basis copied from the batch at the moment
// of sale. Profit reporting reads these rows instead of current product
// prices, and voids use them to restore exact batch quantities.
type SalesHistory struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`

	// Nil when stock was deducted through the untracked fallback path.
	BatchID *uuid.UUID `gorm:"type:uuid;index" json:"batch_id,omitempty"`
	Batch   *Batch     `json:"batch,omitempty"`

	Quantity  int   `gorm:"not null" json:"quantity"`
	UnitPrice int64 `gorm:"not null" json:"unit_price"`

	// Cost per unit in cents at deduction time; nil for untracked stock.
	CostPrice *int64 `json:"cost_price,omitempty"`

	TotalPrice int64 `gorm:"not null" json:"total_price"`

	// (UnitPrice - CostPrice) * Quantity, nil when cost is unknown.
	Profit *int64 `json:"profit,omitempty"`

	ReceiptNumber string    `gorm:"type:varchar(50);not null;index" json:"receipt_number"`
	SaleDate      time.Time `gorm:"not null" json:"sale_date"`
}

// BeforeCreate computes the profit snapshot when the cost basis is known.
func (h *SalesHistory) BeforeCreate(tx *gorm.DB) error {
	if err := h.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if h.CostPrice != nil {
		profit := (h.UnitPrice - *h.CostPrice) * int64(h.Quantity)
		h.Profit = &profit
	}
	return nil
}
