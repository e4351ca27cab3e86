package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

// MovementCause tags why stock changed, so reports never have to parse
// free-text reasons. ReferenceID points at the originating row.
type MovementCause string

const (
	CauseSale             MovementCause = "sale"
	CauseSaleVoid         MovementCause = "sale_void"
	CauseBatchReceived    MovementCause = "batch_received"
	CauseBatchExpired     MovementCause = "batch_expired"
	CauseManualAdjustment MovementCause = "manual_adjustment"
)

// StockMovement is one entry in the append-only stock ledger. Rows are
// created inside the same transaction as the stock change they describe
// and are never updated or deleted.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID    `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product   *Product     `json:"product,omitempty" validate:"-"`
	Type      MovementType `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=in out adjustment"`

	// Signed quantity: positive for stock in, negative for stock out.
	Quantity int `gorm:"not null" json:"quantity"`

	Cause MovementCause `gorm:"type:varchar(30);not null;index" json:"cause" validate:"required"`

	// Sale ID, batch ID etc. depending on Cause.
	ReferenceID *uuid.UUID `gorm:"type:uuid;index" json:"reference_id,omitempty"`

	Note string `gorm:"type:varchar(200)" json:"note"`

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	CreatedByUser   *User   `gorm:"foreignKey:CreatedByUserID;references:ID" json:"created_by_user,omitempty"`
}
