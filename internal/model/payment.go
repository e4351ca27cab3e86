package model

import "github.com/google/uuid"

type PaymentMethod string

const (
	PayCash   PaymentMethod = "cash"
	PayCard   PaymentMethod = "card"
	PayMobile PaymentMethod = "mobile"
)

// Payment rows are recorded by the payment endpoint after checkout. The
// sale engine never writes them; voiding reads them to decide which
// shift bucket to reverse.
type Payment struct {
	BaseModel
	SaleID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"sale_id" validate:"uuid_required"`
	Sale      *Sale         `json:"sale,omitempty" validate:"-"`
	Method    PaymentMethod `gorm:"type:varchar(10);not null" json:"method" validate:"required,oneof=cash card mobile"`
	Amount    int64         `gorm:"not null" json:"amount" validate:"required,gt=0"`
	Reference string        `gorm:"type:varchar(100)" json:"reference"`
}
