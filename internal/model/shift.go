package model

import (
	"time"

	"github.com/google/uuid"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "open"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is a cashier's working session with a cash drawer. Running
// per-payment-method totals are bumped inside the same transaction as
// each completed sale; closing reconciles the drawer against them.
// A cashier has at most one open shift at a time.
type Shift struct {
	BaseModel
	CashierID string `gorm:"type:varchar(255);not null;index" json:"cashier_id"`
	Cashier   *User  `gorm:"foreignKey:CashierID;references:ID" json:"cashier,omitempty"`

	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Amounts in cents
	OpeningBalance int64  `gorm:"not null" json:"opening_balance"`
	ClosingBalance *int64 `json:"closing_balance,omitempty"`
	CashSales      int64  `gorm:"default:0" json:"cash_sales"`
	CardSales      int64  `gorm:"default:0" json:"card_sales"`
	MobileSales    int64  `gorm:"default:0" json:"mobile_sales"`
	TotalSales     int64  `gorm:"default:0" json:"total_sales"`

	Status ShiftStatus `gorm:"type:varchar(10);default:'open';index" json:"status"`

	// Actual closing cash minus expected (opening + cash sales).
	// Positive is an overage, negative a shortage.
	Discrepancy *int64 `json:"discrepancy,omitempty"`
}

// TableName specifies the table name for GORM
func (Shift) TableName() string {
	return "shifts"
}

// ExpectedClosingCash is the drawer amount the totals predict.
func (s *Shift) ExpectedClosingCash() int64 {
	return s.OpeningBalance + s.CashSales
}

// ShiftResponse for API responses
type ShiftResponse struct {
	ID             uuid.UUID     `json:"id"`
	CashierID      string        `json:"cashier_id"`
	Cashier        *UserResponse `json:"cashier,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        *time.Time    `json:"end_time,omitempty"`
	OpeningBalance int64         `json:"opening_balance"`
	ClosingBalance *int64        `json:"closing_balance,omitempty"`
	CashSales      int64         `json:"cash_sales"`
	CardSales      int64         `json:"card_sales"`
	MobileSales    int64         `json:"mobile_sales"`
	TotalSales     int64         `json:"total_sales"`
	Status         ShiftStatus   `json:"status"`
	Discrepancy    *int64        `json:"discrepancy,omitempty"`
}

// ToResponse converts Shift to ShiftResponse
func (s *Shift) ToResponse() ShiftResponse {
	response := ShiftResponse{
		ID:             s.ID,
		CashierID:      s.CashierID,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		OpeningBalance: s.OpeningBalance,
		ClosingBalance: s.ClosingBalance,
		CashSales:      s.CashSales,
		CardSales:      s.CardSales,
		MobileSales:    s.MobileSales,
		TotalSales:     s.TotalSales,
		Status:         s.Status,
		Discrepancy:    s.Discrepancy,
	}

	if s.Cashier != nil {
		cashierResp := s.Cashier.ToResponse()
		response.Cashier = &cashierResp
	}

	return response
}
