package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SalesHistoryRepository interface {
	Create(tx *gorm.DB, history *model.SalesHistory) error
	// FindByReceipt returns every deduction recorded under a receipt,
	// inside the caller's transaction when voiding.
	FindByReceipt(tx *gorm.DB, receiptNumber string) ([]model.SalesHistory, error)
	FindByProduct(productID uuid.UUID, limit int) ([]model.SalesHistory, error)
	GetProfitSummary(startDate, endDate time.Time) (*ProfitSummary, error)
}

// ProfitSummary untuk laporan profit
type ProfitSummary struct {
	TotalRevenue  int64 `json:"total_revenue"`
	TotalProfit   int64 `json:"total_profit"`
	UnitsSold     int64 `json:"units_sold"`
	UntrackedRows int64 `json:"untracked_rows"` // deductions without a cost basis
}

type salesHistoryRepo struct {
	db *gorm.DB
}

func NewSalesHistoryRepo(db *gorm.DB) SalesHistoryRepository {
	return &salesHistoryRepo{db}
}

func (r *salesHistoryRepo) Create(tx *gorm.DB, history *model.SalesHistory) error {
	return tx.Create(history).Error
}

func (r *salesHistoryRepo) FindByReceipt(tx *gorm.DB, receiptNumber string) ([]model.SalesHistory, error) {
	var histories []model.SalesHistory
	err := tx.Where("receipt_number = ?", receiptNumber).Find(&histories).Error
	return histories, err
}

func (r *salesHistoryRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.SalesHistory, error) {
	var histories []model.SalesHistory
	err := r.db.Preload("Batch").
		Where("product_id = ?", productID).
		Order("sale_date DESC").Limit(limit).
		Find(&histories).Error
	return histories, err
}

func (r *salesHistoryRepo) GetProfitSummary(startDate, endDate time.Time) (*ProfitSummary, error) {
	var summary ProfitSummary

	err := r.db.Model(&model.SalesHistory{}).
		Select(`
			COALESCE(SUM(total_price), 0) as total_revenue,
			COALESCE(SUM(profit), 0) as total_profit,
			COALESCE(SUM(quantity), 0) as units_sold,
			COALESCE(SUM(CASE WHEN cost_price IS NULL THEN 1 ELSE 0 END), 0) as untracked_rows
		`).
		Where("sale_date BETWEEN ? AND ?", startDate, endDate).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}

	return &summary, nil
}
