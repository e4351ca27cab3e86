package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	Create(tx *gorm.DB, sale *model.Sale) error
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindByReceipt(receiptNumber string) (*model.Sale, error)
	FindRange(startDate, endDate time.Time) ([]model.Sale, error)
	// LockByID reads the sale with its items FOR UPDATE so a concurrent
	// void of the same sale serializes; must run inside a transaction.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	Save(tx *gorm.DB, sale *model.Sale) error
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").Preload("Items.Product").Preload("Shift").
		First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) FindByReceipt(receiptNumber string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").First(&sale, "receipt_number = ?", receiptNumber).Error
	return &sale, err
}

func (r *saleRepo) FindRange(startDate, endDate time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").
		Where("sale_date BETWEEN ? AND ?", startDate, endDate).
		Order("sale_date DESC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) Save(tx *gorm.DB, sale *model.Sale) error {
	// Items are immutable; only the sale row itself is written.
	return tx.Omit(clause.Associations).Save(sale).Error
}
