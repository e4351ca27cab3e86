package repository

import (
	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(payment *model.Payment) error
	// FindBySale returns the recorded payments of a sale, read inside the
	// caller's transaction when voiding.
	FindBySale(tx *gorm.DB, saleID uuid.UUID) ([]model.Payment, error)
}

type paymentRepo struct {
	db *gorm.DB
}

func NewPaymentRepo(db *gorm.DB) PaymentRepository {
	return &paymentRepo{db}
}

func (r *paymentRepo) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

func (r *paymentRepo) FindBySale(tx *gorm.DB, saleID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := tx.Where("sale_id = ?", saleID).Order("created_at ASC").Find(&payments).Error
	return payments, err
}
