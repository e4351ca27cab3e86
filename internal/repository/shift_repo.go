package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShiftRepository interface {
	Create(shift *model.Shift) error
	FindByID(id uuid.UUID) (*model.Shift, error)
	FindOpenByCashier(cashierID string) (*model.Shift, error)
	// LockOpenByCashier locks the cashier's open shift so concurrent
	// sales bump its totals serially; must run inside a transaction.
	LockOpenByCashier(tx *gorm.DB, cashierID string) (*model.Shift, error)
	// AddSales increments the running totals in place (positive deltas on
	// sale, negative on void).
	AddSales(tx *gorm.DB, shiftID uuid.UUID, cash, card, mobile, total int64) error
	Save(tx *gorm.DB, shift *model.Shift) error
	FindRange(startDate, endDate time.Time) ([]model.Shift, error)
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db}
}

func (r *shiftRepo) Create(shift *model.Shift) error {
	return r.db.Create(shift).Error
}

func (r *shiftRepo) FindByID(id uuid.UUID) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.Preload("Cashier").First(&shift, "id = ?", id).Error
	return &shift, err
}

func (r *shiftRepo) FindOpenByCashier(cashierID string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.First(&shift, "cashier_id = ? AND status = ?", cashierID, model.ShiftOpen).Error
	return &shift, err
}

func (r *shiftRepo) LockOpenByCashier(tx *gorm.DB, cashierID string) (*model.Shift, error) {
	var shift model.Shift
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shift, "cashier_id = ? AND status = ?", cashierID, model.ShiftOpen).Error
	return &shift, err
}

// AddSales uses column expressions so concurrent transactions never lose
// an increment (same intent as the original F() updates).
func (r *shiftRepo) AddSales(tx *gorm.DB, shiftID uuid.UUID, cash, card, mobile, total int64) error {
	updates := map[string]interface{}{
		"total_sales": gorm.Expr("total_sales + ?", total),
	}
	if cash != 0 {
		updates["cash_sales"] = gorm.Expr("cash_sales + ?", cash)
	}
	if card != 0 {
		updates["card_sales"] = gorm.Expr("card_sales + ?", card)
	}
	if mobile != 0 {
		updates["mobile_sales"] = gorm.Expr("mobile_sales + ?", mobile)
	}
	return tx.Model(&model.Shift{}).Where("id = ?", shiftID).Updates(updates).Error
}

func (r *shiftRepo) Save(tx *gorm.DB, shift *model.Shift) error {
	return tx.Omit(clause.Associations).Save(shift).Error
}

func (r *shiftRepo) FindRange(startDate, endDate time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.Preload("Cashier").
		Where("start_time BETWEEN ? AND ?", startDate, endDate).
		Order("start_time DESC").
		Find(&shifts).Error
	return shifts, err
}
