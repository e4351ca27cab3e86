package repository

import (
	"time"

	"go-pos-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BatchRepository interface {
	Create(batch *model.Batch) error
	FindByID(id uuid.UUID) (*model.Batch, error)
	FindByProduct(productID uuid.UUID) ([]model.Batch, error)
	// LockByID reads the batch row FOR UPDATE; must run inside a transaction.
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Batch, error)
	// LockEligible locks every batch of a product that may be depleted on
	// the given day, ordered soonest-expiry-first (batches without an
	// expiry date sort last), then oldest-purchase-first.
	LockEligible(tx *gorm.DB, productID uuid.UUID, today time.Time) ([]model.Batch, error)
	// LockExpiredReceived locks received batches whose expiry date has
	// passed, for the expiry sweep.
	LockExpiredReceived(tx *gorm.DB, today time.Time) ([]model.Batch, error)
	// CountByProduct counts every batch of the product regardless of
	// status; the untracked-stock fallback is only allowed when this is
	// zero.
	CountByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error)
	Save(tx *gorm.DB, batch *model.Batch) error
}

type batchRepo struct {
	db *gorm.DB
}

func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db}
}

func (r *batchRepo) Create(batch *model.Batch) error {
	return r.db.Create(batch).Error
}

func (r *batchRepo) FindByID(id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	err := r.db.Preload("Product").First(&batch, "id = ?", id).Error
	return &batch, err
}

func (r *batchRepo) FindByProduct(productID uuid.UUID) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.Where("product_id = ?", productID).
		Order("expiry_date ASC NULLS LAST, purchase_date ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&batch, "id = ?", id).Error
	return &batch, err
}

func (r *batchRepo) LockEligible(tx *gorm.DB, productID uuid.UUID, today time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND status = ? AND quantity > 0", productID, model.BatchReceived).
		Where("expiry_date IS NULL OR expiry_date >= ?", today).
		Order("expiry_date ASC NULLS LAST, purchase_date ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) LockExpiredReceived(tx *gorm.DB, today time.Time) ([]model.Batch, error) {
	var batches []model.Batch
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", model.BatchReceived, today).
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) CountByProduct(tx *gorm.DB, productID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&model.Batch{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *batchRepo) Save(tx *gorm.DB, batch *model.Batch) error {
	return tx.Save(batch).Error
}
